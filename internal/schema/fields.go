// Package schema maps logical catalog attribute codes to engine-native
// field references and back.
package schema

import (
	"errors"
	"strings"

	"github.com/utafrali/CatalogSearchGo/internal/engine"
)

// ErrFieldNotFound is returned when an attribute code has no engine field.
var ErrFieldNotFound = errors.New("schema: field not found")

// Mapper resolves attribute codes to engine field references. FieldByAttribute
// may fail with ErrFieldNotFound; callers are expected to tolerate that and
// skip the clause. FieldByProductAttribute always resolves, falling back to
// the raw attribute code for unknown product attributes.
type Mapper interface {
	FieldByAttribute(code string, value engine.Value) (*engine.Field, error)
	FieldByProductAttribute(code string, value engine.Value) (*engine.Field, error)
}

// facetSuffix and floatSuffix are the index-side decorations appended to
// faceted string attributes and numeric attributes respectively.
const (
	facetSuffix = "_facet"
	floatSuffix = "_f"
)

// defaultFields is the static attribute-to-field table for the product index.
var defaultFields = map[string]string{
	"sku":           "sku",
	"score":         "_score",
	"store_id":      "store_id",
	"object_type":   "object_type",
	"visibility":    "visibility",
	"status":        "status",
	"category_id":   "category_id",
	"category":      "category_id",
	"name":          "name",
	"url_key":       "url_key",
	"description":   "description",
	"image":         "image",
	"type_id":       "type_id",
	"price":         "price" + floatSuffix,
	"special_price": "special_price" + floatSuffix,
	"color":         "color" + facetSuffix,
	"size":          "size" + facetSuffix,
	"brand":         "brand" + facetSuffix,
	"material":      "material" + facetSuffix,
	"manufacturer":  "manufacturer" + facetSuffix,
}

// StaticMapper resolves attribute codes against a fixed table, optionally
// extended with per-deployment overrides.
type StaticMapper struct {
	fields map[string]string
}

// NewStaticMapper creates a mapper over the default product field table,
// merged with the given overrides (overrides win).
func NewStaticMapper(overrides map[string]string) *StaticMapper {
	fields := make(map[string]string, len(defaultFields)+len(overrides))
	for code, name := range defaultFields {
		fields[code] = name
	}
	for code, name := range overrides {
		fields[code] = name
	}
	return &StaticMapper{fields: fields}
}

// FieldByAttribute resolves a generic attribute code. Unknown codes return
// ErrFieldNotFound.
func (m *StaticMapper) FieldByAttribute(code string, value engine.Value) (*engine.Field, error) {
	name, ok := m.fields[code]
	if !ok {
		return nil, ErrFieldNotFound
	}
	return &engine.Field{Name: name, Value: value}, nil
}

// FieldByProductAttribute resolves a product attribute code. Codes missing
// from the table map to themselves, so product filters never fail to resolve.
func (m *StaticMapper) FieldByProductAttribute(code string, value engine.Value) (*engine.Field, error) {
	if name, ok := m.fields[code]; ok {
		return &engine.Field{Name: name, Value: value}, nil
	}
	return &engine.Field{Name: code, Value: value}, nil
}

// AttributeCode derives the display attribute code from an engine field name
// by stripping the facet and float decorations.
func AttributeCode(fieldName string) string {
	code := strings.ReplaceAll(fieldName, facetSuffix, "")
	return strings.ReplaceAll(code, floatSuffix, "")
}
