package resolver

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/utafrali/CatalogSearchGo/internal/engine"
	"github.com/utafrali/CatalogSearchGo/internal/schema"
)

// objectTypeProduct scopes every query to product documents.
const objectTypeProduct = "product"

// statusEnabled is the stock-status value of sellable products.
const statusEnabled = "1"

// visibilityThreshold is the exclusive lower bound of visible products.
const visibilityThreshold = 1

// applyFilters injects the mandatory scope filters and flattens the caller's
// filter argument into engine filter clauses.
func (r *Resolver) applyFilters(q engine.Query, args *Args) error {
	storeField, err := r.mapper.FieldByProductAttribute("store_id", engine.Literal(r.cfg.StoreID))
	if err != nil {
		return fmt.Errorf("resolve store filter: %w", err)
	}
	typeField, err := r.mapper.FieldByProductAttribute("object_type", engine.Literal(objectTypeProduct))
	if err != nil {
		return fmt.Errorf("resolve object type filter: %w", err)
	}
	q.AddFilters([]engine.Field{*storeField, *typeField})

	// Explicit identifier lookups bypass the visibility scope.
	if _, bySKUs := args.Filter["skus"]; !bySKUs {
		visibility, err := r.mapper.FieldByProductAttribute(
			"visibility",
			prepareFilterValue(map[string]any{"gt": visibilityThreshold}),
		)
		if err != nil {
			return fmt.Errorf("resolve visibility filter: %w", err)
		}
		q.AddFilter(*visibility)
	}

	if !r.cfg.ShowOutOfStock {
		status, err := r.mapper.FieldByProductAttribute("status", engine.Literal(statusEnabled))
		if err != nil {
			return fmt.Errorf("resolve status filter: %w", err)
		}
		q.AddFilter(*status)
	}

	if len(args.Filter) > 0 {
		filters, err := r.prepareFilters(args.Filter, args.RemoveTagExcluded)
		if err != nil {
			return err
		}
		if len(filters) > 0 {
			q.AddFilters(filters)
		}
	}

	return nil
}

// prepareFilters flattens the caller filter map into engine filter clauses.
// The "attributes" key expands by the attribute filter rule; every other key
// becomes one clause resolved as a product attribute.
func (r *Resolver) prepareFilters(filter map[string]any, removeTagExcluded []string) ([]engine.Field, error) {
	var prepared []engine.Field
	for _, key := range sortedKeys(filter) {
		if key == "attributes" {
			attrs, err := r.prepareAttributeFilters(attributesOf(filter), removeTagExcluded)
			if err != nil {
				return nil, err
			}
			prepared = append(prepared, attrs...)
			continue
		}

		field, err := r.mapper.FieldByProductAttribute(key, filterValue(filter[key]))
		if err != nil {
			if errors.Is(err, schema.ErrFieldNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolve filter %q: %w", key, err)
		}
		prepared = append(prepared, *field)
	}
	return prepared, nil
}

// prepareAttributeFilters expands "code=value1,value2" attribute filter items
// into clauses. Multi-valued items become set-membership clauses, single
// values exact matches. Every attribute not present in the exemption list is
// marked excluded from facet computation.
func (r *Resolver) prepareAttributeFilters(attributes map[string]string, removeTagExcluded []string) ([]engine.Field, error) {
	var prepared []engine.Field
	for _, attr := range sortedKeys(attributes) {
		parts := strings.Split(attributes[attr], "=")
		if len(parts) < 2 {
			continue
		}
		code := parts[0]

		var value map[string]any
		if values := strings.Split(parts[1], ","); len(values) > 1 {
			value = map[string]any{"in": values}
		} else {
			value = map[string]any{"eq": parts[1]}
		}

		field, err := r.mapper.FieldByAttribute(code, prepareFilterValue(value))
		if err != nil {
			if errors.Is(err, schema.ErrFieldNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolve attribute filter %q: %w", code, err)
		}
		if !contains(removeTagExcluded, code) {
			field.Excluded = true
		}
		prepared = append(prepared, *field)
	}
	return prepared, nil
}

// filterValue translates one caller filter value: operator maps go through
// prepareFilterValue, plain arrays collapse to a comma-joined literal, and
// scalars match exactly.
func filterValue(v any) engine.Value {
	switch val := v.(type) {
	case map[string]any:
		return prepareFilterValue(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, stringify(item))
		}
		return engine.Literal(strings.Join(parts, ","))
	case []string:
		return engine.Literal(strings.Join(val, ","))
	default:
		return engine.Literal(stringify(v))
	}
}

// prepareFilterValue translates an operator map into an engine value.
//
// A map with more than one key collapses to a comma-joined literal of all
// values, bypassing the operator logic. This is a compatibility path relied
// on by old storefront clients; leave it alone.
func prepareFilterValue(value map[string]any) engine.Value {
	if len(value) > 1 {
		parts := make([]string, 0, len(value))
		for _, k := range sortedKeys(value) {
			parts = append(parts, stringify(value[k]))
		}
		return engine.Literal(strings.Join(parts, ","))
	}

	for op, raw := range value {
		num, numeric := toNumber(raw)
		if _, isList := raw.([]any); !numeric && !isList {
			if _, isStrs := raw.([]string); !isStrs {
				return engine.Literal(stringify(raw))
			}
		}

		switch op {
		case "in":
			return engine.Set(stringifyList(raw))
		case "gt":
			return engine.Range(formatNumber(num+1), engine.Infinity)
		case "lt":
			return engine.Range(engine.Infinity, formatNumber(num-1))
		case "gteq":
			return engine.Range(formatNumber(num), engine.Infinity)
		case "lteq":
			return engine.Range(engine.Infinity, formatNumber(num))
		default: // eq
			return engine.Literal(stringify(raw))
		}
	}

	return engine.Literal("")
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return formatNumber(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		if val {
			return "1"
		}
		return "0"
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

func stringifyList(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, stringify(item))
		}
		return out
	default:
		return []string{stringify(v)}
	}
}

func toNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// formatNumber renders integral floats without a fraction.
func formatNumber(f float64) string {
	if f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
