package resolver

// Selection is the caller's requested output field tree. A nil or empty
// sub-selection marks a leaf field.
type Selection map[string]Selection

// Has reports whether the selection contains the named field.
func (s Selection) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// typeDiscriminatorField is the introspection field GraphQL clients add to
// item selections; it does not count against the identifiers-only threshold.
const typeDiscriminatorField = "__typename"

// identifiersOnly reports whether the selection asks for record identifiers
// and nothing else: an items selection that is effectively sku-only, or an
// identifier-list field requested without item bodies.
func identifiersOnly(s Selection) bool {
	items, hasItems := s["items"]

	limit := 1
	if hasItems && items.Has(typeDiscriminatorField) {
		limit = 2
	}

	if hasItems && len(items) <= limit && items.Has("sku") {
		return true
	}
	return s.Has("items_ids")
}

// itemFields returns the leaf fields of the items selection in stable order.
// Nested object-shaped selections are dropped; only scalar leaves translate
// to engine fields.
func itemFields(s Selection) []string {
	items, ok := s["items"]
	if !ok {
		return nil
	}
	var fields []string
	for _, name := range sortedKeys(items) {
		if len(items[name]) > 0 {
			continue
		}
		fields = append(fields, name)
	}
	return fields
}
