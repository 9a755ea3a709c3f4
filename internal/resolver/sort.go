package resolver

import (
	"fmt"

	"github.com/utafrali/CatalogSearchGo/internal/engine"
)

const (
	sortAsc  = "ASC"
	sortDesc = "DESC"
)

// relevanceField sorts by the engine's match score.
const relevanceField = "score"

// applySort resolves the sort argument into an engine sort directive. With no
// explicit sort, free-text queries sort by relevance descending; otherwise the
// engine's default order applies. Sort resolution failures are configuration
// errors and propagate.
func (r *Resolver) applySort(q engine.Query, args *Args) error {
	sortDir := sortAsc
	if args.Sort != nil && (args.Sort.SortOrder == sortAsc || args.Sort.SortOrder == sortDesc) {
		sortDir = args.Sort.SortOrder
	}

	var sortBy string
	switch {
	case args.Sort != nil && args.Sort.SortBy != "":
		sortBy = args.Sort.SortBy
	case args.Search != nil && *args.Search != "":
		sortBy = relevanceField
		sortDir = sortDesc
	default:
		return nil
	}

	field, err := r.mapper.FieldByAttribute(sortBy, engine.Literal(sortDir))
	if err != nil {
		return fmt.Errorf("resolve sort attribute %q: %w", sortBy, err)
	}
	q.AddSort(*field)

	return nil
}
