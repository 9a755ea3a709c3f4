package resolver

import (
	"context"
	"fmt"

	"github.com/utafrali/CatalogSearchGo/internal/engine"
)

// applyFacets plans the aggregation fields for the query: category-specific
// facets and stats when a category filter is active, plus every configured
// base stat and base facet attribute.
func (r *Resolver) applyFacets(ctx context.Context, q engine.Query) error {
	if categoryFilter := q.Filter("category_id"); categoryFilter != nil {
		categoryID := filterLiteral(categoryFilter.Value)

		facetFields, err := r.facets.FacetFieldsFor(ctx, categoryID)
		if err != nil {
			return fmt.Errorf("category facet fields: %w", err)
		}
		q.AddFacets(facetFields)

		statFields, err := r.facets.StatFieldsFor(ctx, categoryID)
		if err != nil {
			return fmt.Errorf("category stat fields: %w", err)
		}
		q.AddStats(statFields)
	}

	for _, baseStat := range r.cfg.BaseStats {
		field, err := r.mapper.FieldByAttribute(baseStat, engine.Value{})
		if err != nil {
			continue
		}
		q.AddStat(*field)
	}

	for _, baseFacet := range r.cfg.BaseFacets {
		field, err := r.mapper.FieldByAttribute(baseFacet, engine.Value{})
		if err != nil {
			continue
		}
		q.AddFacet(*field)
	}

	// TODO: category_id facet is requested unconditionally while the
	// category-driven facet configuration rollout completes; drop once every
	// storefront reads facets from the category lookup.
	if field, err := r.mapper.FieldByAttribute("category_id", engine.Value{}); err == nil {
		q.AddFacet(*field)
	}

	return nil
}

// filterLiteral extracts a comparable literal from a filter value: the
// literal itself, or the first member of a set.
func filterLiteral(v engine.Value) string {
	if v.Kind == engine.ValueSet && len(v.Set) > 0 {
		return v.Set[0]
	}
	return v.Literal
}
