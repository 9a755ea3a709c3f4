package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/utafrali/CatalogSearchGo/internal/engine"
	"github.com/utafrali/CatalogSearchGo/internal/schema"
)

// Page-size ceilings. Identifier-only queries fetch just the sku column and
// may page very deep; full queries are bounded tightly.
const (
	maxPageSizeIdentifiers = 50000
	// TODO: derive the full-query ceiling from the configured maximum
	// listing page size instead of hard-coding it.
	maxPageSizeFull = 100
)

// PrepareQuery builds one engine query from the merged arguments: filters,
// sort, facets and stats, fields to select, page size, and the free-text
// query with its boost prepend. The returned query has not been executed;
// its first Response call triggers the engine round-trip.
func (r *Resolver) PrepareQuery(ctx context.Context, args Args, queryFields []string, skipSort, skipFacets bool) (engine.Query, error) {
	q := r.client.NewQuery()

	r.hooks.beforeFilters(q, &args)
	if err := r.applyFilters(q, &args); err != nil {
		return nil, err
	}
	r.hooks.afterFilters(q, &args)

	if !skipSort {
		r.hooks.beforeSort(q, &args)
		if err := r.applySort(q, &args); err != nil {
			return nil, err
		}
		r.hooks.afterSort(q, &args)
	}

	if !skipFacets {
		if err := r.applyFacets(ctx, q); err != nil {
			return nil, err
		}
	}

	maxPageSize := maxPageSizeFull
	if len(queryFields) == 0 {
		maxPageSize = maxPageSizeIdentifiers
		sku, err := r.mapper.FieldByAttribute("sku", engine.Value{})
		if err != nil {
			return nil, fmt.Errorf("resolve identifier field: %w", err)
		}
		q.AddFieldsToSelect([]engine.Field{*sku})
	} else {
		r.applyFieldsToSelect(q, queryFields)
	}

	pageSize := maxPageSize
	if args.PageSize > 0 && args.PageSize < maxPageSize {
		pageSize = args.PageSize
	}
	q.SetPageSize(pageSize)

	if args.Search != nil && *args.Search != "" {
		q.SetQueryText(ParseSearchText(*args.Search))
		q.SetQueryPrepend(r.cfg.QueryBoost + q.QueryPrepend())
	}

	return q, nil
}

// applyFieldsToSelect resolves the requested output fields into engine fields
// to select. Unresolvable fields are skipped.
func (r *Resolver) applyFieldsToSelect(q engine.Query, queryFields []string) {
	var fields []engine.Field
	for _, code := range queryFields {
		field, err := r.mapper.FieldByAttribute(code, engine.Value{})
		if err != nil {
			if errors.Is(err, schema.ErrFieldNotFound) {
				continue
			}
			continue
		}
		fields = append(fields, *field)
	}
	q.AddFieldsToSelect(fields)
}
