// Package resolver translates structured product search requests into engine
// queries and shapes engine responses into the stable result envelope. It is
// request-scoped and stateless: every mutable object lives for one Resolve
// call only.
package resolver

import (
	"context"

	apperrors "github.com/utafrali/CatalogSearchGo/pkg/errors"

	"github.com/utafrali/CatalogSearchGo/internal/engine"
	"github.com/utafrali/CatalogSearchGo/internal/schema"
)

// Config holds the immutable resolver settings.
type Config struct {
	StoreID           string
	SpellcheckEnabled bool
	ShowOutOfStock    bool
	QueryBoost        string
	BaseStats         []string
	BaseFacets        []string
}

// CategoryFacetProvider looks up the facet and stat fields configured for a
// category.
type CategoryFacetProvider interface {
	FacetFieldsFor(ctx context.Context, categoryID string) ([]engine.Field, error)
	StatFieldsFor(ctx context.Context, categoryID string) ([]engine.Field, error)
}

// StatsRecorder receives the result count of executed free-text searches.
type StatsRecorder interface {
	RecordResultCount(ctx context.Context, query string, total int) error
}

// Resolver is the product search entry point.
type Resolver struct {
	client engine.Client
	mapper schema.Mapper
	facets CategoryFacetProvider
	stats  StatsRecorder
	cfg    Config
	hooks  Hooks
}

// New creates a resolver over the given engine client, field mapper, and
// category facet provider.
func New(client engine.Client, mapper schema.Mapper, facets CategoryFacetProvider, cfg Config) *Resolver {
	return &Resolver{
		client: client,
		mapper: mapper,
		facets: facets,
		cfg:    cfg,
	}
}

// WithHooks installs the given hooks and returns the resolver.
func (r *Resolver) WithHooks(hooks Hooks) *Resolver {
	r.hooks = hooks
	return r
}

// WithStatsRecorder installs a search statistics recorder and returns the
// resolver.
func (r *Resolver) WithStatsRecorder(stats StatsRecorder) *Resolver {
	r.stats = stats
	return r
}

// Resolve merges the arguments, builds and executes the engine query, runs
// the spellcheck fallback for zero-result free-text queries, and normalizes
// the engine response into the result envelope.
//
// ctxArgs, when non-nil, is the request-scoped context argument bag merged
// into args under the given policy before anything else happens.
func (r *Resolver) Resolve(ctx context.Context, args Args, ctxArgs *Args, policy MergePolicy, selection Selection) (*Result, error) {
	if ctxArgs != nil {
		args = MergeArgs(args, *ctxArgs, policy)
	}

	r.hooks.beforeArgs(&args)
	r.hooks.afterArgs(&args)

	if args.Redirect || (args.Search != nil && *args.Search == "") {
		return emptyResult(), nil
	}

	if args.Search == nil && args.Filter == nil {
		return nil, apperrors.InvalidInput("'search' or 'filter' input argument is required")
	}

	var queryFields []string
	if !identifiersOnly(selection) {
		queryFields = itemFields(selection)
	}

	searchQuery := ""
	if args.Search != nil {
		searchQuery = *args.Search
	}

	query, err := r.PrepareQuery(ctx, args, queryFields, false, false)
	if err != nil {
		return nil, err
	}

	r.hooks.beforeExecute(query, &args)
	resp, err := query.Response(ctx)
	if err != nil {
		return nil, err
	}

	correctedQuery := ""
	if searchQuery != "" && resp.NumFound() == 0 && r.cfg.SpellcheckEnabled {
		originalInput := args.RawQuery
		if originalInput == "" {
			originalInput = searchQuery
		}

		corrected, err := r.spellcheck(ctx, originalInput)
		if err != nil {
			return nil, err
		}
		if corrected != "" {
			newArgs := args
			newArgs.Search = &corrected

			newQuery, err := r.PrepareQuery(ctx, newArgs, queryFields, false, false)
			if err != nil {
				return nil, err
			}
			r.hooks.beforeExecute(newQuery, &newArgs)
			resp, err = newQuery.Response(ctx)
			if err != nil {
				return nil, err
			}
			correctedQuery = corrected
		}
	}

	r.hooks.afterExecute(resp)

	result := r.normalize(resp, args.Debug)

	// Search statistics are best-effort; a recording failure never fails
	// the search itself.
	if searchQuery != "" && r.stats != nil {
		_ = r.stats.RecordResultCount(ctx, searchQuery, result.TotalCount)
	}

	if correctedQuery != "" {
		result.CorrectedQuery = correctedQuery
	}

	r.hooks.beforeResult(result)

	return result, nil
}
