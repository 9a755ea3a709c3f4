package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/utafrali/CatalogSearchGo/internal/engine"
)

// facetAggPrefix and statAggPrefix namespace the aggregations so both kinds
// can be requested on the same field.
const (
	facetAggPrefix  = "facet_"
	statAggPrefix   = "stats_"
	facetBucketSize = 100
)

// query implements engine.Query on the Elasticsearch search DSL.
type query struct {
	client *Client

	filters  []engine.Field
	sorts    []engine.Field
	facets   []engine.Field
	stats    []engine.Field
	selected []engine.Field
	pageSize int
	text     string
	prepend  string

	once sync.Once
	resp engine.Response
	err  error
}

func (q *query) AddFilter(f engine.Field) { q.filters = append(q.filters, f) }
func (q *query) AddFilters(fs []engine.Field) {
	q.filters = append(q.filters, fs...)
}
func (q *query) AddSort(f engine.Field)  { q.sorts = append(q.sorts, f) }
func (q *query) AddFacet(f engine.Field) { q.facets = append(q.facets, f) }
func (q *query) AddFacets(fs []engine.Field) {
	q.facets = append(q.facets, fs...)
}
func (q *query) AddStat(f engine.Field) { q.stats = append(q.stats, f) }
func (q *query) AddStats(fs []engine.Field) {
	q.stats = append(q.stats, fs...)
}
func (q *query) AddFieldsToSelect(fs []engine.Field) {
	q.selected = append(q.selected, fs...)
}
func (q *query) SetPageSize(n int)        { q.pageSize = n }
func (q *query) SetQueryText(s string)    { q.text = s }
func (q *query) SetQueryPrepend(s string) { q.prepend = s }
func (q *query) QueryPrepend() string     { return q.prepend }

func (q *query) Filter(name string) *engine.Field {
	for i := range q.filters {
		if q.filters[i].Name == name {
			return &q.filters[i]
		}
	}
	return nil
}

// Response executes the query on first call and memoizes the outcome.
func (q *query) Response(ctx context.Context) (engine.Response, error) {
	q.once.Do(func() {
		q.resp, q.err = q.execute(ctx)
	})
	return q.resp, q.err
}

// buildBody translates the accumulated builder state into the search DSL.
// Filters marked excluded from facet computation become the post_filter, so
// aggregations are counted before they narrow the result set (multi-select
// faceting).
func (q *query) buildBody() map[string]any {
	var must any
	if q.text != "" {
		queryText := q.text
		if q.prepend != "" {
			queryText = q.prepend + queryText
		}
		must = map[string]any{
			"query_string": map[string]any{
				"query":            queryText,
				"fields":           []string{"name^3", "description"},
				"default_operator": "AND",
			},
		}
	} else {
		must = map[string]any{"match_all": map[string]any{}}
	}

	var filterClauses []any
	var postClauses []any
	for _, f := range q.filters {
		clause := filterClause(f)
		if f.Excluded {
			postClauses = append(postClauses, clause)
		} else {
			filterClauses = append(filterClauses, clause)
		}
	}

	boolQuery := map[string]any{"must": []any{must}}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	body := map[string]any{
		"query":            map[string]any{"bool": boolQuery},
		"size":             q.pageSize,
		"track_total_hits": true,
	}

	if len(postClauses) > 0 {
		body["post_filter"] = map[string]any{
			"bool": map[string]any{"filter": postClauses},
		}
	}

	if len(q.selected) > 0 {
		sources := make([]string, 0, len(q.selected))
		for _, f := range q.selected {
			sources = append(sources, f.Name)
		}
		body["_source"] = sources
	}

	if len(q.sorts) > 0 {
		var sorts []any
		for _, s := range q.sorts {
			dir := "asc"
			if s.Value.Literal == "DESC" {
				dir = "desc"
			}
			sorts = append(sorts, map[string]any{s.Name: dir})
		}
		body["sort"] = sorts
	}

	if len(q.facets) > 0 || len(q.stats) > 0 {
		aggs := map[string]any{}
		for _, f := range q.facets {
			aggs[facetAggPrefix+f.Name] = map[string]any{
				"terms": map[string]any{"field": f.Name, "size": facetBucketSize},
			}
		}
		for _, f := range q.stats {
			aggs[statAggPrefix+f.Name] = map[string]any{
				"stats": map[string]any{"field": f.Name},
			}
		}
		body["aggs"] = aggs
	}

	return body
}

func filterClause(f engine.Field) map[string]any {
	switch f.Value.Kind {
	case engine.ValueSet:
		return map[string]any{"terms": map[string]any{f.Name: f.Value.Set}}
	case engine.ValueRange:
		bounds := map[string]any{}
		if f.Value.From != engine.Infinity {
			bounds["gte"] = f.Value.From
		}
		if f.Value.To != engine.Infinity {
			bounds["lte"] = f.Value.To
		}
		return map[string]any{"range": map[string]any{f.Name: bounds}}
	default:
		return map[string]any{"term": map[string]any{f.Name: f.Value.Literal}}
	}
}

// esSearchResponse decodes the parts of the search response the engine
// contract exposes.
type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

type esTermsAgg struct {
	Buckets []struct {
		Key      any `json:"key"`
		DocCount int `json:"doc_count"`
	} `json:"buckets"`
}

func (q *query) execute(ctx context.Context) (engine.Response, error) {
	body := q.buildBody()

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: marshal query: %w", err)
	}

	res, err := q.client.es.Search(
		q.client.es.Search.WithIndex(q.client.indexName),
		q.client.es.Search.WithBody(bytes.NewReader(data)),
		q.client.es.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	debug := engine.DebugInfo{
		Params: map[string]string{"body": string(data)},
		Code:   res.StatusCode,
		URI:    "/" + q.client.indexName + "/_search",
	}

	if res.IsError() {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return nil, fmt.Errorf("elasticsearch search: %s — %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return nil, fmt.Errorf("elasticsearch search: unexpected status %s", res.Status())
	}

	var esResp esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch search: decode response: %w", err)
	}
	debug.Message = res.Status()

	docs := make([]engine.Document, 0, len(esResp.Hits.Hits))
	for _, hit := range esResp.Hits.Hits {
		docs = append(docs, engine.Document(hit.Source))
	}

	facets, stats := q.parseAggregations(esResp.Aggregations)

	return &response{
		numFound: esResp.Hits.Total.Value,
		docs:     docs,
		facets:   facets,
		stats:    stats,
		debug:    debug,
	}, nil
}

// parseAggregations splits the response aggregations back into facets and
// stats, preserving the request order.
func (q *query) parseAggregations(aggs map[string]json.RawMessage) ([]engine.Facet, []engine.Stat) {
	var facets []engine.Facet
	for _, f := range q.facets {
		raw, ok := aggs[facetAggPrefix+f.Name]
		if !ok {
			continue
		}
		var terms esTermsAgg
		if err := json.Unmarshal(raw, &terms); err != nil {
			continue
		}
		facet := engine.Facet{Field: f.Name}
		for _, bucket := range terms.Buckets {
			facet.Buckets = append(facet.Buckets, engine.FacetBucket{
				Value: bucketKey(bucket.Key),
				Count: bucket.DocCount,
			})
		}
		facets = append(facets, facet)
	}

	var stats []engine.Stat
	for _, f := range q.stats {
		raw, ok := aggs[statAggPrefix+f.Name]
		if !ok {
			continue
		}
		var values map[string]any
		if err := json.Unmarshal(raw, &values); err != nil {
			continue
		}
		stats = append(stats, engine.Stat{Field: f.Name, Values: values})
	}

	return facets, stats
}

func bucketKey(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", key)
	}
}

// response implements engine.Response for an executed Elasticsearch query.
type response struct {
	numFound int
	docs     []engine.Document
	facets   []engine.Facet
	stats    []engine.Stat
	debug    engine.DebugInfo
}

func (r *response) NumFound() int                { return r.numFound }
func (r *response) Documents() []engine.Document { return r.docs }
func (r *response) Facets() []engine.Facet       { return r.facets }
func (r *response) Stats() []engine.Stat         { return r.stats }
func (r *response) CurrentPage() int             { return 1 }
func (r *response) DebugInfo() engine.DebugInfo  { return r.debug }
