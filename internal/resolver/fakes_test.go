package resolver

import (
	"context"

	"github.com/utafrali/CatalogSearchGo/internal/engine"
)

// fakeResponse is a canned engine response.
type fakeResponse struct {
	numFound int
	docs     []engine.Document
	facets   []engine.Facet
	stats    []engine.Stat
	page     int
	debug    engine.DebugInfo
}

func (r *fakeResponse) NumFound() int                { return r.numFound }
func (r *fakeResponse) Documents() []engine.Document { return r.docs }
func (r *fakeResponse) Facets() []engine.Facet       { return r.facets }
func (r *fakeResponse) Stats() []engine.Stat         { return r.stats }
func (r *fakeResponse) CurrentPage() int             { return r.page }
func (r *fakeResponse) DebugInfo() engine.DebugInfo  { return r.debug }

// fakeQuery records everything the resolver planned onto it.
type fakeQuery struct {
	client   *fakeClient
	filters  []engine.Field
	sorts    []engine.Field
	facets   []engine.Field
	stats    []engine.Field
	selected []engine.Field
	pageSize int
	text     string
	prepend  string

	resp  engine.Response
	err   error
	calls int
}

func (q *fakeQuery) AddFilter(f engine.Field) { q.filters = append(q.filters, f) }
func (q *fakeQuery) AddFilters(fs []engine.Field) {
	q.filters = append(q.filters, fs...)
}
func (q *fakeQuery) AddSort(f engine.Field)  { q.sorts = append(q.sorts, f) }
func (q *fakeQuery) AddFacet(f engine.Field) { q.facets = append(q.facets, f) }
func (q *fakeQuery) AddFacets(fs []engine.Field) {
	q.facets = append(q.facets, fs...)
}
func (q *fakeQuery) AddStat(f engine.Field) { q.stats = append(q.stats, f) }
func (q *fakeQuery) AddStats(fs []engine.Field) {
	q.stats = append(q.stats, fs...)
}
func (q *fakeQuery) AddFieldsToSelect(fs []engine.Field) {
	q.selected = append(q.selected, fs...)
}
func (q *fakeQuery) SetPageSize(n int)        { q.pageSize = n }
func (q *fakeQuery) SetQueryText(s string)    { q.text = s }
func (q *fakeQuery) SetQueryPrepend(s string) { q.prepend = s }
func (q *fakeQuery) QueryPrepend() string     { return q.prepend }

func (q *fakeQuery) Filter(name string) *engine.Field {
	for i := range q.filters {
		if q.filters[i].Name == name {
			return &q.filters[i]
		}
	}
	return nil
}

func (q *fakeQuery) Response(_ context.Context) (engine.Response, error) {
	q.calls++
	if q.err != nil {
		return nil, q.err
	}
	if q.resp == nil {
		q.resp = q.client.respond(q)
	}
	return q.resp, nil
}

func (q *fakeQuery) filterNames() []string {
	names := make([]string, 0, len(q.filters))
	for _, f := range q.filters {
		names = append(names, f.Name)
	}
	return names
}

// fakeClient hands out fakeQuery instances and keeps them for inspection.
type fakeClient struct {
	queries []*fakeQuery

	// response answers any query whose text has no entry in countByText.
	response    *fakeResponse
	countByText map[string]int

	suggestions *engine.Suggestions
	spellErr    error
	spellCalls  int
}

func (c *fakeClient) NewQuery() engine.Query {
	q := &fakeQuery{client: c}
	c.queries = append(c.queries, q)
	return q
}

func (c *fakeClient) CheckSpelling(_ context.Context, _ string) (*engine.Suggestions, error) {
	c.spellCalls++
	if c.spellErr != nil {
		return nil, c.spellErr
	}
	return c.suggestions, nil
}

func (c *fakeClient) respond(q *fakeQuery) engine.Response {
	if n, ok := c.countByText[q.text]; ok {
		return &fakeResponse{numFound: n, page: 1}
	}
	if c.response != nil {
		return c.response
	}
	return &fakeResponse{page: 1}
}

// fakeFacets is a canned category facet configuration.
type fakeFacets struct {
	facets map[string][]engine.Field
	stats  map[string][]engine.Field
	err    error

	requestedCategories []string
}

func (f *fakeFacets) FacetFieldsFor(_ context.Context, categoryID string) ([]engine.Field, error) {
	f.requestedCategories = append(f.requestedCategories, categoryID)
	if f.err != nil {
		return nil, f.err
	}
	return f.facets[categoryID], nil
}

func (f *fakeFacets) StatFieldsFor(_ context.Context, categoryID string) ([]engine.Field, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stats[categoryID], nil
}

// fakeStats records stats calls.
type fakeStats struct {
	queries []string
	totals  []int
	err     error
}

func (s *fakeStats) RecordResultCount(_ context.Context, query string, total int) error {
	s.queries = append(s.queries, query)
	s.totals = append(s.totals, total)
	return s.err
}

func strPtr(s string) *string { return &s }
