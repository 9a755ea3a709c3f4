// Package memory is an in-memory engine client used by tests and local runs.
// Matching is simple substring search over name and description; filters,
// facets, stats, and spelling checks behave like the real engine at small
// scale. Thread-safe via sync.RWMutex.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/utafrali/CatalogSearchGo/internal/engine"
)

// Engine is the in-memory engine client.
type Engine struct {
	mu   sync.RWMutex
	docs map[string]engine.Document
	// insertion order of skus, so result order is stable
	order []string
}

// New creates an empty in-memory engine.
func New() *Engine {
	return &Engine{docs: make(map[string]engine.Document)}
}

// NewQuery returns a fresh query builder bound to this engine.
func (e *Engine) NewQuery() engine.Query {
	return &query{engine: e}
}

// Index adds or replaces a document keyed by its sku field.
func (e *Engine) Index(_ context.Context, doc engine.Document) error {
	sku, ok := doc["sku"].(string)
	if !ok || sku == "" {
		return fmt.Errorf("memory index: document missing sku")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.docs[sku]; !exists {
		e.order = append(e.order, sku)
	}
	e.docs[sku] = doc
	return nil
}

// Delete removes a document by sku. Missing documents are not an error.
func (e *Engine) Delete(_ context.Context, sku string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.docs[sku]; !exists {
		return nil
	}
	delete(e.docs, sku)
	for i, s := range e.order {
		if s == sku {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return nil
}

// BulkIndex indexes multiple documents.
func (e *Engine) BulkIndex(ctx context.Context, docs []engine.Document) error {
	for _, doc := range docs {
		if err := e.Index(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// CheckSpelling proposes replacement terms from the indexed vocabulary within
// edit distance 2 of each query term, plus a collation substituting the best
// candidate for every term.
func (e *Engine) CheckSpelling(_ context.Context, text string) (*engine.Suggestions, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	vocab := e.vocabulary()
	suggestions := &engine.Suggestions{}

	collation := []string{}
	substituted := false
	for _, term := range strings.Fields(strings.ToLower(text)) {
		if vocab[term] > 0 {
			collation = append(collation, term)
			continue
		}

		var candidates []engine.Candidate
		for _, word := range sortedVocab(vocab) {
			dist := editDistance(term, word)
			if dist == 0 || dist > 2 {
				continue
			}
			candidates = append(candidates, engine.Candidate{
				Text:  word,
				Score: 1 - float64(dist)/float64(len(term)),
				Freq:  vocab[word],
			})
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].Score != candidates[j].Score {
				return candidates[i].Score > candidates[j].Score
			}
			return candidates[i].Freq > candidates[j].Freq
		})

		if len(candidates) > 0 {
			suggestions.Terms = append(suggestions.Terms, engine.TermSuggestion{
				Term:       term,
				Candidates: candidates,
			})
			collation = append(collation, candidates[0].Text)
			substituted = true
		} else {
			collation = append(collation, term)
		}
	}

	if substituted {
		suggestions.Collations = []string{strings.Join(collation, " ")}
	}

	return suggestions, nil
}

func (e *Engine) vocabulary() map[string]int {
	vocab := make(map[string]int)
	for _, doc := range e.docs {
		for _, field := range []string{"name", "description"} {
			s, _ := doc[field].(string)
			for _, word := range strings.Fields(strings.ToLower(s)) {
				vocab[word]++
			}
		}
	}
	return vocab
}

func sortedVocab(vocab map[string]int) []string {
	words := make([]string, 0, len(vocab))
	for w := range vocab {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// snapshot returns the documents in insertion order.
func (e *Engine) snapshot() []engine.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	docs := make([]engine.Document, 0, len(e.order))
	for _, sku := range e.order {
		docs = append(docs, e.docs[sku])
	}
	return docs
}

// query implements engine.Query over the in-memory document set.
type query struct {
	engine *Engine

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

func (q *query) Response(_ context.Context) (engine.Response, error) {
	q.once.Do(func() {
		q.resp = q.execute()
	})
	return q.resp, q.err
}

func (q *query) execute() engine.Response {
	all := q.engine.snapshot()

	var matched []engine.Document
	var facetBase []engine.Document
	for _, doc := range all {
		if !q.matchesText(doc) {
			continue
		}
		if q.matchesFilters(doc, false) {
			facetBase = append(facetBase, doc)
		}
		if q.matchesFilters(doc, true) {
			matched = append(matched, doc)
		}
	}

	q.sortDocs(matched)

	total := len(matched)
	page := matched
	if q.pageSize > 0 && len(page) > q.pageSize {
		page = page[:q.pageSize]
	}

	page = q.project(page)

	return &response{
		numFound: total,
		docs:     page,
		facets:   q.computeFacets(facetBase),
		stats:    q.computeStats(matched),
	}
}

// matchesFilters checks the document against the accumulated filters.
// With includeExcluded false, filters marked excluded-from-facets are
// skipped; that set is the facet counting base.
func (q *query) matchesFilters(doc engine.Document, includeExcluded bool) bool {
	for _, f := range q.filters {
		if f.Excluded && !includeExcluded {
			continue
		}
		if !matchesValue(doc[f.Name], f.Value) {
			return false
		}
	}
	return true
}

func (q *query) matchesText(doc engine.Document) bool {
	if q.text == "" {
		return true
	}
	needle := strings.ToLower(q.text)
	for _, field := range []string{"name", "description"} {
		s, _ := doc[field].(string)
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func matchesValue(docValue any, want engine.Value) bool {
	switch want.Kind {
	case engine.ValueSet:
		for _, member := range want.Set {
			if valueContains(docValue, member) {
				return true
			}
		}
		return false
	case engine.ValueRange:
		num, ok := toFloat(docValue)
		if !ok {
			return false
		}
		if want.From != engine.Infinity {
			from, err := strconv.ParseFloat(want.From, 64)
			if err != nil || num < from {
				return false
			}
		}
		if want.To != engine.Infinity {
			to, err := strconv.ParseFloat(want.To, 64)
			if err != nil || num > to {
				return false
			}
		}
		return true
	default:
		return valueContains(docValue, want.Literal)
	}
}

func valueContains(docValue any, want string) bool {
	switch v := docValue.(type) {
	case []any:
		for _, item := range v {
			if asString(item) == want {
				return true
			}
		}
		return false
	case []string:
		for _, item := range v {
			if item == want {
				return true
			}
		}
		return false
	default:
		return asString(docValue) == want
	}
}

func asString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
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

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func (q *query) sortDocs(docs []engine.Document) {
	if len(q.sorts) == 0 {
		return
	}
	s := q.sorts[0]
	if s.Name == "_score" {
		// Substring matching has no scores; keep insertion order.
		return
	}
	desc := s.Value.Literal == "DESC"
	sort.SliceStable(docs, func(i, j int) bool {
		a, aok := toFloat(docs[i][s.Name])
		b, bok := toFloat(docs[j][s.Name])
		var less bool
		if aok && bok {
			less = a < b
		} else {
			less = asString(docs[i][s.Name]) < asString(docs[j][s.Name])
		}
		if desc {
			return !less
		}
		return less
	})
}

// project keeps only the selected fields of each returned document.
func (q *query) project(docs []engine.Document) []engine.Document {
	if len(q.selected) == 0 {
		return docs
	}
	out := make([]engine.Document, 0, len(docs))
	for _, doc := range docs {
		projected := make(engine.Document, len(q.selected))
		for _, f := range q.selected {
			if v, ok := doc[f.Name]; ok {
				projected[f.Name] = v
			}
		}
		out = append(out, projected)
	}
	return out
}

func (q *query) computeFacets(docs []engine.Document) []engine.Facet {
	var facets []engine.Facet
	for _, f := range q.facets {
		counts := make(map[string]int)
		var order []string
		for _, doc := range docs {
			for _, v := range valuesOf(doc[f.Name]) {
				if _, seen := counts[v]; !seen {
					order = append(order, v)
				}
				counts[v]++
			}
		}
		facet := engine.Facet{Field: f.Name}
		for _, v := range order {
			facet.Buckets = append(facet.Buckets, engine.FacetBucket{Value: v, Count: counts[v]})
		}
		facets = append(facets, facet)
	}
	return facets
}

func (q *query) computeStats(docs []engine.Document) []engine.Stat {
	var stats []engine.Stat
	for _, f := range q.stats {
		var vals []float64
		for _, doc := range docs {
			if num, ok := toFloat(doc[f.Name]); ok {
				vals = append(vals, num)
			}
		}
		values := map[string]any{"count": len(vals)}
		if len(vals) > 0 {
			minV, maxV := vals[0], vals[0]
			for _, v := range vals[1:] {
				if v < minV {
					minV = v
				}
				if v > maxV {
					maxV = v
				}
			}
			values["min"] = minV
			values["max"] = maxV
		}
		stats = append(stats, engine.Stat{Field: f.Name, Values: values})
	}
	return stats
}

func valuesOf(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, asString(item))
		}
		return out
	case []string:
		return val
	default:
		return []string{asString(v)}
	}
}

// response implements engine.Response.
type response struct {
	numFound int
	docs     []engine.Document
	facets   []engine.Facet
	stats    []engine.Stat
}

func (r *response) NumFound() int                { return r.numFound }
func (r *response) Documents() []engine.Document { return r.docs }
func (r *response) Facets() []engine.Facet       { return r.facets }
func (r *response) Stats() []engine.Stat         { return r.stats }
func (r *response) CurrentPage() int             { return 1 }
func (r *response) DebugInfo() engine.DebugInfo  { return engine.DebugInfo{} }
