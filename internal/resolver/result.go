package resolver

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/utafrali/CatalogSearchGo/internal/engine"
	"github.com/utafrali/CatalogSearchGo/internal/schema"
)

// itemIndexBase is the first synthetic item key. Listing positions below it
// are reserved for merchandised slots injected ahead of search results.
const itemIndexBase = 300

// identifierField is the document field collected into items_ids.
const identifierField = "sku"

// Items maps the synthetic insertion-order key to an item's field values.
// It marshals as an empty JSON array when empty, and as an object with keys
// in ascending numeric order otherwise.
type Items map[int]map[string]any

// MarshalJSON implements json.Marshaler.
func (it Items) MarshalJSON() ([]byte, error) {
	if len(it) == 0 {
		return []byte("[]"), nil
	}

	keys := make([]int, 0, len(it))
	for k := range it {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.Itoa(k))
		buf.WriteString(`":`)
		item, err := json.Marshal(it[k])
		if err != nil {
			return nil, err
		}
		buf.Write(item)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// PageInfo describes the returned page.
type PageInfo struct {
	PageSize    int `json:"page_size"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
}

// FacetValue is one surviving facet bucket.
type FacetValue struct {
	ValueID string `json:"value_id"`
	Count   int    `json:"count"`
}

// FacetResult is the per-field facet output.
type FacetResult struct {
	Code   string       `json:"code"`
	Values []FacetValue `json:"values"`
}

// StatResult is the per-field stat output.
type StatResult struct {
	Code   string         `json:"code"`
	Values map[string]any `json:"values"`
}

// Result is the output envelope of one resolve call.
type Result struct {
	TotalCount     int            `json:"total_count"`
	ItemsIDs       []any          `json:"items_ids"`
	Items          Items          `json:"items"`
	PageInfo       *PageInfo      `json:"page_info,omitempty"`
	Facets         []FacetResult  `json:"facets,omitempty"`
	Stats          []StatResult   `json:"stats,omitempty"`
	DebugInfo      map[string]any `json:"debug_info"`
	CorrectedQuery string         `json:"corrected_query,omitempty"`
}

// emptyResult is the short-circuit envelope for redirects and empty searches.
func emptyResult() *Result {
	return &Result{TotalCount: 0, Items: Items{}, ItemsIDs: []any{}, DebugInfo: map[string]any{}}
}

// normalize converts a raw engine response into the result envelope.
func (r *Resolver) normalize(resp engine.Response, debug bool) *Result {
	debugInfo := map[string]any{}
	if debug {
		di := resp.DebugInfo()
		for k, v := range di.Params {
			debugInfo[k] = v
		}
		debugInfo["code"] = di.Code
		debugInfo["message"] = di.Message
		debugInfo["uri"] = di.URI
	}

	docs := resp.Documents()
	items := make(Items, len(docs))
	ids := make([]any, 0, len(docs))

	i := itemIndexBase
	for _, doc := range docs {
		r.hooks.beforeDocument(doc)

		data := make(map[string]any, len(doc))
		for name, value := range doc {
			if name == identifierField {
				ids = append(ids, value)
			}
			data[name] = value
		}

		r.hooks.afterDocument(data)
		items[i] = data
		i++
	}

	return &Result{
		TotalCount: resp.NumFound(),
		ItemsIDs:   ids,
		Items:      items,
		PageInfo: &PageInfo{
			PageSize:    len(docs),
			CurrentPage: resp.CurrentPage(),
			// Raw found count, not a page count. Storefronts compensate for
			// this; keep it until the API version bumps.
			TotalPages: resp.NumFound(),
		},
		Facets:    prepareFacets(resp.Facets()),
		Stats:     prepareStats(resp.Stats()),
		DebugInfo: debugInfo,
	}
}

// prepareFacets drops buckets with falsy value identifiers and omits fields
// with no surviving buckets.
func prepareFacets(facets []engine.Facet) []FacetResult {
	var prepared []FacetResult
	for _, facet := range facets {
		var values []FacetValue
		for _, bucket := range facet.Buckets {
			if bucket.Value == "" || bucket.Value == "0" {
				continue
			}
			values = append(values, FacetValue{ValueID: bucket.Value, Count: bucket.Count})
		}
		if len(values) > 0 {
			prepared = append(prepared, FacetResult{Code: facet.Field, Values: values})
		}
	}
	return prepared
}

// prepareStats resolves each stat field's display code from its raw engine
// field name.
func prepareStats(stats []engine.Stat) []StatResult {
	var prepared []StatResult
	for _, stat := range stats {
		prepared = append(prepared, StatResult{
			Code:   schema.AttributeCode(stat.Field),
			Values: stat.Values,
		})
	}
	return prepared
}
