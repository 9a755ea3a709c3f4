package elasticsearch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/CatalogSearchGo/internal/engine"
)

func TestBuildBody_MatchAllWithoutText(t *testing.T) {
	q := &query{}
	body := q.buildBody()

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	must := boolQuery["must"].([]any)
	require.Len(t, must, 1)
	assert.Contains(t, must[0], "match_all")
	assert.Equal(t, true, body["track_total_hits"])
}

func TestBuildBody_QueryStringWithBoostPrepend(t *testing.T) {
	q := &query{}
	q.SetQueryText("blue hoodie")
	q.SetQueryPrepend("name:hoodie^5 ")

	body := q.buildBody()

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	must := boolQuery["must"].([]any)
	qs := must[0].(map[string]any)["query_string"].(map[string]any)
	assert.Equal(t, "name:hoodie^5 blue hoodie", qs["query"])
	assert.Equal(t, []string{"name^3", "description"}, qs["fields"])
	assert.Equal(t, "AND", qs["default_operator"])
}

func TestBuildBody_FiltersSplitByExclusion(t *testing.T) {
	q := &query{}
	q.AddFilters([]engine.Field{
		{Name: "store_id", Value: engine.Literal("1")},
		{Name: "color_facet", Value: engine.Literal("red"), Excluded: true},
	})

	body := q.buildBody()

	boolQuery := body["query"].(map[string]any)["bool"].(map[string]any)
	filters := boolQuery["filter"].([]any)
	require.Len(t, filters, 1)
	assert.Equal(t, map[string]any{"term": map[string]any{"store_id": "1"}}, filters[0])

	post := body["post_filter"].(map[string]any)["bool"].(map[string]any)["filter"].([]any)
	require.Len(t, post, 1)
	assert.Equal(t, map[string]any{"term": map[string]any{"color_facet": "red"}}, post[0])
}

func TestBuildBody_SourceSortAndAggs(t *testing.T) {
	q := &query{}
	q.AddFieldsToSelect([]engine.Field{{Name: "sku"}, {Name: "name"}})
	q.AddSort(engine.Field{Name: "price_f", Value: engine.Literal("DESC")})
	q.AddFacet(engine.Field{Name: "color_facet"})
	q.AddStat(engine.Field{Name: "price_f"})
	q.SetPageSize(24)

	body := q.buildBody()

	assert.Equal(t, []string{"sku", "name"}, body["_source"])
	assert.Equal(t, 24, body["size"])

	sorts := body["sort"].([]any)
	require.Len(t, sorts, 1)
	assert.Equal(t, map[string]any{"price_f": "desc"}, sorts[0])

	aggs := body["aggs"].(map[string]any)
	require.Contains(t, aggs, "facet_color_facet")
	require.Contains(t, aggs, "stats_price_f")

	terms := aggs["facet_color_facet"].(map[string]any)["terms"].(map[string]any)
	assert.Equal(t, "color_facet", terms["field"])
	assert.Equal(t, facetBucketSize, terms["size"])

	stats := aggs["stats_price_f"].(map[string]any)["stats"].(map[string]any)
	assert.Equal(t, "price_f", stats["field"])
}

func TestFilterClause(t *testing.T) {
	tests := []struct {
		name  string
		field engine.Field
		want  map[string]any
	}{
		{
			name:  "literal becomes term",
			field: engine.Field{Name: "status", Value: engine.Literal("1")},
			want:  map[string]any{"term": map[string]any{"status": "1"}},
		},
		{
			name:  "set becomes terms",
			field: engine.Field{Name: "sku", Value: engine.Set([]string{"A", "B"})},
			want:  map[string]any{"terms": map[string]any{"sku": []string{"A", "B"}}},
		},
		{
			name:  "closed range",
			field: engine.Field{Name: "price_f", Value: engine.Range("10", "20")},
			want:  map[string]any{"range": map[string]any{"price_f": map[string]any{"gte": "10", "lte": "20"}}},
		},
		{
			name:  "open lower bound",
			field: engine.Field{Name: "price_f", Value: engine.Range(engine.Infinity, "20")},
			want:  map[string]any{"range": map[string]any{"price_f": map[string]any{"lte": "20"}}},
		},
		{
			name:  "open upper bound",
			field: engine.Field{Name: "visibility", Value: engine.Range("2", engine.Infinity)},
			want:  map[string]any{"range": map[string]any{"visibility": map[string]any{"gte": "2"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filterClause(tt.field))
		})
	}
}

func TestParseAggregations_PreservesRequestOrder(t *testing.T) {
	q := &query{}
	q.AddFacets([]engine.Field{{Name: "color_facet"}, {Name: "size_facet"}})
	q.AddStat(engine.Field{Name: "price_f"})

	aggs := map[string]json.RawMessage{
		"facet_size_facet":  json.RawMessage(`{"buckets":[{"key":"m","doc_count":2}]}`),
		"facet_color_facet": json.RawMessage(`{"buckets":[{"key":"red","doc_count":3},{"key":"blue","doc_count":1}]}`),
		"stats_price_f":     json.RawMessage(`{"count":4,"min":5.0,"max":99.0,"avg":40.0,"sum":160.0}`),
	}

	facets, stats := q.parseAggregations(aggs)

	require.Len(t, facets, 2)
	assert.Equal(t, "color_facet", facets[0].Field)
	assert.Equal(t, []engine.FacetBucket{
		{Value: "red", Count: 3},
		{Value: "blue", Count: 1},
	}, facets[0].Buckets)
	assert.Equal(t, "size_facet", facets[1].Field)

	require.Len(t, stats, 1)
	assert.Equal(t, "price_f", stats[0].Field)
	assert.Equal(t, 5.0, stats[0].Values["min"])
	assert.Equal(t, 99.0, stats[0].Values["max"])
}

func TestParseAggregations_MissingAggIsSkipped(t *testing.T) {
	q := &query{}
	q.AddFacet(engine.Field{Name: "color_facet"})

	facets, stats := q.parseAggregations(map[string]json.RawMessage{})

	assert.Empty(t, facets)
	assert.Empty(t, stats)
}

func TestBucketKey(t *testing.T) {
	assert.Equal(t, "red", bucketKey("red"))
	assert.Equal(t, "12", bucketKey(float64(12)))
	assert.Equal(t, "12.5", bucketKey(12.5))
}

func TestDocumentSKU(t *testing.T) {
	sku, err := documentSKU(engine.Document{"sku": "SKU-1"})
	require.NoError(t, err)
	assert.Equal(t, "SKU-1", sku)

	_, err = documentSKU(engine.Document{"name": "missing"})
	assert.Error(t, err)

	_, err = documentSKU(engine.Document{"sku": ""})
	assert.Error(t, err)
}
