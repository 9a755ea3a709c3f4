package elasticsearch

// DefaultIndexName is the default Elasticsearch index for product documents.
const DefaultIndexName = "catalog_products"

// buildIndexMapping returns the JSON mapping for the product index. Faceted
// attributes live in keyword fields with the _facet suffix; numeric
// attributes carry the _f suffix.
func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "product_analyzer": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "asciifolding"]
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "sku":             { "type": "keyword" },
      "object_type":     { "type": "keyword" },
      "store_id":        { "type": "keyword" },
      "name":            { "type": "text", "analyzer": "product_analyzer", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 } } },
      "description":     { "type": "text", "analyzer": "product_analyzer" },
      "url_key":         { "type": "keyword" },
      "image":           { "type": "keyword", "index": false },
      "type_id":         { "type": "keyword" },
      "status":          { "type": "keyword" },
      "visibility":      { "type": "integer" },
      "category_id":     { "type": "keyword" },
      "price_f":         { "type": "double" },
      "special_price_f": { "type": "double" },
      "color_facet":     { "type": "keyword" },
      "size_facet":      { "type": "keyword" },
      "brand_facet":     { "type": "keyword" },
      "material_facet":  { "type": "keyword" },
      "manufacturer_facet": { "type": "keyword" }
    }
  }
}`
}
