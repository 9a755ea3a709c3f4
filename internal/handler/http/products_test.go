package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/CatalogSearchGo/internal/catalog"
	"github.com/utafrali/CatalogSearchGo/internal/engine"
	"github.com/utafrali/CatalogSearchGo/internal/engine/memory"
	"github.com/utafrali/CatalogSearchGo/internal/resolver"
	"github.com/utafrali/CatalogSearchGo/internal/schema"
)

func newTestHandler(t *testing.T) (*ProductsHandler, *memory.Engine) {
	t.Helper()
	eng := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mapper := schema.NewStaticMapper(nil)
	facets := catalog.NewProvider(catalog.FacetConfig{}, mapper)
	res := resolver.New(eng, mapper, facets, resolver.Config{
		StoreID:           "1",
		SpellcheckEnabled: false,
	})
	return NewProductsHandler(res, eng, logger), eng
}

func newTestRouter(t *testing.T) (http.Handler, *memory.Engine) {
	t.Helper()
	h, eng := newTestHandler(t)
	r := chi.NewRouter()
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Post("/resolve", h.Resolve)
			r.Post("/", h.IndexProduct)
			r.Post("/bulk", h.BulkIndex)
		})
		r.Delete("/{sku}", h.DeleteProduct)
	})
	return r, eng
}

// storefrontDoc builds a document that passes the store scope filters the
// resolver injects (store scope, product type, visibility, enabled status).
func storefrontDoc(sku, name string, extra map[string]any) engine.Document {
	doc := engine.Document{
		"sku":         sku,
		"name":        name,
		"store_id":    "1",
		"object_type": "product",
		"visibility":  4,
		"status":      "1",
	}
	for k, v := range extra {
		doc[k] = v
	}
	return doc
}

func seedCatalog(t *testing.T, eng *memory.Engine) {
	t.Helper()
	docs := []engine.Document{
		storefrontDoc("SKU-1", "Blue Hoodie", map[string]any{"color_facet": "blue", "price_f": 49.0}),
		storefrontDoc("SKU-2", "Red Hoodie", map[string]any{"color_facet": "red", "price_f": 59.0}),
		storefrontDoc("SKU-3", "Green Jacket", map[string]any{"color_facet": "green", "price_f": 120.0}),
	}
	for _, doc := range docs {
		require.NoError(t, eng.Index(context.Background(), doc))
	}
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// --- Resolve ---

func TestResolve_Search(t *testing.T) {
	router, eng := newTestRouter(t)
	seedCatalog(t, eng)

	w := postJSON(router, "/api/v1/products/resolve", `{"search":"hoodie"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			TotalCount int            `json:"total_count"`
			Items      map[string]any `json:"items"`
			PageInfo   struct {
				PageSize    int `json:"page_size"`
				CurrentPage int `json:"current_page"`
			} `json:"page_info"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Data.TotalCount)
	assert.Len(t, resp.Data.Items, 2)
	assert.Contains(t, resp.Data.Items, "300")
	assert.Contains(t, resp.Data.Items, "301")
}

func TestResolve_FilterOnly(t *testing.T) {
	router, eng := newTestRouter(t)
	seedCatalog(t, eng)

	w := postJSON(router, "/api/v1/products/resolve",
		`{"filter":{"attributes":{"color":"color=red"}}}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			TotalCount int `json:"total_count"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Data.TotalCount)
}

func TestResolve_ContextArgsMerged(t *testing.T) {
	router, eng := newTestRouter(t)
	seedCatalog(t, eng)

	// The context bag carries the category filter; overwrite makes it win.
	body := `{
		"search": "hoodie",
		"context": {"filter": {"attributes": {"color": "color=blue"}}},
		"overwrite": true
	}`
	w := postJSON(router, "/api/v1/products/resolve", body)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			TotalCount int `json:"total_count"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Data.TotalCount)
}

func TestResolve_SelectionLimitsItemFields(t *testing.T) {
	router, eng := newTestRouter(t)
	seedCatalog(t, eng)

	body := `{
		"search": "jacket",
		"selection": {"items": {"sku": null, "name": null}}
	}`
	w := postJSON(router, "/api/v1/products/resolve", body)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Items map[string]map[string]any `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Data.Items, 1)
	item := resp.Data.Items["300"]
	assert.Equal(t, "SKU-3", item["sku"])
	assert.Equal(t, "Green Jacket", item["name"])
	assert.NotContains(t, item, "color_facet")
}

func TestResolve_InvalidBody(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, "/api/v1/products/resolve", `{"search":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_INPUT")
}

func TestResolve_NegativePageSize(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, "/api/v1/products/resolve", `{"search":"x","pageSize":-1}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_PARAMETER")
}

func TestResolve_RequiresSearchOrFilter(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, "/api/v1/products/resolve", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_INPUT")
}

func TestResolve_RejectsWrongContentType(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/resolve", strings.NewReader(`{"search":"x"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestResolve_RejectsBodyOver1MB(t *testing.T) {
	router, _ := newTestRouter(t)

	padding := strings.Repeat("x", 1<<20+1)
	w := postJSON(router, "/api/v1/products/resolve", `{"search":"`+padding+`"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- IndexProduct ---

func TestIndexProduct(t *testing.T) {
	router, _ := newTestRouter(t)

	doc, err := json.Marshal(storefrontDoc("SKU-NEW", "New Hoodie", nil))
	require.NoError(t, err)

	w := postJSON(router, "/api/v1/products", string(doc))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"indexed"`)

	resolveW := postJSON(router, "/api/v1/products/resolve", `{"search":"hoodie"}`)
	require.Equal(t, http.StatusOK, resolveW.Code)
	assert.Contains(t, resolveW.Body.String(), "SKU-NEW")
}

func TestIndexProduct_MissingSKU(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, "/api/v1/products", `{"name":"No SKU"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing a sku")
}

// --- DeleteProduct ---

func TestDeleteProduct(t *testing.T) {
	router, eng := newTestRouter(t)
	seedCatalog(t, eng)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/SKU-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	resolveW := postJSON(router, "/api/v1/products/resolve", `{"search":"hoodie"}`)
	require.Equal(t, http.StatusOK, resolveW.Code)
	assert.NotContains(t, resolveW.Body.String(), "SKU-1")
}

// --- BulkIndex ---

func TestBulkIndex(t *testing.T) {
	router, _ := newTestRouter(t)

	var buf bytes.Buffer
	buf.WriteString(`{"products":[`)
	docs := []engine.Document{
		storefrontDoc("BULK-1", "Bulk One", nil),
		storefrontDoc("BULK-2", "Bulk Two", nil),
	}
	for i, doc := range docs {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := json.Marshal(doc)
		require.NoError(t, err)
		buf.Write(data)
	}
	buf.WriteString(`]}`)

	w := postJSON(router, "/api/v1/products/bulk", buf.String())

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"indexed":2`)
}

func TestBulkIndex_EmptyProducts(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, "/api/v1/products/bulk", `{"products":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

// --- parseSelection ---

func TestParseSelection(t *testing.T) {
	raw := map[string]any{
		"total_count": nil,
		"items": map[string]any{
			"sku":  nil,
			"name": true,
		},
	}

	sel := parseSelection(raw)

	require.Contains(t, sel, "total_count")
	require.Contains(t, sel, "items")
	assert.Nil(t, sel["total_count"])
	items := sel["items"]
	assert.Contains(t, items, "sku")
	assert.Contains(t, items, "name")
}

func TestParseSelection_Empty(t *testing.T) {
	assert.Nil(t, parseSelection(nil))
	assert.Nil(t, parseSelection(map[string]any{}))
}
