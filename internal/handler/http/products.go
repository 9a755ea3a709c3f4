package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/CatalogSearchGo/internal/engine"
	"github.com/utafrali/CatalogSearchGo/internal/resolver"
	"github.com/utafrali/CatalogSearchGo/pkg/httputil"
	"github.com/utafrali/CatalogSearchGo/pkg/validator"
)

// ProductsHandler handles HTTP requests for the product listing endpoints.
type ProductsHandler struct {
	resolver *resolver.Resolver
	indexer  engine.Indexer
	logger   *slog.Logger
}

// NewProductsHandler creates a new products HTTP handler. indexer may be nil
// when the engine does not support direct document maintenance.
func NewProductsHandler(res *resolver.Resolver, indexer engine.Indexer, logger *slog.Logger) *ProductsHandler {
	return &ProductsHandler{
		resolver: res,
		indexer:  indexer,
		logger:   logger,
	}
}

// --- Request DTOs ---

// ResolveRequest is the JSON request body for resolving a product listing.
// The caller-level arguments are inlined; Context carries the request-scoped
// argument bag merged in under the policy selected by Overwrite/Merge.
type ResolveRequest struct {
	resolver.Args
	Context   *resolver.Args `json:"context,omitempty"`
	Overwrite bool           `json:"overwrite,omitempty"`
	Merge     bool           `json:"merge,omitempty"`
	Selection map[string]any `json:"selection,omitempty"`
}

// BulkIndexRequest is the JSON request body for bulk indexing product documents.
type BulkIndexRequest struct {
	Products []engine.Document `json:"products" validate:"required,min=1,max=500"`
}

// --- Handlers ---

// Resolve handles POST /api/v1/products/resolve
func (h *ProductsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if req.PageSize < 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "pageSize must not be negative"},
		})
		return
	}

	policy := resolver.PolicyFromFlags(req.Overwrite, req.Merge)
	selection := parseSelection(req.Selection)

	result, err := h.resolver.Resolve(r.Context(), req.Args, req.Context, policy, selection)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// IndexProduct handles POST /api/v1/products
func (h *ProductsHandler) IndexProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var doc engine.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	sku, ok := doc["sku"].(string)
	if !ok || strings.TrimSpace(sku) == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "document is missing a sku"},
		})
		return
	}

	if err := h.indexer.Index(r.Context(), doc); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"sku": sku, "status": "indexed"}})
}

// DeleteProduct handles DELETE /api/v1/products/{sku}
func (h *ProductsHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	if strings.TrimSpace(sku) == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "sku must not be empty"},
		})
		return
	}

	if err := h.indexer.Delete(r.Context(), sku); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"sku": sku, "status": "deleted"}})
}

// BulkIndex handles POST /api/v1/products/bulk
func (h *ProductsHandler) BulkIndex(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20) // 10MB limit for bulk endpoint

	var req BulkIndexRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.indexer.BulkIndex(r.Context(), req.Products); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"indexed": len(req.Products), "status": "ok"}})
}

// parseSelection converts the raw JSON field tree into a Selection. A leaf
// may be null, true, or an empty object.
func parseSelection(raw map[string]any) resolver.Selection {
	if len(raw) == 0 {
		return nil
	}
	sel := make(resolver.Selection, len(raw))
	for name, child := range raw {
		if sub, ok := child.(map[string]any); ok {
			sel[name] = parseSelection(sub)
		} else {
			sel[name] = nil
		}
	}
	return sel
}
