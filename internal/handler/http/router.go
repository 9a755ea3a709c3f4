package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/CatalogSearchGo/pkg/health"
	"github.com/utafrali/CatalogSearchGo/pkg/middleware"
)

// RouterConfig carries the router-level options.
type RouterConfig struct {
	Environment  string
	PprofAllowed []string
}

// NewRouter creates a chi router with all catalog search routes registered.
func NewRouter(
	products *ProductsHandler,
	healthHandler *health.Handler,
	log *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.Environment = cfg.Environment

	// Global middleware
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Recovery(log))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.PrometheusMetrics("catalog-search"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	if cfg.Environment == "development" {
		middleware.RegisterPprof(r, cfg.PprofAllowed, log)
	}

	// Product listing API endpoints
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Post("/resolve", products.Resolve)
			r.Post("/", products.IndexProduct)
			r.Post("/bulk", products.BulkIndex)
		})
		r.Delete("/{sku}", products.DeleteProduct)
	})

	return r
}
