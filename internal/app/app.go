package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/CatalogSearchGo/internal/catalog"
	"github.com/utafrali/CatalogSearchGo/internal/config"
	"github.com/utafrali/CatalogSearchGo/internal/engine"
	esengine "github.com/utafrali/CatalogSearchGo/internal/engine/elasticsearch"
	"github.com/utafrali/CatalogSearchGo/internal/engine/memory"
	"github.com/utafrali/CatalogSearchGo/internal/event"
	handler "github.com/utafrali/CatalogSearchGo/internal/handler/http"
	"github.com/utafrali/CatalogSearchGo/internal/resolver"
	"github.com/utafrali/CatalogSearchGo/internal/schema"
	"github.com/utafrali/CatalogSearchGo/internal/stats"
	"github.com/utafrali/CatalogSearchGo/pkg/database"
	"github.com/utafrali/CatalogSearchGo/pkg/health"
	pkgkafka "github.com/utafrali/CatalogSearchGo/pkg/kafka"
)

// App wires together all dependencies and runs the catalog search service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	consumers  []*pkgkafka.Consumer
	producer   *pkgkafka.Producer
	dlq        *pkgkafka.DLQProducer
	redis      *redis.Client
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize the search engine based on configuration.
	var client engine.Client
	var indexer engine.Indexer
	var esClient *esengine.Client
	switch cfg.SearchEngine {
	case "elasticsearch":
		var err error
		esClient, err = esengine.New(cfg.ElasticsearchURL, cfg.ElasticsearchIndex, logger)
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch engine: %w", err)
		}
		client = esClient
		indexer = esClient
		logger.Info("elasticsearch engine initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("index", cfg.ElasticsearchIndex),
		)
	default:
		mem := memory.New()
		client = mem
		indexer = mem
		logger.Info("in-memory engine initialized")
	}

	mapper := schema.NewStaticMapper(nil)

	// Category facet configuration, optionally cached in Redis.
	facetCfg, err := cfg.DecodeCategoryFacets()
	if err != nil {
		return nil, err
	}
	provider := catalog.NewProvider(catalog.FacetConfig{
		Facets: facetCfg.Facets,
		Stats:  facetCfg.Stats,
	}, mapper)

	var facets resolver.CategoryFacetProvider = provider
	var rdb *redis.Client
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rdb, err = database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Warn("redis unavailable, facet configuration will not be cached",
			slog.String("error", err.Error()),
		)
		rdb = nil
	} else {
		facets = catalog.NewCachedProvider(provider, rdb, cfg.FacetCacheTTL, logger)
	}

	// Search statistics are published to Kafka.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	recorder := stats.NewRecorder(producer, logger)

	res := resolver.New(client, mapper, facets, resolver.Config{
		StoreID:           cfg.StoreID,
		SpellcheckEnabled: cfg.SpellcheckEnabled,
		ShowOutOfStock:    cfg.ShowOutOfStock,
		QueryBoost:        cfg.SearchQueryBoost,
		BaseStats:         cfg.BaseStatAttributes,
		BaseFacets:        cfg.BaseFacetAttributes,
	}).WithStatsRecorder(recorder)

	// Kafka consumers keep the index in sync with the product catalog.
	eventConsumer := event.NewConsumer(indexer, logger)
	idempotency := pkgkafka.NewMemoryIdempotencyStore(24 * time.Hour)
	handle := pkgkafka.IdempotentHandler(idempotency, eventConsumer.Handle, logger)

	topics := []string{
		event.TopicProductSaved,
		event.TopicProductDeleted,
	}

	dlq := pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)

	var consumers []*pkgkafka.Consumer
	for _, topic := range topics {
		consumerCfg := pkgkafka.ConsumerConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  "catalog-search",
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6, // 10 MB
		}
		consumers = append(consumers, pkgkafka.NewConsumer(consumerCfg, handle, logger).WithDLQ(dlq))
	}
	logger.Info("kafka consumers initialized",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.Int("topic_count", len(topics)),
	)

	// Health checks.
	healthHandler := health.NewHandler()
	if esClient != nil {
		healthHandler.RegisterCritical("elasticsearch", esClient.Ping)
	}
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})
	if rdb != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	// HTTP router.
	products := handler.NewProductsHandler(res, indexer, logger)
	router := handler.NewRouter(products, healthHandler, logger, handler.RouterConfig{
		Environment: cfg.Environment,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		consumers:  consumers,
		producer:   producer,
		dlq:        dlq,
		redis:      rdb,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and Kafka consumers, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		c := c
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.dlq.Close(); err != nil {
		a.logger.Error("dlq producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
