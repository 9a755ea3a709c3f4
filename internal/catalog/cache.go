package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/CatalogSearchGo/internal/engine"
)

// cacheKeyPrefix namespaces facet configuration entries in Redis.
const cacheKeyPrefix = "catalogsearch:facets:"

// FieldLookup is the provider contract the cache decorates.
type FieldLookup interface {
	FacetFieldsFor(ctx context.Context, categoryID string) ([]engine.Field, error)
	StatFieldsFor(ctx context.Context, categoryID string) ([]engine.Field, error)
}

// CachedProvider caches resolved per-category field lists in Redis. Cache
// failures fall through to the inner provider; a broken cache degrades to
// slower lookups, never to errors.
type CachedProvider struct {
	inner  FieldLookup
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedProvider wraps the given provider with a Redis cache.
func NewCachedProvider(inner FieldLookup, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// FacetFieldsFor returns the cached facet fields for the category,
// populating the cache on a miss.
func (c *CachedProvider) FacetFieldsFor(ctx context.Context, categoryID string) ([]engine.Field, error) {
	return c.lookup(ctx, "facet:"+categoryID, func() ([]engine.Field, error) {
		return c.inner.FacetFieldsFor(ctx, categoryID)
	})
}

// StatFieldsFor returns the cached stat fields for the category.
func (c *CachedProvider) StatFieldsFor(ctx context.Context, categoryID string) ([]engine.Field, error) {
	return c.lookup(ctx, "stat:"+categoryID, func() ([]engine.Field, error) {
		return c.inner.StatFieldsFor(ctx, categoryID)
	})
}

func (c *CachedProvider) lookup(ctx context.Context, key string, load func() ([]engine.Field, error)) ([]engine.Field, error) {
	cacheKey := cacheKeyPrefix + key

	cached, err := c.rdb.Get(ctx, cacheKey).Bytes()
	if err == nil {
		var fields []engine.Field
		if jsonErr := json.Unmarshal(cached, &fields); jsonErr == nil {
			return fields, nil
		}
	} else if err != redis.Nil {
		c.logger.WarnContext(ctx, "facet cache read failed",
			slog.String("key", cacheKey),
			slog.String("error", err.Error()),
		)
	}

	fields, err := load()
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(fields); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, cacheKey, data, c.ttl).Err(); setErr != nil {
			c.logger.WarnContext(ctx, "facet cache write failed",
				slog.String("key", cacheKey),
				slog.String("error", setErr.Error()),
			)
		}
	}

	return fields, nil
}
