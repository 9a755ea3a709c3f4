package config

import (
	"encoding/json"
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/CatalogSearchGo/pkg/config"
)

// Config holds all configuration for the catalog search service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"SEARCH_HTTP_PORT" envDefault:"8010"`

	// Elasticsearch
	ElasticsearchURL   string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200"`
	ElasticsearchIndex string `env:"ELASTICSEARCH_INDEX" envDefault:"catalog_products"`

	// Search engine selection (elasticsearch or memory)
	SearchEngine string `env:"SEARCH_ENGINE" envDefault:"elasticsearch"`

	// Store scope applied to every query
	StoreID string `env:"STORE_ID" envDefault:"1"`

	// Resolver behavior
	SpellcheckEnabled   bool     `env:"SPELLCHECK_ENABLED" envDefault:"true"`
	ShowOutOfStock      bool     `env:"SHOW_OUT_OF_STOCK" envDefault:"false"`
	SearchQueryBoost    string   `env:"SEARCH_QUERY_BOOST" envDefault:""`
	BaseStatAttributes  []string `env:"BASE_STAT_ATTRIBUTES" envDefault:"price" envSeparator:","`
	BaseFacetAttributes []string `env:"BASE_FACET_ATTRIBUTES" envDefault:"category,color,brand" envSeparator:","`

	// CategoryFacets is a JSON document mapping category IDs to the facet
	// and stat attribute codes of that category's listing, e.g.
	// {"facets":{"12":["color","size"]},"stats":{"12":["price"]}}.
	CategoryFacets string `env:"CATEGORY_FACETS" envDefault:""`

	// Redis facet configuration cache
	RedisHost     string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	FacetCacheTTL time.Duration `env:"FACET_CACHE_TTL" envDefault:"5m"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
}

// CategoryFacetConfig is the decoded CategoryFacets document.
type CategoryFacetConfig struct {
	Facets map[string][]string `json:"facets"`
	Stats  map[string][]string `json:"stats"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load search config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DecodeCategoryFacets parses the CategoryFacets JSON document. An empty
// value decodes to an empty configuration.
func (c *Config) DecodeCategoryFacets() (CategoryFacetConfig, error) {
	out := CategoryFacetConfig{}
	if c.CategoryFacets == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(c.CategoryFacets), &out); err != nil {
		return out, fmt.Errorf("decode CATEGORY_FACETS: %w", err)
	}
	return out, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.StoreID == "" {
		return fmt.Errorf("store id must not be empty")
	}
	if _, err := c.DecodeCategoryFacets(); err != nil {
		return err
	}
	return nil
}
