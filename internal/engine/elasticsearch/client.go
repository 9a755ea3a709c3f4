// Package elasticsearch is the Elasticsearch-backed engine client. Queries
// accumulate builder state and translate to the search DSL on first execution.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/utafrali/CatalogSearchGo/internal/engine"
)

// Client is the Elasticsearch engine client.
type Client struct {
	es        *elasticsearch.Client
	indexName string
	logger    *slog.Logger
}

// esErrorResponse is used to decode Elasticsearch error responses.
type esErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// New creates an engine client connected to the given URL. It ensures the
// product index exists, creating it if necessary. An empty indexName selects
// DefaultIndexName.
func New(esURL string, indexName string, logger *slog.Logger) (*Client, error) {
	if indexName == "" {
		indexName = DefaultIndexName
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{esURL},
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to create client: %w", err)
	}

	c := &Client{
		es:        es,
		indexName: indexName,
		logger:    logger,
	}

	if err := c.ensureIndex(); err != nil {
		return nil, fmt.Errorf("elasticsearch: failed to ensure index: %w", err)
	}

	return c, nil
}

// Ping checks whether the Elasticsearch cluster is reachable.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: unexpected status %s", res.Status())
	}
	return nil
}

// NewQuery returns a fresh query builder bound to this client.
func (c *Client) NewQuery() engine.Query {
	return &query{client: c}
}

// ensureIndex checks whether the product index exists and creates it if not.
func (c *Client) ensureIndex() error {
	res, err := c.es.Indices.Exists([]string{c.indexName})
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	// Status 200 means the index exists.
	if res.StatusCode == 200 {
		c.logger.Info("elasticsearch index already exists", "index", c.indexName)
		return nil
	}

	mapping := buildIndexMapping()
	res, err = c.es.Indices.Create(
		c.indexName,
		c.es.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return fmt.Errorf("create index: %s — %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return fmt.Errorf("create index: unexpected status %s", res.Status())
	}

	c.logger.Info("elasticsearch index created", "index", c.indexName)
	return nil
}

// esSuggestResponse decodes term and phrase suggester responses.
type esSuggestResponse struct {
	Suggest map[string][]struct {
		Text    string `json:"text"`
		Options []struct {
			Text  string  `json:"text"`
			Score float64 `json:"score"`
			Freq  int     `json:"freq"`
		} `json:"options"`
	} `json:"suggest"`
}

// CheckSpelling asks the engine for spelling suggestions: a term suggester
// over the name field for per-term candidates, and a phrase suggester for
// whole-phrase collations.
func (c *Client) CheckSpelling(ctx context.Context, text string) (*engine.Suggestions, error) {
	body := map[string]any{
		"size": 0,
		"suggest": map[string]any{
			"text": text,
			"terms": map[string]any{
				"term": map[string]any{
					"field":        "name",
					"suggest_mode": "missing",
				},
			},
			"phrases": map[string]any{
				"phrase": map[string]any{
					"field": "name",
					"size":  5,
					"collate": map[string]any{
						"query": map[string]any{
							"source": map[string]any{
								"match": map[string]any{"name": "{{suggestion}}"},
							},
						},
					},
				},
			},
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch spellcheck: marshal request: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithIndex(c.indexName),
		c.es.Search.WithBody(bytes.NewReader(data)),
		c.es.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch spellcheck: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errResp esErrorResponse
		if decErr := json.NewDecoder(res.Body).Decode(&errResp); decErr == nil {
			return nil, fmt.Errorf("elasticsearch spellcheck: %s — %s", errResp.Error.Type, errResp.Error.Reason)
		}
		return nil, fmt.Errorf("elasticsearch spellcheck: unexpected status %s", res.Status())
	}

	var esResp esSuggestResponse
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, fmt.Errorf("elasticsearch spellcheck: decode response: %w", err)
	}

	suggestions := &engine.Suggestions{}
	for _, entry := range esResp.Suggest["phrases"] {
		for _, opt := range entry.Options {
			suggestions.Collations = append(suggestions.Collations, opt.Text)
		}
	}
	for _, entry := range esResp.Suggest["terms"] {
		if len(entry.Options) == 0 {
			continue
		}
		ts := engine.TermSuggestion{Term: entry.Text}
		for _, opt := range entry.Options {
			ts.Candidates = append(ts.Candidates, engine.Candidate{
				Text:  opt.Text,
				Score: opt.Score,
				Freq:  opt.Freq,
			})
		}
		suggestions.Terms = append(suggestions.Terms, ts)
	}

	return suggestions, nil
}
