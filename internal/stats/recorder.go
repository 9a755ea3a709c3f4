// Package stats publishes search query statistics as domain events.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	pkgkafka "github.com/utafrali/CatalogSearchGo/pkg/kafka"
)

// TopicSearchPerformed carries one event per executed free-text search.
const TopicSearchPerformed = "catalog.search.performed"

// SearchPerformedData is the event payload.
type SearchPerformedData struct {
	Query      string    `json:"query"`
	TotalCount int       `json:"total_count"`
	SearchedAt time.Time `json:"searched_at"`
}

// Recorder publishes search result counts to Kafka. Downstream consumers
// maintain the search term popularity and zero-result reports.
type Recorder struct {
	producer *pkgkafka.Producer
	logger   *slog.Logger
}

// NewRecorder creates a recorder over the given producer.
func NewRecorder(producer *pkgkafka.Producer, logger *slog.Logger) *Recorder {
	return &Recorder{producer: producer, logger: logger}
}

// RecordResultCount publishes the total result count observed for a search
// query.
func (r *Recorder) RecordResultCount(ctx context.Context, query string, total int) error {
	event, err := pkgkafka.NewEvent(
		TopicSearchPerformed,
		query,
		"search_query",
		"catalog-search",
		SearchPerformedData{
			Query:      query,
			TotalCount: total,
			SearchedAt: time.Now().UTC(),
		},
	)
	if err != nil {
		return fmt.Errorf("build search event: %w", err)
	}

	if err := r.producer.Publish(ctx, TopicSearchPerformed, event); err != nil {
		return fmt.Errorf("publish search event: %w", err)
	}

	r.logger.DebugContext(ctx, "search stats recorded",
		slog.String("query", query),
		slog.Int("total", total),
	)

	return nil
}
