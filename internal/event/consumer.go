package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/CatalogSearchGo/internal/engine"
	pkgkafka "github.com/utafrali/CatalogSearchGo/pkg/kafka"
)

// Kafka topics for product domain events consumed by the search service.
const (
	TopicProductSaved   = "catalog.product.saved"
	TopicProductDeleted = "catalog.product.deleted"
)

// ProductSavedData is the payload of a product save event: the full engine
// document to index.
type ProductSavedData map[string]any

// ProductDeletedData is the payload of a product delete event.
type ProductDeletedData struct {
	SKU string `json:"sku"`
}

// Consumer applies product change events to the search index.
type Consumer struct {
	indexer engine.Indexer
	logger  *slog.Logger
}

// NewConsumer creates a consumer writing to the given indexer.
func NewConsumer(indexer engine.Indexer, logger *slog.Logger) *Consumer {
	return &Consumer{indexer: indexer, logger: logger}
}

// Handle processes one product event.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicProductSaved:
		return c.handleProductSaved(ctx, event)
	case TopicProductDeleted:
		return c.handleProductDeleted(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (c *Consumer) handleProductSaved(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductSavedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product.saved data: %w", err)
	}

	if err := c.indexer.Index(ctx, engine.Document(data)); err != nil {
		return fmt.Errorf("index product from saved event: %w", err)
	}

	c.logger.InfoContext(ctx, "indexed product from saved event",
		slog.String("aggregate_id", event.AggregateID),
	)
	return nil
}

func (c *Consumer) handleProductDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductDeletedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product.deleted data: %w", err)
	}

	if err := c.indexer.Delete(ctx, data.SKU); err != nil {
		return fmt.Errorf("delete product from deleted event: %w", err)
	}

	c.logger.InfoContext(ctx, "deleted product from deleted event",
		slog.String("sku", data.SKU),
	)
	return nil
}
