package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/repository"
	pkgkafka "github.com/Emirlan007/Cassini-shop-sub000/pkg/kafka"
)

// NewHandler stores each analytics event read from the bus.
func NewHandler(repo repository.AnalyticsRepository, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, evt *pkgkafka.Event) error {
		var e domain.AnalyticsEvent
		if err := evt.Decode(&e); err != nil {
			return err
		}
		if e.ID == "" {
			e.ID = evt.ID
		}
		if !slices.Contains(domain.AnalyticsEventTypes(), e.Type) {
			return fmt.Errorf("unknown analytics event type %q", e.Type)
		}
		if e.OccurredAt.IsZero() {
			e.OccurredAt = evt.OccurredAt
		}

		if err := repo.Insert(ctx, &e); err != nil {
			return err
		}
		logger.DebugContext(ctx, "analytics event stored",
			slog.String("event_id", e.ID),
			slog.String("type", e.Type),
		)
		return nil
	}
}

// Consumer is the background worker that drains TopicEvents into the
// analytics store. Redelivered events are skipped through store.
type Consumer struct {
	consumer *pkgkafka.Consumer
}

func NewConsumer(cfg pkgkafka.ConsumerConfig, repo repository.AnalyticsRepository, store pkgkafka.IdempotencyStore, dlq *pkgkafka.DeadLetterQueue, logger *slog.Logger) *Consumer {
	cfg.Topic = TopicEvents
	handler := pkgkafka.IdempotentHandler(store, NewHandler(repo, logger), logger)
	return &Consumer{consumer: pkgkafka.NewConsumer(cfg, handler, dlq, logger)}
}

// Run consumes until ctx is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.consumer.Run(ctx)
}

func (c *Consumer) Close() error {
	return c.consumer.Close()
}
