package kafka

import (
	"context"
	"log/slog"
)

// IdempotencyStore remembers processed event ids. Claim must be atomic:
// exactly one concurrent caller gets true for a given id.
type IdempotencyStore interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

// IdempotentHandler skips events whose id was already claimed. A failed
// handler releases its claim so the retry can run. If the store itself is
// unavailable the event is processed anyway.
func IdempotentHandler(store IdempotencyStore, inner Handler, logger *slog.Logger) Handler {
	return func(ctx context.Context, event *Event) error {
		if event.ID == "" {
			return inner(ctx, event)
		}

		claimed, err := store.Claim(ctx, event.ID)
		if err != nil {
			logger.WarnContext(ctx, "idempotency claim failed, processing anyway",
				slog.String("event_id", event.ID),
				slog.String("error", err.Error()),
			)
			return inner(ctx, event)
		}
		if !claimed {
			logger.DebugContext(ctx, "duplicate event skipped",
				slog.String("event_id", event.ID),
				slog.String("event_type", event.Type),
			)
			return nil
		}

		if err := inner(ctx, event); err != nil {
			if relErr := store.Release(ctx, event.ID); relErr != nil {
				logger.WarnContext(ctx, "idempotency release failed",
					slog.String("event_id", event.ID),
					slog.String("error", relErr.Error()),
				)
			}
			return err
		}
		return nil
	}
}
