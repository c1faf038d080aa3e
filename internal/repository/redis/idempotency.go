package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const processedKeyPrefix = "processed:"

// IdempotencyStore claims event ids with SET NX so a redelivered Kafka
// message is handled once per TTL window.
type IdempotencyStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewIdempotencyStore creates a store whose claims expire after ttl.
func NewIdempotencyStore(client redis.Cmdable, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Claim reports whether the caller is the first to claim eventID.
func (s *IdempotencyStore) Claim(ctx context.Context, eventID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, processedKeyPrefix+eventID, 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis claim %s: %w", eventID, err)
	}
	return ok, nil
}

// Release drops a claim so the event can be processed again.
func (s *IdempotencyStore) Release(ctx context.Context, eventID string) error {
	if err := s.client.Del(ctx, processedKeyPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("redis release %s: %w", eventID, err)
	}
	return nil
}
