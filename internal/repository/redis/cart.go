package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

const cartKeyPrefix = "cart:"

// CartRepository implements repository.CartRepository using Redis. Each
// cart is one JSON value under cart:<owner>.
type CartRepository struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewCartRepository creates a Redis-backed cart repository. Saving a cart
// resets its TTL.
func NewCartRepository(client redis.Cmdable, ttl time.Duration) *CartRepository {
	return &CartRepository{client: client, ttl: ttl}
}

// Get loads the cart for owner. Totals are recomputed from the lines so a
// stale or hand-edited value can never report a wrong total.
func (r *CartRepository) Get(ctx context.Context, owner string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, cartKeyPrefix+owner).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("cart", owner)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	if cart.Lines == nil {
		cart.Lines = []domain.CartLine{}
	}
	cart.Owner = owner
	cart.Recompute()
	return &cart, nil
}

func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := r.client.Set(ctx, cartKeyPrefix+cart.Owner, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

// Delete removes the cart. Deleting a missing cart is not an error.
func (r *CartRepository) Delete(ctx context.Context, owner string) error {
	if err := r.client.Del(ctx, cartKeyPrefix+owner).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}
