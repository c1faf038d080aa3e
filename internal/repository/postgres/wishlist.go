package postgres

import (
	"context"
	"fmt"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/database"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

// WishlistRepository implements repository.WishlistRepository on PostgreSQL.
type WishlistRepository struct {
	pool database.DBTX
}

// NewWishlistRepository creates a PostgreSQL-backed wishlist repository.
func NewWishlistRepository(pool database.DBTX) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

// Add saves productID for userID. Saving twice is a no-op.
func (r *WishlistRepository) Add(ctx context.Context, userID, productID string) (err error) {
	const query = `
		INSERT INTO wishlists (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING`

	ctx, end := database.TraceQuery(ctx, "wishlist.add", query)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, query, userID, productID); err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.NotFound("product", productID)
		}
		return fmt.Errorf("add wishlist item: %w", err)
	}
	return nil
}

func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) (err error) {
	const query = `DELETE FROM wishlists WHERE user_id = $1 AND product_id = $2`

	ctx, end := database.TraceQuery(ctx, "wishlist.remove", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist item", productID)
	}
	return nil
}

// List returns the user's saved products, newest first.
func (r *WishlistRepository) List(ctx context.Context, userID string) (_ []domain.WishlistItem, err error) {
	const query = `
		SELECT user_id, product_id, created_at
		FROM wishlists
		WHERE user_id = $1
		ORDER BY created_at DESC`

	ctx, end := database.TraceQuery(ctx, "wishlist.list", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	items := make([]domain.WishlistItem, 0)
	for rows.Next() {
		var item domain.WishlistItem
		if err := rows.Scan(&item.UserID, &item.ProductID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist: %w", err)
	}
	return items, nil
}
