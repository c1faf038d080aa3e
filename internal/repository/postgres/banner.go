package postgres

import (
	"context"
	"fmt"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/database"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

// BannerRepository implements repository.BannerRepository on PostgreSQL.
type BannerRepository struct {
	pool database.DBTX
}

// NewBannerRepository creates a PostgreSQL-backed banner repository.
func NewBannerRepository(pool database.DBTX) *BannerRepository {
	return &BannerRepository{pool: pool}
}

func (r *BannerRepository) Create(ctx context.Context, b *domain.Banner) (err error) {
	const query = `
		INSERT INTO banners (id, title, image_url, link_url, position, sort_order, is_active, starts_at, ends_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	ctx, end := database.TraceQuery(ctx, "banner.create", query)
	defer func() { end(err) }()

	title, err := marshalText(b.Title)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		b.ID, title, b.ImageURL, b.LinkURL, b.Position, b.SortOrder, b.IsActive, b.StartsAt, b.EndsAt, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert banner: %w", err)
	}
	return nil
}

func (r *BannerRepository) Delete(ctx context.Context, id string) (err error) {
	const query = `DELETE FROM banners WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "banner.delete", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete banner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("banner", id)
	}
	return nil
}

// ListActive returns active banners, optionally for one position.
func (r *BannerRepository) ListActive(ctx context.Context, position string) (_ []domain.Banner, err error) {
	const query = `
		SELECT id, title, image_url, link_url, position, sort_order, is_active, starts_at, ends_at, created_at
		FROM banners
		WHERE is_active AND ($1 = '' OR position = $1)
		ORDER BY sort_order, created_at`

	ctx, end := database.TraceQuery(ctx, "banner.list_active", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, position)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	defer rows.Close()

	banners := make([]domain.Banner, 0)
	for rows.Next() {
		var (
			b     domain.Banner
			title []byte
		)
		if err := rows.Scan(&b.ID, &title, &b.ImageURL, &b.LinkURL, &b.Position, &b.SortOrder,
			&b.IsActive, &b.StartsAt, &b.EndsAt, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan banner: %w", err)
		}
		if b.Title, err = unmarshalText(title); err != nil {
			return nil, err
		}
		banners = append(banners, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banners: %w", err)
	}
	return banners, nil
}
