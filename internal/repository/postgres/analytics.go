package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/database"
)

// AnalyticsRepository implements repository.AnalyticsRepository on PostgreSQL.
type AnalyticsRepository struct {
	pool database.DBTX
}

// NewAnalyticsRepository creates a PostgreSQL-backed analytics repository.
func NewAnalyticsRepository(pool database.DBTX) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// Insert stores one event. Replays of the same id are ignored.
func (r *AnalyticsRepository) Insert(ctx context.Context, e *domain.AnalyticsEvent) (err error) {
	const query = `
		INSERT INTO analytics_events (id, type, session_id, user_id, product_id, qty, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`

	ctx, end := database.TraceQuery(ctx, "analytics.insert", query)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, query,
		e.ID, e.Type, e.SessionID, e.UserID, e.ProductID, e.Qty, e.OccurredAt); err != nil {
		return fmt.Errorf("insert analytics event: %w", err)
	}
	return nil
}

// TopProducts counts events of eventType since the given time per product.
func (r *AnalyticsRepository) TopProducts(ctx context.Context, eventType string, since time.Time, limit int) (_ []domain.ProductStat, err error) {
	const query = `
		SELECT product_id, count(*) AS cnt
		FROM analytics_events
		WHERE type = $1 AND occurred_at >= $2
		GROUP BY product_id
		ORDER BY cnt DESC, product_id
		LIMIT $3`

	ctx, end := database.TraceQuery(ctx, "analytics.top_products", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, eventType, since, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	stats := make([]domain.ProductStat, 0)
	for rows.Next() {
		var s domain.ProductStat
		if err := rows.Scan(&s.ProductID, &s.Count); err != nil {
			return nil, fmt.Errorf("scan product stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product stats: %w", err)
	}
	return stats, nil
}
