package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/database"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

const historyColumns = `id, order_id, user_id, completed_at, payment_method, items, total_price`

// HistoryRepository implements repository.HistoryRepository on PostgreSQL.
// order_id is UNIQUE, which makes archiving idempotent.
type HistoryRepository struct {
	pool database.DBTX
}

// NewHistoryRepository creates a PostgreSQL-backed history repository.
func NewHistoryRepository(pool database.DBTX) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// Create inserts entry unless its order is already archived, in which case
// the existing entry is returned with created=false.
func (r *HistoryRepository) Create(ctx context.Context, e *domain.OrderHistoryEntry) (_ *domain.OrderHistoryEntry, _ bool, err error) {
	const insert = `
		INSERT INTO order_history (` + historyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_id) DO NOTHING`

	ctx, end := database.TraceQuery(ctx, "history.create", insert)
	defer func() { end(err) }()

	items, err := json.Marshal(e.Items)
	if err != nil {
		return nil, false, fmt.Errorf("marshal history items: %w", err)
	}

	tag, err := r.pool.Exec(ctx, insert,
		e.ID, e.OrderID, e.UserID, e.CompletedAt, string(e.PaymentMethod), items, e.TotalPrice)
	if err != nil {
		return nil, false, fmt.Errorf("insert order history: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return e, true, nil
	}

	existing, err := r.getByOrderID(ctx, e.OrderID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *HistoryRepository) getByOrderID(ctx context.Context, orderID string) (*domain.OrderHistoryEntry, error) {
	const query = `SELECT ` + historyColumns + ` FROM order_history WHERE order_id = $1`

	e, err := scanHistory(r.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order history", orderID)
		}
		return nil, fmt.Errorf("get order history: %w", err)
	}
	return e, nil
}

// ListByUser returns the user's archived orders, most recently completed first.
func (r *HistoryRepository) ListByUser(ctx context.Context, userID string, page, perPage int) (_ []domain.OrderHistoryEntry, _ int, err error) {
	const query = `
		SELECT ` + historyColumns + `, count(*) OVER() AS total_count
		FROM order_history
		WHERE user_id = $1
		ORDER BY completed_at DESC
		LIMIT $2 OFFSET $3`

	ctx, end := database.TraceQuery(ctx, "history.list_by_user", query)
	defer func() { end(err) }()

	limit, offset := limitOffset(page, perPage)
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list order history: %w", err)
	}
	defer rows.Close()

	var total int
	entries := make([]domain.OrderHistoryEntry, 0)
	for rows.Next() {
		e, err := scanHistory(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order history: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order history: %w", err)
	}
	return entries, total, nil
}

func scanHistory(row pgx.Row, extra ...any) (*domain.OrderHistoryEntry, error) {
	var (
		e      domain.OrderHistoryEntry
		method string
		items  []byte
	)
	dest := []any{&e.ID, &e.OrderID, &e.UserID, &e.CompletedAt, &method, &items, &e.TotalPrice}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	e.PaymentMethod = domain.PaymentMethod(method)
	if err := json.Unmarshal(items, &e.Items); err != nil {
		return nil, fmt.Errorf("unmarshal history items: %w", err)
	}
	return &e, nil
}
