package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/repository"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/database"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

const orderColumns = `o.id, o.user_id, o.total_price, o.payment_method, o.delivery_status, o.payment_status,
	o.user_comment, o.admin_comments, o.contact_name, o.contact_phone, o.contact_city, o.contact_address,
	o.created_at, o.updated_at`

// OrderRepository implements repository.OrderRepository on PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order row and its items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (err error) {
	const orderQuery = `
		INSERT INTO orders (id, user_id, total_price, payment_method, delivery_status, payment_status,
			user_comment, admin_comments, contact_name, contact_phone, contact_city, contact_address,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	const itemQuery = `
		INSERT INTO order_items (order_id, position, product_id, title, image, selected_color, selected_size, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	ctx, end := database.TraceQuery(ctx, "order.create", orderQuery)
	defer func() { end(err) }()

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, orderQuery,
			o.ID, o.UserID, o.TotalPrice, string(o.PaymentMethod),
			string(o.DeliveryStatus), string(o.PaymentStatus),
			o.UserComment, o.AdminComments,
			o.Name, o.Phone, o.City, o.Address,
			o.CreatedAt, o.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i, item := range o.Items {
			if _, err := tx.Exec(ctx, itemQuery,
				o.ID, i, item.Product, item.Title, item.Image,
				item.SelectedColor, item.SelectedSize, item.Price, item.Quantity,
			); err != nil {
				return fmt.Errorf("insert order item %d: %w", i, err)
			}
		}
		return nil
	})
}

// GetByID loads an order and its items in a single round trip.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (_ *domain.Order, err error) {
	query := `
		SELECT ` + orderColumns + `,
			COALESCE(
				JSONB_AGG(
					JSONB_BUILD_OBJECT(
						'product', oi.product_id,
						'title', oi.title,
						'image', oi.image,
						'selectedColor', oi.selected_color,
						'selectedSize', oi.selected_size,
						'price', oi.price,
						'quantity', oi.quantity
					) ORDER BY oi.position
				) FILTER (WHERE oi.order_id IS NOT NULL),
				'[]'::jsonb
			) AS items
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE o.id = $1
		GROUP BY o.id`

	ctx, end := database.TraceQuery(ctx, "order.get", query)
	defer func() { end(err) }()

	var itemsJSON []byte
	o, err := scanOrder(r.pool.QueryRow(ctx, query, id), &itemsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}
	return o, nil
}

// List returns a page of orders, newest first, with the total match count.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) (_ []domain.Order, _ int, err error) {
	var (
		conditions []string
		args       []any
	)
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("o.user_id = $%d", len(args)))
	}
	if filter.DeliveryStatus != nil {
		args = append(args, string(*filter.DeliveryStatus))
		conditions = append(conditions, fmt.Sprintf("o.delivery_status = $%d", len(args)))
	}
	if filter.PaymentStatus != nil {
		args = append(args, string(*filter.PaymentStatus))
		conditions = append(conditions, fmt.Sprintf("o.payment_status = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit, offset := limitOffset(filter.Page, filter.PerPage)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM orders o
		%s
		ORDER BY o.created_at DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))

	ctx, end := database.TraceQuery(ctx, "order.list", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var total int
	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// loadItems fills the items of orders with one query.
func (r *OrderRepository) loadItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		orders[i].Items = []domain.OrderItem{}
		byID[orders[i].ID] = &orders[i]
	}

	const query = `
		SELECT order_id, product_id, title, image, selected_color, selected_size, price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			item    domain.OrderItem
		)
		if err := rows.Scan(&orderID, &item.Product, &item.Title, &item.Image,
			&item.SelectedColor, &item.SelectedSize, &item.Price, &item.Quantity); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate order items: %w", err)
	}
	return nil
}

// UpdateStatus writes whichever axes are set and returns the fresh order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, update repository.StatusUpdate) (_ *domain.Order, err error) {
	const query = `
		UPDATE orders
		SET delivery_status = COALESCE($2::text, delivery_status),
			payment_status = COALESCE($3::text, payment_status),
			updated_at = $4
		WHERE id = $1`

	var delivery, payment any
	if update.DeliveryStatus != nil {
		delivery = string(*update.DeliveryStatus)
	}
	if update.PaymentStatus != nil {
		payment = string(*update.PaymentStatus)
	}

	if err := r.exec(ctx, "order.update_status", query, id, id, delivery, payment, time.Now().UTC()); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// SetUserComment overwrites the customer comment.
func (r *OrderRepository) SetUserComment(ctx context.Context, id, text string) (*domain.Order, error) {
	const query = `UPDATE orders SET user_comment = $2, updated_at = $3 WHERE id = $1`
	if err := r.exec(ctx, "order.set_user_comment", query, id, id, text, time.Now().UTC()); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// AppendAdminComment adds text to the end of the admin comment list.
func (r *OrderRepository) AppendAdminComment(ctx context.Context, id, text string) (*domain.Order, error) {
	const query = `UPDATE orders SET admin_comments = array_append(admin_comments, $2), updated_at = $3 WHERE id = $1`
	if err := r.exec(ctx, "order.append_admin_comment", query, id, id, text, time.Now().UTC()); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *OrderRepository) exec(ctx context.Context, op, query, id string, args ...any) (err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}
	return nil
}

func scanOrder(row pgx.Row, extra ...any) (*domain.Order, error) {
	var (
		o                         domain.Order
		method, delivery, payment string
	)
	dest := []any{
		&o.ID, &o.UserID, &o.TotalPrice, &method, &delivery, &payment,
		&o.UserComment, &o.AdminComments, &o.Name, &o.Phone, &o.City, &o.Address,
		&o.CreatedAt, &o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	o.PaymentMethod = domain.PaymentMethod(method)
	o.DeliveryStatus = domain.DeliveryStatus(delivery)
	o.PaymentStatus = domain.PaymentStatus(payment)
	if o.AdminComments == nil {
		o.AdminComments = []string{}
	}
	return &o, nil
}
