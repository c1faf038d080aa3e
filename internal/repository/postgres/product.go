package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/database"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

const productColumns = `id, title, description, slug, price, discount, discount_until, category_id,
	colors, sizes, images, created_at, updated_at`

// effectivePriceSQL mirrors domain.ComputeEffectivePrice for ordering.
const effectivePriceSQL = `CASE WHEN discount > 0 AND discount_until > NOW()
	THEN ROUND(price * (100 - discount) / 100) ELSE price END`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ProductRepository implements repository.ProductRepository on PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	const query = `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	ctx, end := database.TraceQuery(ctx, "product.create", query)
	defer func() { end(err) }()

	title, description, err := productTexts(p)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		p.ID, title, description, p.Slug, p.Price, p.Discount, p.DiscountUntil, p.CategoryID,
		nonNil(p.Colors), nonNil(p.Sizes), nonNil(p.Images), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.Validation("categoryId does not reference an existing category")
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID returns one product.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "product.get", query)
	defer func() { end(err) }()

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update overwrites every mutable column.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	const query = `
		UPDATE products
		SET title = $2, description = $3, slug = $4, price = $5, discount = $6, discount_until = $7,
			category_id = $8, colors = $9, sizes = $10, images = $11, updated_at = $12
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "product.update", query)
	defer func() { end(err) }()

	title, description, err := productTexts(p)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, query,
		p.ID, title, description, p.Slug, p.Price, p.Discount, p.DiscountUntil, p.CategoryID,
		nonNil(p.Colors), nonNil(p.Sizes), nonNil(p.Images), p.UpdatedAt,
	)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.Validation("categoryId does not reference an existing category")
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}
	return nil
}

// Delete removes a product. Placed orders keep their item snapshots.
func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	const query = `DELETE FROM products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "product.delete", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

// List returns a filtered, sorted page of products and the total count. A
// text query matches any localized title.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) (_ []domain.Product, _ int, err error) {
	var (
		conditions []string
		args       []any
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+likeEscaper.Replace(q)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(title->>'ru' ILIKE $%d OR title->>'en' ILIKE $%d OR title->>'kg' ILIKE $%d)", n, n, n))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.IDs != nil {
		args = append(args, filter.IDs)
		conditions = append(conditions, fmt.Sprintf("id = ANY($%d)", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit, offset := limitOffset(filter.Page, filter.PerPage)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		productColumns, where, productOrder(filter.Sort), len(args)-1, len(args))

	ctx, end := database.TraceQuery(ctx, "product.list", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var total int
	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, total, nil
}

func productOrder(sort string) string {
	switch sort {
	case domain.SortPriceAsc:
		return effectivePriceSQL + " ASC, created_at DESC"
	case domain.SortPriceDesc:
		return effectivePriceSQL + " DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

func productTexts(p *domain.Product) ([]byte, []byte, error) {
	title, err := marshalText(p.Title)
	if err != nil {
		return nil, nil, err
	}
	description, err := marshalText(p.Description)
	if err != nil {
		return nil, nil, err
	}
	return title, description, nil
}

func scanProduct(row pgx.Row, extra ...any) (*domain.Product, error) {
	var (
		p                  domain.Product
		title, description []byte
	)
	dest := []any{
		&p.ID, &title, &description, &p.Slug, &p.Price, &p.Discount, &p.DiscountUntil, &p.CategoryID,
		&p.Colors, &p.Sizes, &p.Images, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	var err error
	if p.Title, err = unmarshalText(title); err != nil {
		return nil, err
	}
	if p.Description, err = unmarshalText(description); err != nil {
		return nil, err
	}
	p.Colors, p.Sizes, p.Images = nonNil(p.Colors), nonNil(p.Sizes), nonNil(p.Images)
	return &p, nil
}
