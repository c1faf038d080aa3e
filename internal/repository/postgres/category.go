package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/database"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

// CategoryRepository implements repository.CategoryRepository on PostgreSQL.
type CategoryRepository struct {
	pool database.DBTX
}

// NewCategoryRepository creates a PostgreSQL-backed category repository.
func NewCategoryRepository(pool database.DBTX) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) (err error) {
	const query = `
		INSERT INTO categories (id, name, slug, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	ctx, end := database.TraceQuery(ctx, "category.create", query)
	defer func() { end(err) }()

	name, err := marshalText(c.Name)
	if err != nil {
		return err
	}

	if _, err = r.pool.Exec(ctx, query, c.ID, name, c.Slug, c.ParentID, c.CreatedAt); err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return apperrors.AlreadyExists("category", "slug", c.Slug)
		case pgForeignKeyViolation:
			return apperrors.Validation("parentId does not reference an existing category")
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (_ *domain.Category, err error) {
	const query = `SELECT id, name, slug, parent_id, created_at FROM categories WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "category.get", query)
	defer func() { end(err) }()

	c, err := scanCategory(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("category", id)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListAll returns every category ordered by slug.
func (r *CategoryRepository) ListAll(ctx context.Context) (_ []domain.Category, err error) {
	const query = `SELECT id, name, slug, parent_id, created_at FROM categories ORDER BY slug`

	ctx, end := database.TraceQuery(ctx, "category.list", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// Delete removes a category that no product references.
func (r *CategoryRepository) Delete(ctx context.Context, id string) (err error) {
	const query = `DELETE FROM categories WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "category.delete", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.Conflict("category is still referenced by products")
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("category", id)
	}
	return nil
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var (
		c    domain.Category
		name []byte
	)
	if err := row.Scan(&c.ID, &name, &c.Slug, &c.ParentID, &c.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if c.Name, err = unmarshalText(name); err != nil {
		return nil, err
	}
	return &c, nil
}
