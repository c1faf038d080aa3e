package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

var productCols = []string{
	"id", "title", "description", "slug", "price", "discount", "discount_until", "category_id",
	"colors", "sizes", "images", "created_at", "updated_at",
}

func productRow(id string, price int64, discount float64, until *time.Time) []any {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []any{
		id, []byte(`{"ru":"Платье","en":"Dress"}`), []byte(`{}`), "plate", price, discount, until,
		(*string)(nil), []string{"red"}, []string{"S", "M"}, []string{"a.jpg"}, now, now,
	}
}

func TestProductRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	until := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM products WHERE id").
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows(productCols).AddRow(productRow("p1", 1000, 20, &until)...))

	p, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "Dress", p.Title.In("en"))
	assert.Equal(t, float64(20), p.Discount)
	assert.Equal(t, []string{"S", "M"}, p.Sizes)
	assert.Nil(t, p.CategoryID)
	assert.Equal(t, domain.LocalizedText{}, p.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery("FROM products").WithArgs("nope").WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProductRepository_List_SearchAndSort(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)
	cat := "cat-1"

	mock.ExpectQuery(`(?s)title->>'ru' ILIKE \$1 .*category_id = \$2.*ORDER BY CASE WHEN discount`).
		WithArgs(`%50\%%`, cat, 5, 0).
		WillReturnRows(pgxmock.NewRows(append(productCols, "total_count")).
			AddRow(append(productRow("p1", 500, 0, nil), 1)...))

	products, total, err := repo.List(context.Background(), domain.ProductFilter{
		Query:      "50%",
		CategoryID: &cat,
		Sort:       domain.SortPriceAsc,
		Page:       1,
		PerPage:    5,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_ByIDs(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`(?s)id = ANY\(\$1\).*ORDER BY created_at DESC`).
		WithArgs([]string{"p1", "p2"}, 20, 0).
		WillReturnRows(pgxmock.NewRows(append(productCols, "total_count")))

	products, _, err := repo.List(context.Background(), domain.ProductFilter{IDs: []string{"p1", "p2"}})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectExec("UPDATE products").WithArgs(anyArgs(12)...).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &domain.Product{ID: "p1", Title: domain.LocalizedText{"ru": "x"}})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCategoryRepository_Delete_InUse(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)

	mock.ExpectExec("DELETE FROM categories").
		WithArgs("cat-1").
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})

	err := repo.Delete(context.Background(), "cat-1")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCategoryRepository_Create_DuplicateSlug(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)

	mock.ExpectExec("INSERT INTO categories").
		WithArgs("c1", pgxmock.AnyArg(), "platya", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	err := repo.Create(context.Background(), &domain.Category{ID: "c1", Slug: "platya"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestCategoryRepository_ListAll(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)
	parent := "c0"

	mock.ExpectQuery("FROM categories ORDER BY slug").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "slug", "parent_id", "created_at"}).
			AddRow("c1", []byte(`{"ru":"Платья"}`), "platya", &parent, time.Now()))

	categories, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Платья", categories[0].Name.In("en"))
	assert.Equal(t, "c0", *categories[0].ParentID)
}

func TestBannerRepository_ListActive(t *testing.T) {
	mock := newMock(t)
	repo := NewBannerRepository(mock)

	mock.ExpectQuery("FROM banners").
		WithArgs("hero").
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "image_url", "link_url", "position", "sort_order", "is_active", "starts_at", "ends_at", "created_at"}).
			AddRow("b1", []byte(`{"ru":"Скидки"}`), "/b1.jpg", "/sale", "hero", 1, true, (*time.Time)(nil), (*time.Time)(nil), time.Now()))

	banners, err := repo.ListActive(context.Background(), "hero")
	require.NoError(t, err)
	require.Len(t, banners, 1)
	assert.Equal(t, "/b1.jpg", banners[0].ImageURL)
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(append([]any{"u1", "a@b.kg"}, anyArgs(6)...)...).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	err := repo.Create(context.Background(), &domain.User{ID: "u1", Email: "a@b.kg"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("a@b.kg").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "name", "phone", "role", "created_at", "updated_at"}).
			AddRow("u1", "a@b.kg", "hash", "Asel", "", "admin", now, now))

	u, err := repo.GetByEmail(context.Background(), "a@b.kg")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
}

func TestWishlistRepository_Add(t *testing.T) {
	mock := newMock(t)
	repo := NewWishlistRepository(mock)

	mock.ExpectExec("ON CONFLICT \\(user_id, product_id\\) DO NOTHING").
		WithArgs("u1", "p1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectExec("INSERT INTO wishlists").
		WithArgs("u1", "p404").
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})

	require.NoError(t, repo.Add(context.Background(), "u1", "p1"))
	assert.ErrorIs(t, repo.Add(context.Background(), "u1", "p404"), apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistRepository_Remove_Missing(t *testing.T) {
	mock := newMock(t)
	repo := NewWishlistRepository(mock)

	mock.ExpectExec("DELETE FROM wishlists").WithArgs("u1", "p1").WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.Remove(context.Background(), "u1", "p1"), apperrors.ErrNotFound)
}

func TestAnalyticsRepository(t *testing.T) {
	mock := newMock(t)
	repo := NewAnalyticsRepository(mock)
	since := time.Now().Add(-24 * time.Hour)
	e := &domain.AnalyticsEvent{ID: "e1", Type: domain.EventCartAdd, SessionID: "s1", ProductID: "p1", Qty: 2, OccurredAt: time.Now()}

	mock.ExpectExec("INSERT INTO analytics_events").
		WithArgs(e.ID, e.Type, e.SessionID, e.UserID, e.ProductID, e.Qty, e.OccurredAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("GROUP BY product_id").
		WithArgs(domain.EventCartAdd, since, 3).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "cnt"}).
			AddRow("p1", int64(7)).
			AddRow("p2", int64(3)))

	require.NoError(t, repo.Insert(context.Background(), e))
	stats, err := repo.TopProducts(context.Background(), domain.EventCartAdd, since, 3)
	require.NoError(t, err)
	assert.Equal(t, []domain.ProductStat{{ProductID: "p1", Count: 7}, {ProductID: "p2", Count: 3}}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepository_InsertError(t *testing.T) {
	mock := newMock(t)
	repo := NewAnalyticsRepository(mock)

	mock.ExpectExec("INSERT INTO analytics_events").WithArgs(anyArgs(7)...).WillReturnError(errors.New("boom"))

	err := repo.Insert(context.Background(), &domain.AnalyticsEvent{ID: "e1"})
	assert.ErrorContains(t, err, "insert analytics event")
}
