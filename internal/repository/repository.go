package repository

import (
	"context"
	"time"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
)

// CartRepository stores carts by owner (user id or guest session id).
type CartRepository interface {
	// Get returns the cart of owner, or a NotFound error.
	Get(ctx context.Context, owner string) (*domain.Cart, error)

	// Save overwrites the stored cart and refreshes its expiry.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the cart of owner. Deleting a missing cart is not an error.
	Delete(ctx context.Context, owner string) error
}

// OrderFilter narrows an order listing.
type OrderFilter struct {
	UserID         *string
	DeliveryStatus *domain.DeliveryStatus
	PaymentStatus  *domain.PaymentStatus
	Page           int
	PerPage        int
}

// StatusUpdate carries the axes to change. Nil fields are left as they are.
type StatusUpdate struct {
	DeliveryStatus *domain.DeliveryStatus
	PaymentStatus  *domain.PaymentStatus
}

// OrderRepository persists orders. Writes are last-write-wins.
type OrderRepository interface {
	// Create inserts the order and its items in one transaction.
	Create(ctx context.Context, order *domain.Order) error

	GetByID(ctx context.Context, id string) (*domain.Order, error)

	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// UpdateStatus writes the given axes and returns the resulting order.
	UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*domain.Order, error)

	SetUserComment(ctx context.Context, id, text string) (*domain.Order, error)

	AppendAdminComment(ctx context.Context, id, text string) (*domain.Order, error)
}

// HistoryRepository stores archived orders, at most one per order id.
type HistoryRepository interface {
	// Create inserts entry unless one exists for its order. It returns the
	// stored entry and whether this call created it.
	Create(ctx context.Context, entry *domain.OrderHistoryEntry) (*domain.OrderHistoryEntry, bool, error)

	ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.OrderHistoryEntry, int, error)
}

// ProductRepository persists catalog products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	ListAll(ctx context.Context) ([]domain.Category, error)

	// Delete fails with Conflict while products still reference the category.
	Delete(ctx context.Context, id string) error
}

// BannerRepository persists banners.
type BannerRepository interface {
	Create(ctx context.Context, banner *domain.Banner) error
	Delete(ctx context.Context, id string) error

	// ListActive returns active banners for position ("" for all), ordered by
	// sort order. Time windows are checked by the caller.
	ListActive(ctx context.Context, position string) ([]domain.Banner, error)
}

// UserRepository persists accounts.
type UserRepository interface {
	// Create fails with AlreadyExists on a duplicate email.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// WishlistRepository persists saved products.
type WishlistRepository interface {
	// Add is idempotent.
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
	List(ctx context.Context, userID string) ([]domain.WishlistItem, error)
}

// AnalyticsRepository stores consumed analytics events.
type AnalyticsRepository interface {
	Insert(ctx context.Context, event *domain.AnalyticsEvent) error
	TopProducts(ctx context.Context, eventType string, since time.Time, limit int) ([]domain.ProductStat, error)
}
