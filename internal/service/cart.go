package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/analytics"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/event"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/repository"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

// AddItemInput selects a product option to put in the cart.
type AddItemInput struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity" validate:"required,gte=1,lte=100"`
	Lang      string `json:"-"`
}

// LineInput addresses an existing line. Quantity is ignored on removal.
type LineInput struct {
	ProductID string `json:"productId" validate:"required"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity" validate:"lte=100"`
}

func (in LineInput) key() domain.LineKey {
	return domain.LineKey{ProductID: in.ProductID, Color: in.Color, Size: in.Size}
}

// CartService owns cart mutations. A cart belongs to a user id or, for
// guests, a session id.
type CartService struct {
	repo     repository.CartRepository
	products repository.ProductRepository
	producer *event.Producer
	emitter  analytics.Emitter
	logger   *slog.Logger
	now      func() time.Time
}

func NewCartService(
	repo repository.CartRepository,
	products repository.ProductRepository,
	producer *event.Producer,
	emitter analytics.Emitter,
	logger *slog.Logger,
) *CartService {
	return &CartService{
		repo:     repo,
		products: products,
		producer: producer,
		emitter:  emitter,
		logger:   logger,
		now:      time.Now,
	}
}

// GetCart returns the owner's cart, or an empty one.
func (s *CartService) GetCart(ctx context.Context, owner string) (*domain.Cart, error) {
	if owner == "" {
		return nil, errNoOwner
	}
	return s.load(ctx, owner)
}

// AddItem adds quantity units of a product option. A line with the same
// product, color and size is merged and keeps its original unit price;
// otherwise the current effective price is captured.
func (s *CartService) AddItem(ctx context.Context, owner string, in AddItemInput) (*domain.Cart, error) {
	if owner == "" {
		return nil, errNoOwner
	}
	if in.ProductID == "" {
		return nil, apperrors.Validation("productId is required")
	}
	if in.Quantity <= 0 {
		return nil, apperrors.Validation("quantity must be greater than 0")
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product for cart: %w", err)
	}
	if !product.HasColor(in.Color) {
		return nil, apperrors.Validation(fmt.Sprintf("color %q is not available for this product", in.Color))
	}
	if !product.HasSize(in.Size) {
		return nil, apperrors.Validation(fmt.Sprintf("size %q is not available for this product", in.Size))
	}

	cart, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	line := domain.CartLine{
		ProductID:     product.ID,
		Title:         product.Title.In(domain.NormalizeLang(in.Lang)),
		UnitPrice:     product.EffectivePrice(s.now()),
		Quantity:      in.Quantity,
		SelectedColor: in.Color,
		SelectedSize:  in.Size,
		Image:         product.MainImage(),
	}
	if err := cart.CheckAdd(line); err != nil {
		return nil, err
	}
	cart.AddLine(line)

	if err := s.save(ctx, cart, "add"); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, analytics.NewEvent(ctx, domain.EventCartAdd, product.ID, in.Quantity))

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("owner", owner),
		slog.String("product_id", product.ID),
		slog.Int("quantity", in.Quantity),
	)
	return cart, nil
}

// UpdateQuantity sets the quantity of an existing line. Zero or less removes
// the line; an unknown line leaves the cart unchanged.
func (s *CartService) UpdateQuantity(ctx context.Context, owner string, in LineInput) (*domain.Cart, error) {
	if owner == "" {
		return nil, errNoOwner
	}
	if in.Quantity > domain.MaxQuantityPerLine {
		return nil, apperrors.Validation(fmt.Sprintf("quantity must not exceed %d", domain.MaxQuantityPerLine))
	}
	cart, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if _, ok := cart.Line(in.key()); !ok {
		return cart, nil
	}

	cart.SetQuantity(in.key(), in.Quantity)
	if err := s.save(ctx, cart, "set_quantity"); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem drops a line. Removing a missing line is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, owner string, in LineInput) (*domain.Cart, error) {
	if owner == "" {
		return nil, errNoOwner
	}
	cart, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if _, ok := cart.Line(in.key()); !ok {
		return cart, nil
	}

	cart.RemoveLine(in.key())
	if err := s.save(ctx, cart, "remove"); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart empties the owner's cart.
func (s *CartService) ClearCart(ctx context.Context, owner string) error {
	if owner == "" {
		return errNoOwner
	}
	if err := s.repo.Delete(ctx, owner); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	cartMutations.WithLabelValues("clear").Inc()

	if err := s.producer.PublishCartCleared(ctx, owner); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("owner", owner),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// MergeGuestCart moves every line of the guest session cart into the user's
// cart with AddLine semantics and deletes the guest cart.
func (s *CartService) MergeGuestCart(ctx context.Context, sessionID, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("sign in to merge carts")
	}
	if sessionID == "" || sessionID == userID {
		return s.load(ctx, userID)
	}

	guest, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if guest.IsEmpty() {
		return cart, nil
	}

	for _, line := range guest.Lines {
		if err := cart.CheckAdd(line); err != nil {
			return nil, fmt.Errorf("merge guest cart: %w", err)
		}
		cart.AddLine(line)
	}
	if err := s.save(ctx, cart, "merge"); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete merged guest cart",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "guest cart merged",
		slog.String("user_id", userID),
		slog.Int("lines", len(guest.Lines)),
	)
	return cart, nil
}

var errNoOwner = apperrors.InvalidInput("cart owner is required: sign in or send X-Session-ID")

func (s *CartService) load(ctx context.Context, owner string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, owner)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCart(owner), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart, op string) error {
	cart.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	cartMutations.WithLabelValues(op).Inc()

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("owner", cart.Owner),
			slog.String("error", err.Error()),
		)
	}
	return nil
}
