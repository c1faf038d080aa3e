package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/analytics"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/event"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/repository"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/tracing"
)

// PlaceOrderInput is the checkout form.
type PlaceOrderInput struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,payment_method"`
	Name          string `json:"name" validate:"required"`
	Phone         string `json:"phone" validate:"required,phone"`
	City          string `json:"city" validate:"required"`
	Address       string `json:"address" validate:"required"`
	UserComment   string `json:"userComment" validate:"max=2000"`
}

// StatusInput changes one or both status axes. Payment aliases
// awaiting_payment and canceled are accepted. Values are checked by
// SetStatus so an unknown one yields INVALID_STATUS.
type StatusInput struct {
	DeliveryStatus *string `json:"deliveryStatus"`
	PaymentStatus  *string `json:"paymentStatus"`
}

// CommentInput is a user or admin comment.
type CommentInput struct {
	Text string `json:"text" validate:"max=2000"`
}

// StatusResult is the order after a status change, plus its history entry
// when the change completed it.
type StatusResult struct {
	Order   *domain.Order             `json:"order"`
	History *domain.OrderHistoryEntry `json:"history,omitempty"`
}

// ArchiveResult reports whether archiving created the entry or found it.
type ArchiveResult struct {
	Entry   *domain.OrderHistoryEntry `json:"entry"`
	Created bool                      `json:"created"`
}

// OrderService runs checkout and the post-checkout order lifecycle.
type OrderService struct {
	orders   repository.OrderRepository
	history  repository.HistoryRepository
	carts    repository.CartRepository
	producer *event.Producer
	emitter  analytics.Emitter
	logger   *slog.Logger
	now      func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	history repository.HistoryRepository,
	carts repository.CartRepository,
	producer *event.Producer,
	emitter analytics.Emitter,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		history:  history,
		carts:    carts,
		producer: producer,
		emitter:  emitter,
		logger:   logger,
		now:      time.Now,
	}
}

// PlaceOrder turns the user's cart into an order. The cart is cleared only
// after the order is stored; a failure to clear it is logged and the order
// still stands.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (_ *domain.Order, err error) {
	ctx, span := tracing.Start(ctx, "OrderService.PlaceOrder", attribute.String("user.id", userID))
	defer func() { tracing.End(span, err) }()

	if userID == "" {
		return nil, apperrors.Unauthorized("sign in to place an order")
	}
	method, err := domain.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	contact := domain.Contact{
		Name:    strings.TrimSpace(in.Name),
		Phone:   strings.TrimSpace(in.Phone),
		City:    strings.TrimSpace(in.City),
		Address: strings.TrimSpace(in.Address),
	}
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.EmptyCart()
		}
		return nil, fmt.Errorf("get cart for checkout: %w", err)
	}

	order, err := domain.NewOrderFromCart(uuid.NewString(), userID, cart, method, contact, s.now().UTC())
	if err != nil {
		return nil, err
	}
	order.UserComment = strings.TrimSpace(in.UserComment)

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	ordersCreated.Inc()

	if err := s.carts.Delete(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "order placed but cart not cleared",
			slog.String("order_id", order.ID),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
	for _, item := range order.Items {
		s.emitter.Emit(ctx, analytics.NewEvent(ctx, domain.EventOrderPlaced, item.Product, item.Quantity))
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
		slog.Int64("total_price", order.TotalPrice),
	)
	return order, nil
}

// GetOrder returns an order to its owner or to an admin. Anyone else gets
// NotFound so order ids cannot be probed.
func (s *OrderService) GetOrder(ctx context.Context, id, userID string, isAdmin bool) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !isAdmin && order.UserID != userID {
		return nil, apperrors.NotFound("order", id)
	}
	return order, nil
}

// ListMyOrders returns the user's orders, newest first.
func (s *OrderService) ListMyOrders(ctx context.Context, userID string, page, perPage int) ([]domain.Order, int, error) {
	return s.ListOrders(ctx, repository.OrderFilter{UserID: &userID, Page: page, PerPage: perPage})
}

// ListOrders is the admin listing.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// SetStatus assigns the given axes, last write wins. When the order ends up
// delivered and paid it is archived in the same call.
func (s *OrderService) SetStatus(ctx context.Context, id string, in StatusInput) (_ *StatusResult, err error) {
	ctx, span := tracing.Start(ctx, "OrderService.SetStatus", attribute.String("order.id", id))
	defer func() { tracing.End(span, err) }()

	if in.DeliveryStatus == nil && in.PaymentStatus == nil {
		return nil, apperrors.Validation("deliveryStatus or paymentStatus is required")
	}

	var update repository.StatusUpdate
	if in.DeliveryStatus != nil {
		st, err := domain.ParseDeliveryStatus(*in.DeliveryStatus)
		if err != nil {
			return nil, err
		}
		update.DeliveryStatus = &st
	}
	if in.PaymentStatus != nil {
		st, err := domain.ParsePaymentStatus(*in.PaymentStatus)
		if err != nil {
			return nil, err
		}
		update.PaymentStatus = &st
	}

	before, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order for status update: %w", err)
	}

	order, err := s.orders.UpdateStatus(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if update.DeliveryStatus != nil {
		s.statusChanged(ctx, id, "delivery", string(before.DeliveryStatus), string(*update.DeliveryStatus))
	}
	if update.PaymentStatus != nil {
		if before.PaymentStatus.IsTerminal() && before.PaymentStatus != *update.PaymentStatus {
			s.logger.WarnContext(ctx, "payment status reassigned from terminal value",
				slog.String("order_id", id),
				slog.String("from", string(before.PaymentStatus)),
				slog.String("to", string(*update.PaymentStatus)),
			)
		}
		s.statusChanged(ctx, id, "payment", string(before.PaymentStatus), string(*update.PaymentStatus))
	}

	// The status change is already stored. A failed archive is retried by
	// the next status write or by ArchiveToHistory.
	result := &StatusResult{Order: order}
	if order.IsCompleted() {
		archived, archiveErr := s.archive(ctx, order)
		if archiveErr != nil {
			s.logger.ErrorContext(ctx, "failed to archive completed order",
				slog.String("order_id", id),
				slog.String("error", archiveErr.Error()),
			)
			return result, nil
		}
		result.History = archived.Entry
	}
	return result, nil
}

func (s *OrderService) statusChanged(ctx context.Context, orderID, axis, from, to string) {
	orderStatusChanges.WithLabelValues(axis, to).Inc()

	if err := s.producer.PublishStatusChanged(ctx, orderID, axis, from, to); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}
	s.logger.InfoContext(ctx, "order status changed",
		slog.String("order_id", orderID),
		slog.String("axis", axis),
		slog.String("from", from),
		slog.String("to", to),
	)
}

// SetUserComment overwrites the owner's comment.
func (s *OrderService) SetUserComment(ctx context.Context, id, userID string, in CommentInput) (*domain.Order, error) {
	if _, err := s.GetOrder(ctx, id, userID, false); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(in.Text)
	order, err := s.orders.SetUserComment(ctx, id, text)
	if err != nil {
		return nil, fmt.Errorf("set user comment: %w", err)
	}
	s.publishComment(ctx, id, "user", text)
	return order, nil
}

// AddAdminComment appends a non-empty admin comment.
func (s *OrderService) AddAdminComment(ctx context.Context, id string, in CommentInput) (*domain.Order, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, apperrors.Validation("comment text is required")
	}

	order, err := s.orders.AppendAdminComment(ctx, id, text)
	if err != nil {
		return nil, fmt.Errorf("add admin comment: %w", err)
	}
	s.publishComment(ctx, id, "admin", text)
	return order, nil
}

func (s *OrderService) publishComment(ctx context.Context, orderID, author, text string) {
	if err := s.producer.PublishComment(ctx, orderID, author, text); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.commented event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}
}

// ArchiveToHistory copies a completed order to history. Repeating the call
// returns the existing entry with Created false.
func (s *OrderService) ArchiveToHistory(ctx context.Context, id string) (*ArchiveResult, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order for archive: %w", err)
	}
	return s.archive(ctx, order)
}

func (s *OrderService) archive(ctx context.Context, order *domain.Order) (*ArchiveResult, error) {
	entry, err := domain.NewHistoryEntry(uuid.NewString(), order, s.now().UTC())
	if err != nil {
		return nil, err
	}

	stored, created, err := s.history.Create(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("archive order: %w", err)
	}
	if !created {
		return &ArchiveResult{Entry: stored, Created: false}, nil
	}

	ordersArchived.Inc()
	if err := s.producer.PublishOrderArchived(ctx, stored); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.archived event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
	s.logger.InfoContext(ctx, "order archived",
		slog.String("order_id", order.ID),
		slog.String("history_id", stored.ID),
	)
	return &ArchiveResult{Entry: stored, Created: true}, nil
}

// ListHistory returns the user's archived orders, newest first.
func (s *OrderService) ListHistory(ctx context.Context, userID string, page, perPage int) ([]domain.OrderHistoryEntry, int, error) {
	entries, total, err := s.history.ListByUser(ctx, userID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list order history: %w", err)
	}
	return entries, total, nil
}
