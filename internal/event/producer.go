package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	pkgkafka "github.com/Emirlan007/Cassini-shop-sub000/pkg/kafka"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/logger"
)

// Kafka topics for storefront domain events.
var (
	TopicOrderCreated       = pkgkafka.Topic("order", "created")
	TopicOrderStatusChanged = pkgkafka.Topic("order", "status_changed")
	TopicOrderArchived      = pkgkafka.Topic("order", "archived")
	TopicOrderCommented     = pkgkafka.Topic("order", "commented")
	TopicCartUpdated        = pkgkafka.Topic("cart", "updated")
	TopicCartCleared        = pkgkafka.Topic("cart", "cleared")
)

// Aggregate types.
const (
	AggregateOrder = "order"
	AggregateCart  = "cart"
)

// Publisher is the transport the producer writes to. *pkgkafka.Producer
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// OrderCreatedData is the full order snapshot.
type OrderCreatedData struct {
	OrderID       string             `json:"orderId"`
	UserID        string             `json:"userId"`
	Items         []domain.OrderItem `json:"items"`
	TotalPrice    int64              `json:"totalPrice"`
	PaymentMethod string             `json:"paymentMethod"`
	City          string             `json:"city"`
}

// StatusChangedData describes a change on one status axis.
type StatusChangedData struct {
	OrderID   string `json:"orderId"`
	Axis      string `json:"axis"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
}

// OrderArchivedData is published once per order.
type OrderArchivedData struct {
	OrderID    string `json:"orderId"`
	HistoryID  string `json:"historyId"`
	UserID     string `json:"userId"`
	TotalPrice int64  `json:"totalPrice"`
}

// CommentData carries a user or admin comment.
type CommentData struct {
	OrderID string `json:"orderId"`
	Author  string `json:"author"`
	Text    string `json:"text"`
}

// CartUpdatedData summarizes a cart after a mutation.
type CartUpdatedData struct {
	Owner         string `json:"owner"`
	Lines         int    `json:"lines"`
	TotalQuantity int    `json:"totalQuantity"`
	TotalPrice    int64  `json:"totalPrice"`
}

// CartClearedData names the emptied cart.
type CartClearedData struct {
	Owner string `json:"owner"`
}

// Producer publishes storefront domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

func (p *Producer) PublishOrderCreated(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, TopicOrderCreated, AggregateOrder, o.ID, OrderCreatedData{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Items:         o.Items,
		TotalPrice:    o.TotalPrice,
		PaymentMethod: string(o.PaymentMethod),
		City:          o.City,
	})
}

func (p *Producer) PublishStatusChanged(ctx context.Context, orderID, axis, oldStatus, newStatus string) error {
	return p.publish(ctx, TopicOrderStatusChanged, AggregateOrder, orderID, StatusChangedData{
		OrderID:   orderID,
		Axis:      axis,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})
}

func (p *Producer) PublishOrderArchived(ctx context.Context, e *domain.OrderHistoryEntry) error {
	return p.publish(ctx, TopicOrderArchived, AggregateOrder, e.OrderID, OrderArchivedData{
		OrderID:    e.OrderID,
		HistoryID:  e.ID,
		UserID:     e.UserID,
		TotalPrice: e.TotalPrice,
	})
}

// PublishComment reports a comment. author is "user" or "admin".
func (p *Producer) PublishComment(ctx context.Context, orderID, author, text string) error {
	return p.publish(ctx, TopicOrderCommented, AggregateOrder, orderID, CommentData{
		OrderID: orderID,
		Author:  author,
		Text:    text,
	})
}

func (p *Producer) PublishCartUpdated(ctx context.Context, c *domain.Cart) error {
	return p.publish(ctx, TopicCartUpdated, AggregateCart, c.Owner, CartUpdatedData{
		Owner:         c.Owner,
		Lines:         len(c.Lines),
		TotalQuantity: c.TotalQuantity,
		TotalPrice:    c.TotalPrice,
	})
}

func (p *Producer) PublishCartCleared(ctx context.Context, owner string) error {
	return p.publish(ctx, TopicCartCleared, AggregateCart, owner, CartClearedData{Owner: owner})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateType, aggregateID string, data any) error {
	evt, err := pkgkafka.NewEvent(topic, aggregateType, aggregateID, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}
	if sid := logger.SessionIDFromContext(ctx); sid != "" {
		evt.WithMetadata("session_id", sid)
	}

	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
