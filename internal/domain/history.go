package domain

import (
	"slices"
	"time"

	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

// OrderHistoryEntry is the archived copy of a completed order. There is at
// most one per OrderID.
type OrderHistoryEntry struct {
	ID            string        `json:"_id"`
	OrderID       string        `json:"orderId"`
	UserID        string        `json:"user"`
	CompletedAt   time.Time     `json:"completedAt"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Items         []OrderItem   `json:"items"`
	TotalPrice    int64         `json:"totalPrice"`
}

// NewHistoryEntry archives o. Orders that are not both delivered and paid
// are rejected with InvalidStatus.
func NewHistoryEntry(id string, o *Order, now time.Time) (*OrderHistoryEntry, error) {
	if !o.IsCompleted() {
		return nil, apperrors.InvalidStatus("order state",
			string(o.DeliveryStatus)+"/"+string(o.PaymentStatus),
			[]string{string(DeliveryDelivered) + "/" + string(PaymentPaid)})
	}
	return &OrderHistoryEntry{
		ID:            id,
		OrderID:       o.ID,
		UserID:        o.UserID,
		CompletedAt:   now,
		PaymentMethod: o.PaymentMethod,
		Items:         slices.Clone(o.Items),
		TotalPrice:    o.TotalPrice,
	}, nil
}
