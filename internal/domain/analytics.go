package domain

import "time"

// Analytics event types.
const (
	EventProductView = "product_view"
	EventCartAdd     = "cart_add"
	EventOrderPlaced = "order_placed"
)

// AnalyticsEventTypes lists the accepted event types.
func AnalyticsEventTypes() []string {
	return []string{EventProductView, EventCartAdd, EventOrderPlaced}
}

// AnalyticsEvent is a storefront interaction reported to the collector.
type AnalyticsEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	SessionID  string    `json:"sessionId"`
	UserID     string    `json:"userId,omitempty"`
	ProductID  string    `json:"productId"`
	Qty        int       `json:"qty,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// ProductStat is an aggregated event count for one product.
type ProductStat struct {
	ProductID string `json:"productId"`
	Count     int64  `json:"count"`
}
