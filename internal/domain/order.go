package domain

import (
	"strings"
	"time"

	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

// DeliveryStatus tracks fulfilment. Any value may follow any other.
type DeliveryStatus string

const (
	DeliveryWarehouse DeliveryStatus = "warehouse"
	DeliveryOnTheWay  DeliveryStatus = "on_the_way"
	DeliveryDelivered DeliveryStatus = "delivered"
)

// DeliveryStatuses lists the accepted delivery values.
func DeliveryStatuses() []string {
	return []string{string(DeliveryWarehouse), string(DeliveryOnTheWay), string(DeliveryDelivered)}
}

// ParseDeliveryStatus validates s against the delivery enum.
func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	switch st := DeliveryStatus(strings.TrimSpace(s)); st {
	case DeliveryWarehouse, DeliveryOnTheWay, DeliveryDelivered:
		return st, nil
	default:
		return "", apperrors.InvalidStatus("delivery status", s, DeliveryStatuses())
	}
}

// PaymentStatus tracks settlement. Paid and cancelled are terminal in
// intent but re-assignment from them is allowed for corrections.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Admin panel spellings accepted on input.
const (
	paymentAwaitingAlias = "awaiting_payment"
	paymentCanceledAlias = "canceled"
)

// PaymentStatuses lists the canonical payment values.
func PaymentStatuses() []string {
	return []string{string(PaymentPending), string(PaymentPaid), string(PaymentCancelled)}
}

// ParsePaymentStatus validates s and folds the admin aliases
// awaiting_payment and canceled into pending and cancelled.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch v := strings.TrimSpace(s); v {
	case string(PaymentPending), paymentAwaitingAlias:
		return PaymentPending, nil
	case string(PaymentPaid):
		return PaymentPaid, nil
	case string(PaymentCancelled), paymentCanceledAlias:
		return PaymentCancelled, nil
	default:
		allowed := append(PaymentStatuses(), paymentAwaitingAlias, paymentCanceledAlias)
		return "", apperrors.InvalidStatus("payment status", s, allowed)
	}
}

// IsTerminal reports whether no further payment transition is expected.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentPaid || s == PaymentCancelled
}

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentQRCode PaymentMethod = "qrCode"
)

// PaymentMethods lists the accepted methods.
func PaymentMethods() []string {
	return []string{string(PaymentCash), string(PaymentQRCode)}
}

// ParsePaymentMethod validates s against the method enum.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentCash, PaymentQRCode:
		return m, nil
	default:
		return "", apperrors.Validation("paymentMethod must be one of: " + strings.Join(PaymentMethods(), ", "))
	}
}

// OrderItem is the frozen copy of a cart line.
type OrderItem struct {
	Product       string `json:"product"`
	Title         string `json:"title"`
	Image         string `json:"image"`
	SelectedColor string `json:"selectedColor"`
	SelectedSize  string `json:"selectedSize"`
	Price         int64  `json:"price"`
	Quantity      int    `json:"quantity"`
}

// Contact holds the delivery details collected at checkout.
type Contact struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	Address string `json:"address"`
}

// Validate requires every contact field.
func (c Contact) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", c.Name}, {"phone", c.Phone}, {"city", c.City}, {"address", c.Address},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperrors.Validation("missing checkout fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// Order is a placed order. Items never change after creation. Delivery and
// payment status move independently of each other.
type Order struct {
	ID             string         `json:"_id"`
	UserID         string         `json:"user"`
	Items          []OrderItem    `json:"items"`
	TotalPrice     int64          `json:"totalPrice"`
	PaymentMethod  PaymentMethod  `json:"paymentMethod"`
	DeliveryStatus DeliveryStatus `json:"deliveryStatus"`
	PaymentStatus  PaymentStatus  `json:"paymentStatus"`
	UserComment    string         `json:"userComment"`
	AdminComments  []string       `json:"adminComments"`
	Contact
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewOrderFromCart snapshots cart into a new pending order sitting in the
// warehouse. It fails with EmptyCart when the cart has no lines. The cart
// itself is left untouched.
func NewOrderFromCart(id, userID string, cart *Cart, method PaymentMethod, contact Contact, now time.Time) (*Order, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, apperrors.EmptyCart()
	}

	items := make([]OrderItem, len(cart.Lines))
	var total int64
	for i, l := range cart.Lines {
		items[i] = OrderItem{
			Product:       l.ProductID,
			Title:         l.Title,
			Image:         l.Image,
			SelectedColor: l.SelectedColor,
			SelectedSize:  l.SelectedSize,
			Price:         l.UnitPrice,
			Quantity:      l.Quantity,
		}
		total += l.Subtotal()
	}

	return &Order{
		ID:             id,
		UserID:         userID,
		Items:          items,
		TotalPrice:     total,
		PaymentMethod:  method,
		DeliveryStatus: DeliveryWarehouse,
		PaymentStatus:  PaymentPending,
		AdminComments:  []string{},
		Contact:        contact,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// SetDeliveryStatus assigns s. No ordering is enforced.
func (o *Order) SetDeliveryStatus(s DeliveryStatus, now time.Time) {
	o.DeliveryStatus = s
	o.UpdatedAt = now
}

// SetPaymentStatus assigns s, including from a terminal status.
func (o *Order) SetPaymentStatus(s PaymentStatus, now time.Time) {
	o.PaymentStatus = s
	o.UpdatedAt = now
}

// SetUserComment replaces the customer's comment.
func (o *Order) SetUserComment(text string, now time.Time) {
	o.UserComment = text
	o.UpdatedAt = now
}

// AddAdminComment appends to the admin comment list.
func (o *Order) AddAdminComment(text string, now time.Time) {
	o.AdminComments = append(o.AdminComments, text)
	o.UpdatedAt = now
}

// IsCompleted is true once the order is both delivered and paid.
func (o *Order) IsCompleted() bool {
	return o.DeliveryStatus == DeliveryDelivered && o.PaymentStatus == PaymentPaid
}
