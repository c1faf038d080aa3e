package domain

import (
	"fmt"
	"time"

	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

// Cart size limits.
const (
	// MaxQuantityPerLine caps the quantity of a single line, merged or set.
	MaxQuantityPerLine = 100
	// MaxLinesPerCart caps the number of distinct lines.
	MaxLinesPerCart = 50
)

// LineKey identifies a cart line. Two additions with the same key merge.
type LineKey struct {
	ProductID string `json:"productId"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

// CartLine is one (product, color, size) selection. UnitPrice is the
// effective price captured when the line was first added.
type CartLine struct {
	ProductID     string `json:"productId"`
	Title         string `json:"title"`
	UnitPrice     int64  `json:"unitPrice"`
	Quantity      int    `json:"quantity"`
	SelectedColor string `json:"selectedColor"`
	SelectedSize  string `json:"selectedSize"`
	Image         string `json:"image,omitempty"`
}

// Key returns the identity of the line.
func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Color: l.SelectedColor, Size: l.SelectedSize}
}

// Subtotal is UnitPrice × Quantity.
func (l CartLine) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Cart belongs to a single owner: a user id or a guest session id. Totals
// are derived from Lines after every mutation.
type Cart struct {
	Owner         string     `json:"owner"`
	Lines         []CartLine `json:"lines"`
	TotalQuantity int        `json:"totalQuantity"`
	TotalPrice    int64      `json:"totalPrice"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// NewCart returns an empty cart for owner.
func NewCart(owner string) *Cart {
	return &Cart{Owner: owner, Lines: []CartLine{}}
}

func (c *Cart) indexOf(key LineKey) int {
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			return i
		}
	}
	return -1
}

// Line returns the line stored under key.
func (c *Cart) Line(key LineKey) (CartLine, bool) {
	if i := c.indexOf(key); i >= 0 {
		return c.Lines[i], true
	}
	return CartLine{}, false
}

// CheckAdd reports whether AddLine(line) would stay within the cart limits.
func (c *Cart) CheckAdd(line CartLine) error {
	if line.Quantity <= 0 {
		return apperrors.Validation("quantity must be greater than 0")
	}
	if i := c.indexOf(line.Key()); i >= 0 {
		if line.Quantity > MaxQuantityPerLine-c.Lines[i].Quantity {
			return apperrors.Validation(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerLine))
		}
		return nil
	}
	if line.Quantity > MaxQuantityPerLine {
		return apperrors.Validation(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}
	if len(c.Lines) >= MaxLinesPerCart {
		return apperrors.Validation(fmt.Sprintf("cart must not contain more than %d lines", MaxLinesPerCart))
	}
	return nil
}

// AddLine merges line into the cart. An existing line with the same key has
// its quantity increased and keeps its captured price; otherwise line is
// appended. Callers check the line with CheckAdd first.
func (c *Cart) AddLine(line CartLine) {
	if i := c.indexOf(line.Key()); i >= 0 {
		c.Lines[i].Quantity += line.Quantity
	} else {
		c.Lines = append(c.Lines, line)
	}
	c.recompute()
}

// SetQuantity overwrites the quantity of the line under key. A quantity of
// zero or less removes the line. Unknown keys are ignored.
func (c *Cart) SetQuantity(key LineKey, quantity int) {
	i := c.indexOf(key)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		c.removeAt(i)
	} else {
		c.Lines[i].Quantity = quantity
	}
	c.recompute()
}

// RemoveLine drops the line under key if there is one.
func (c *Cart) RemoveLine(key LineKey) {
	if i := c.indexOf(key); i >= 0 {
		c.removeAt(i)
	}
	c.recompute()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = []CartLine{}
	c.recompute()
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) removeAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}

// Recompute rebuilds the totals from the lines. Carts loaded from storage
// call it so stale totals are never trusted.
func (c *Cart) Recompute() {
	c.recompute()
}

func (c *Cart) recompute() {
	if c.Lines == nil {
		c.Lines = []CartLine{}
	}
	c.TotalQuantity = 0
	c.TotalPrice = 0
	for _, l := range c.Lines {
		c.TotalQuantity += l.Quantity
		c.TotalPrice += l.Subtotal()
	}
}
