package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// IsDiscountActive reports whether a discount window is still open. The
// expiry instant itself is already outside the window.
func IsDiscountActive(until *time.Time, now time.Time) bool {
	return until != nil && now.Before(*until)
}

// ComputeEffectivePrice applies discount (percent) to price while the window
// is open and rounds to the nearest whole unit. Outside the window, or with a
// non-positive discount, price is returned unchanged.
func ComputeEffectivePrice(price int64, discount float64, until *time.Time, now time.Time) int64 {
	if discount <= 0 || !IsDiscountActive(until, now) {
		return price
	}
	discount = ClampDiscount(discount)

	factor := hundred.Sub(decimal.NewFromFloat(discount)).Div(hundred)
	return decimal.NewFromInt(price).Mul(factor).Round(0).IntPart()
}

// ClampDiscount forces a percentage into [0,100].
func ClampDiscount(discount float64) float64 {
	switch {
	case discount < 0:
		return 0
	case discount > 100:
		return 100
	default:
		return discount
	}
}

// ValidDiscount reports whether discount is a usable percentage.
func ValidDiscount(discount float64) bool {
	return discount >= 0 && discount <= 100
}
