package domain

import "time"

// Banner positions on the storefront.
const (
	BannerPositionHero     = "hero"
	BannerPositionMiddle   = "middle"
	BannerPositionCategory = "category"
)

// BannerPositions lists the accepted positions.
func BannerPositions() []string {
	return []string{BannerPositionHero, BannerPositionMiddle, BannerPositionCategory}
}

// Banner is a promotional image shown during an optional time window.
type Banner struct {
	ID        string        `json:"id"`
	Title     LocalizedText `json:"title"`
	ImageURL  string        `json:"imageUrl"`
	LinkURL   string        `json:"linkUrl"`
	Position  string        `json:"position"`
	SortOrder int           `json:"sortOrder"`
	IsActive  bool          `json:"isActive"`
	StartsAt  *time.Time    `json:"startsAt,omitempty"`
	EndsAt    *time.Time    `json:"endsAt,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// VisibleAt reports whether the banner is active and now falls inside
// [StartsAt, EndsAt).
func (b *Banner) VisibleAt(now time.Time) bool {
	if !b.IsActive {
		return false
	}
	if b.StartsAt != nil && now.Before(*b.StartsAt) {
		return false
	}
	if b.EndsAt != nil && !now.Before(*b.EndsAt) {
		return false
	}
	return true
}
