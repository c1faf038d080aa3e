package domain

import (
	"slices"
	"sort"
	"strings"
	"time"
)

// Supported content languages. Russian is the fallback.
const (
	LangRU = "ru"
	LangEN = "en"
	LangKG = "kg"

	DefaultLang = LangRU
)

// Languages lists the accepted language codes.
func Languages() []string {
	return []string{LangRU, LangEN, LangKG}
}

// NormalizeLang maps an unknown or empty code to DefaultLang.
func NormalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if slices.Contains(Languages(), lang) {
		return lang
	}
	return DefaultLang
}

// LocalizedText maps a language code to text.
type LocalizedText map[string]string

// In returns the text for lang, falling back to Russian and then to the first
// non-empty translation in key order.
func (t LocalizedText) In(lang string) string {
	if v := strings.TrimSpace(t[lang]); v != "" {
		return v
	}
	if v := strings.TrimSpace(t[DefaultLang]); v != "" {
		return v
	}
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(t[k]); v != "" {
			return v
		}
	}
	return ""
}

// IsEmpty reports whether no language has text.
func (t LocalizedText) IsEmpty() bool {
	return t.In(DefaultLang) == ""
}

// Product is a catalog item. Price is in whole currency units.
type Product struct {
	ID            string        `json:"id"`
	Title         LocalizedText `json:"title"`
	Description   LocalizedText `json:"description"`
	Slug          string        `json:"slug"`
	Price         int64         `json:"price"`
	Discount      float64       `json:"discount"`
	DiscountUntil *time.Time    `json:"discountUntil,omitempty"`
	CategoryID    *string       `json:"categoryId,omitempty"`
	Colors        []string      `json:"colors"`
	Sizes         []string      `json:"sizes"`
	Images        []string      `json:"images"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// EffectivePrice is the price a buyer pays at now.
func (p *Product) EffectivePrice(now time.Time) int64 {
	return ComputeEffectivePrice(p.Price, p.Discount, p.DiscountUntil, now)
}

// DiscountActive reports whether the product's discount applies at now.
func (p *Product) DiscountActive(now time.Time) bool {
	return p.Discount > 0 && IsDiscountActive(p.DiscountUntil, now)
}

// HasColor reports whether color is selectable. A product without a color
// list accepts any value.
func (p *Product) HasColor(color string) bool {
	return len(p.Colors) == 0 || slices.Contains(p.Colors, color)
}

// HasSize reports whether size is selectable. A product without a size list
// accepts any value.
func (p *Product) HasSize(size string) bool {
	return len(p.Sizes) == 0 || slices.Contains(p.Sizes, size)
}

// MainImage returns the first image or "".
func (p *Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Product sort orders.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// ProductSorts lists the accepted sort keys.
func ProductSorts() []string {
	return []string{SortNewest, SortPriceAsc, SortPriceDesc}
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Query      string
	CategoryID *string
	IDs        []string
	Sort       string
	Page       int
	PerPage    int
}
