package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalizedText_In(t *testing.T) {
	text := LocalizedText{"ru": "Платье", "en": "Dress"}
	assert.Equal(t, "Dress", text.In("en"))
	assert.Equal(t, "Платье", text.In("kg"))
	assert.Equal(t, "Көйнөк", LocalizedText{"kg": "Көйнөк"}.In("en"))
	assert.Equal(t, "Dress", LocalizedText{"en": "Dress", "kg": " "}.In("ru"))
	assert.Equal(t, "", LocalizedText{}.In("ru"))
	assert.True(t, LocalizedText{"en": "  "}.IsEmpty())
}

func TestNormalizeLang(t *testing.T) {
	assert.Equal(t, "en", NormalizeLang("EN"))
	assert.Equal(t, "ru", NormalizeLang("de"))
	assert.Equal(t, "ru", NormalizeLang(""))
}

func TestProduct_EffectivePrice(t *testing.T) {
	now := time.Now()
	until := now.Add(time.Hour)
	p := &Product{Price: 1000, Discount: 20, DiscountUntil: &until}

	assert.Equal(t, int64(800), p.EffectivePrice(now))
	assert.True(t, p.DiscountActive(now))
	assert.Equal(t, int64(1000), p.EffectivePrice(until))
	assert.False(t, p.DiscountActive(until))
}

func TestProduct_Options(t *testing.T) {
	p := &Product{Colors: []string{"red"}, Sizes: nil, Images: []string{"a.jpg", "b.jpg"}}
	assert.True(t, p.HasColor("red"))
	assert.False(t, p.HasColor("blue"))
	assert.True(t, p.HasSize("XXL"))
	assert.Equal(t, "a.jpg", p.MainImage())
	assert.Equal(t, "", (&Product{}).MainImage())
}

func TestBanner_VisibleAt(t *testing.T) {
	now := time.Now()
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)

	assert.True(t, (&Banner{IsActive: true}).VisibleAt(now))
	assert.False(t, (&Banner{IsActive: false}).VisibleAt(now))
	assert.True(t, (&Banner{IsActive: true, StartsAt: &start, EndsAt: &end}).VisibleAt(now))
	assert.False(t, (&Banner{IsActive: true, StartsAt: &end}).VisibleAt(now))
	assert.False(t, (&Banner{IsActive: true, EndsAt: &now}).VisibleAt(now))
}
