package domain

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

func line(productID, color, size string, qty int, price int64) CartLine {
	return CartLine{
		ProductID:     productID,
		Title:         "item " + productID,
		UnitPrice:     price,
		Quantity:      qty,
		SelectedColor: color,
		SelectedSize:  size,
	}
}

func assertTotals(t *testing.T, c *Cart) {
	t.Helper()
	var qty int
	var price int64
	for _, l := range c.Lines {
		require.Positive(t, l.Quantity)
		qty += l.Quantity
		price += l.UnitPrice * int64(l.Quantity)
	}
	assert.Equal(t, qty, c.TotalQuantity)
	assert.Equal(t, price, c.TotalPrice)
}

func TestCart_AddLine_MergesSameKey(t *testing.T) {
	c := NewCart("session-1")
	c.AddLine(line("p1", "red", "M", 1, 500))
	c.AddLine(line("p1", "red", "M", 2, 500))

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 3, c.Lines[0].Quantity)
	assert.Equal(t, int64(1500), c.TotalPrice)
	assert.Equal(t, 3, c.TotalQuantity)
}

func TestCart_AddLine_KeepsCapturedPriceOnMerge(t *testing.T) {
	c := NewCart("u")
	c.AddLine(line("p1", "red", "M", 1, 500))
	c.AddLine(line("p1", "red", "M", 1, 400))

	assert.Equal(t, int64(500), c.Lines[0].UnitPrice)
	assert.Equal(t, int64(1000), c.TotalPrice)
}

func TestCart_AddLine_DistinctKeysKeepInsertionOrder(t *testing.T) {
	c := NewCart("u")
	c.AddLine(line("p1", "red", "M", 1, 100))
	c.AddLine(line("p1", "blue", "M", 1, 100))
	c.AddLine(line("p1", "red", "L", 1, 100))
	c.AddLine(line("p2", "red", "M", 1, 100))

	require.Len(t, c.Lines, 4)
	assert.Equal(t, LineKey{"p1", "red", "M"}, c.Lines[0].Key())
	assert.Equal(t, LineKey{"p1", "blue", "M"}, c.Lines[1].Key())
	assert.Equal(t, LineKey{"p1", "red", "L"}, c.Lines[2].Key())
	assert.Equal(t, LineKey{"p2", "red", "M"}, c.Lines[3].Key())
}

func TestCart_SetQuantity(t *testing.T) {
	c := NewCart("u")
	c.AddLine(line("p1", "red", "M", 1, 100))
	c.AddLine(line("p2", "", "", 1, 250))

	c.SetQuantity(LineKey{"p1", "red", "M"}, 5)
	l, ok := c.Line(LineKey{"p1", "red", "M"})
	require.True(t, ok)
	assert.Equal(t, 5, l.Quantity)
	assert.Equal(t, int64(750), c.TotalPrice)

	c.SetQuantity(LineKey{"p1", "red", "M"}, 0)
	_, ok = c.Line(LineKey{"p1", "red", "M"})
	assert.False(t, ok)
	assert.Equal(t, 1, c.TotalQuantity)

	c.SetQuantity(LineKey{"p2", "", ""}, -3)
	assert.True(t, c.IsEmpty())
	assert.Zero(t, c.TotalPrice)
}

func TestCart_SetQuantity_UnknownKeyIsNoop(t *testing.T) {
	c := NewCart("u")
	c.AddLine(line("p1", "red", "M", 2, 100))

	c.SetQuantity(LineKey{"p9", "red", "M"}, 7)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.TotalQuantity)
}

func TestCart_RemoveLine(t *testing.T) {
	c := NewCart("u")
	c.AddLine(line("p1", "red", "M", 2, 100))
	c.AddLine(line("p2", "red", "M", 1, 300))

	c.RemoveLine(LineKey{"p1", "red", "M"})
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "p2", c.Lines[0].ProductID)
	assert.Equal(t, int64(300), c.TotalPrice)

	c.RemoveLine(LineKey{"p1", "red", "M"})
	assert.Len(t, c.Lines, 1)
}

func TestCart_Clear(t *testing.T) {
	c := NewCart("u")
	c.AddLine(line("p1", "red", "M", 2, 100))

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.NotNil(t, c.Lines)
	assert.Zero(t, c.TotalQuantity)
	assert.Zero(t, c.TotalPrice)
}

func TestCart_Recompute_FixesStaleTotals(t *testing.T) {
	c := &Cart{Lines: []CartLine{line("p1", "", "", 2, 100)}, TotalQuantity: 99, TotalPrice: 1}
	c.Recompute()
	assertTotals(t, c)
}

func TestCart_TotalsHoldAfterRandomMutations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	products := []string{"p1", "p2", "p3"}
	colors := []string{"red", "blue"}
	sizes := []string{"S", "M"}

	c := NewCart("u")
	for range 500 {
		key := LineKey{
			ProductID: products[rng.Intn(len(products))],
			Color:     colors[rng.Intn(len(colors))],
			Size:      sizes[rng.Intn(len(sizes))],
		}
		switch rng.Intn(4) {
		case 0, 1:
			c.AddLine(line(key.ProductID, key.Color, key.Size, 1+rng.Intn(3), int64(100*(1+rng.Intn(5)))))
		case 2:
			c.SetQuantity(key, rng.Intn(5)-1)
		case 3:
			c.RemoveLine(key)
		}
		assertTotals(t, c)
	}
}

func TestCart_CheckAdd_Limits(t *testing.T) {
	c := NewCart("u")
	c.AddLine(line("p1", "red", "M", 60, 100))

	assert.NoError(t, c.CheckAdd(line("p1", "red", "M", 40, 100)))
	assert.ErrorIs(t, c.CheckAdd(line("p1", "red", "M", 41, 100)), apperrors.ErrValidation)
	assert.ErrorIs(t, c.CheckAdd(line("p2", "", "", MaxQuantityPerLine+1, 100)), apperrors.ErrValidation)
	assert.ErrorIs(t, c.CheckAdd(line("p2", "", "", 0, 100)), apperrors.ErrValidation)
	assert.ErrorIs(t, c.CheckAdd(line("p1", "red", "M", math.MaxInt, 100)), apperrors.ErrValidation)

	full := NewCart("u")
	for i := 0; i < MaxLinesPerCart; i++ {
		full.AddLine(line(fmt.Sprintf("p%d", i), "", "", 1, 100))
	}
	assert.ErrorIs(t, full.CheckAdd(line("extra", "", "", 1, 100)), apperrors.ErrValidation)
	assert.NoError(t, full.CheckAdd(line("p0", "", "", 1, 100)))
}
