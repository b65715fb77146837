package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	assert.Equal(t, CartSummary{Subtotal: 0, Tax: 0, Total: 0}, got)
}

func TestSummarize_BacksOutTax(t *testing.T) {
	items := []CartItem{
		{ProductID: "1", Price: 50000, Quantity: 2},
		{ProductID: "2", Price: 80000, Quantity: 1},
	}

	got := Summarize(items)

	assert.Equal(t, int64(180000), got.Total)
	assert.Equal(t, int64(151261), got.Subtotal)
	assert.Equal(t, int64(28739), got.Tax)
}

func TestSummarize_PartsAlwaysSumToTotal(t *testing.T) {
	// The tax is defined as the remainder after rounding the subtotal, so
	// the invariant must hold for every total, not just round ones.
	for price := int64(0); price < 500; price++ {
		got := Summarize([]CartItem{{ProductID: "1", Price: price, Quantity: 1}})
		assert.Equal(t, got.Total, got.Subtotal+got.Tax, "price %d", price)
	}
}

func TestSummarize_RoundsHalfUp(t *testing.T) {
	// 119/1.19 = 100 exactly, 120/1.19 = 100.84..., 60/1.19 = 50.42...
	cases := []struct {
		total    int64
		subtotal int64
	}{
		{119, 100},
		{120, 101},
		{60, 50},
		{1, 1},
		{2, 2},
	}
	for _, c := range cases {
		got := Summarize([]CartItem{{ProductID: "1", Price: c.total, Quantity: 1}})
		assert.Equal(t, c.subtotal, got.Subtotal, "total %d", c.total)
	}
}

func TestTotalAndItemCount(t *testing.T) {
	items := []CartItem{
		{ProductID: "1", Price: 1000, Quantity: 3},
		{ProductID: "2", Price: 2500, Quantity: 1},
	}

	assert.Equal(t, int64(5500), Total(items))
	assert.Equal(t, 4, ItemCount(items))
	assert.Equal(t, int64(0), Total(nil))
	assert.Equal(t, 0, ItemCount(nil))
}
