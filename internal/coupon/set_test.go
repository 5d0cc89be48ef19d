package coupon

import (
	"testing"

	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapSet_AddAndGet(t *testing.T) {
	set := NewMapSet(4).(*mapSet)

	set.Add(model.Coupon{Code: " summer20 "})
	set.Add(model.Coupon{Code: "WINTER10"})

	assert.Equal(t, 2, set.Size())

	c, ok := set.Get("SUMMER20")
	require.True(t, ok)
	assert.Equal(t, "SUMMER20", c.Code)

	_, ok = set.Get("summer20")
	assert.True(t, ok, "lookups are case-insensitive")

	_, ok = set.Get("AUTUMN")
	assert.False(t, ok)
}

func TestMapSet_AllIsSortedByCode(t *testing.T) {
	set := setWith("ZETA", "ALPHA", "MIDDLE")

	all := set.All()

	require.Len(t, all, 3)
	assert.Equal(t, "ALPHA", all[0].Code)
	assert.Equal(t, "MIDDLE", all[1].Code)
	assert.Equal(t, "ZETA", all[2].Code)
}

func TestMapSet_Empty(t *testing.T) {
	set := NewMapSet(0)

	assert.Equal(t, 0, set.Size())
	assert.Empty(t, set.All())
}

func TestMerge_LaterSetWins(t *testing.T) {
	first := NewMapSet(2).(*mapSet)
	first.Add(model.Coupon{Code: "SHARED", DiscountValue: decimal.NewFromInt(10)})
	first.Add(model.Coupon{Code: "ONLYFIRST"})

	second := NewMapSet(2).(*mapSet)
	second.Add(model.Coupon{Code: "SHARED", DiscountValue: decimal.NewFromInt(20)})
	second.Add(model.Coupon{Code: "ONLYSECOND"})

	merged := Merge(first, second)

	assert.Equal(t, 3, merged.Size())
	c, ok := merged.Get("SHARED")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(20).Equal(c.DiscountValue))
}
