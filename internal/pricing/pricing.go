// Package pricing turns catalogue prices, offers and coupon amounts into
// per-line shares and order aggregates. Everything here is pure.
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Policy holds the store-wide pricing constants.
type Policy struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	CODLimit              decimal.Decimal
}

// DefaultPolicy returns the default store pricing constants.
func DefaultPolicy() Policy {
	return Policy{
		TaxRate:               decimal.RequireFromString("0.18"),
		FreeShippingThreshold: decimal.NewFromInt(500),
		ShippingFee:           decimal.NewFromInt(50),
		CODLimit:              decimal.NewFromInt(1000),
	}
}

// Shipping returns the shipping charge for a subtotal after offers.
func (p Policy) Shipping(subtotalAfterOffer decimal.Decimal) decimal.Decimal {
	if subtotalAfterOffer.GreaterThanOrEqual(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.ShippingFee
}

// CODAllowed reports whether cash on delivery may be used for this subtotal after offers.
func (p Policy) CODAllowed(subtotalAfterOffer decimal.Decimal) bool {
	return !subtotalAfterOffer.GreaterThan(p.CODLimit)
}

// allocate splits total across weights in whole cents using the largest
// remainder method. The returned shares always sum to round2(total).
func allocate(total decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(weights))
	for i := range shares {
		shares[i] = decimal.Zero
	}

	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}
	cents := Round2(total).Shift(2)
	if !sum.IsPositive() || !cents.IsPositive() {
		return shares
	}

	type remainder struct {
		index int
		frac  decimal.Decimal
	}
	rems := make([]remainder, len(weights))
	assigned := decimal.Zero
	for i, w := range weights {
		exact := cents.Mul(w).Div(sum)
		floor := exact.Floor()
		shares[i] = floor
		assigned = assigned.Add(floor)
		rems[i] = remainder{index: i, frac: exact.Sub(floor)}
	}

	sort.SliceStable(rems, func(a, b int) bool {
		return rems[a].frac.GreaterThan(rems[b].frac)
	})

	leftover := cents.Sub(assigned).IntPart()
	for k := 0; k < int(leftover) && k < len(rems); k++ {
		shares[rems[k].index] = shares[rems[k].index].Add(decimal.NewFromInt(1))
	}

	for i := range shares {
		shares[i] = shares[i].Shift(-2)
	}
	return shares
}

// allocateCapped splits total across weights like allocate, but no share
// exceeds its cap. Whatever a capped line cannot take is split again over
// the lines that still have room. total must not exceed the sum of caps.
func allocateCapped(total decimal.Decimal, weights, caps []decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(weights))
	open := make([]bool, len(weights))
	for i := range shares {
		shares[i] = decimal.Zero
		open[i] = caps[i].IsPositive()
	}

	remaining := Round2(total)
	for remaining.IsPositive() {
		w := make([]decimal.Decimal, len(weights))
		room := make([]decimal.Decimal, len(weights))
		weightSum := decimal.Zero
		roomSum := decimal.Zero
		for i := range weights {
			w[i] = decimal.Zero
			room[i] = decimal.Zero
			if !open[i] {
				continue
			}
			w[i] = weights[i]
			room[i] = caps[i].Sub(shares[i])
			weightSum = weightSum.Add(w[i])
			roomSum = roomSum.Add(room[i])
		}
		if !roomSum.IsPositive() {
			break
		}
		if !weightSum.IsPositive() {
			w = room
		}

		part := allocate(remaining, w)
		overflow := decimal.Zero
		for i := range part {
			if !open[i] {
				continue
			}
			if part[i].GreaterThanOrEqual(room[i]) {
				overflow = overflow.Add(part[i].Sub(room[i]))
				shares[i] = caps[i]
				open[i] = false
				continue
			}
			shares[i] = shares[i].Add(part[i])
		}
		remaining = overflow
	}
	return shares
}
