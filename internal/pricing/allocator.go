package pricing

import (
	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// SubtotalAfterOffer is the sum of per-unit offer prices times quantity over active items.
func SubtotalAfterOffer(items []model.OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for i := range items {
		if items[i].Active() {
			sum = sum.Add(items[i].LineAfterOffer())
		}
	}
	return sum
}

// Reprice allocates couponDiscount and tax across the active items and
// returns the resulting aggregates. Coupon shares are pro-rata by original
// line value, never more than a line's value after offers, and tax is
// computed once on the order and split by taxable line value, so both sum
// exactly to the order figures. couponDiscount is capped at the subtotal
// after offers. Inactive items keep their stored shares.
func (p Policy) Reprice(items []model.OrderItem, couponDiscount decimal.Decimal) model.Aggregates {
	active := make([]int, 0, len(items))
	for i := range items {
		if items[i].Active() {
			active = append(active, i)
		}
	}
	if len(active) == 0 {
		return Settle(items, decimal.Zero)
	}

	subtotal := SubtotalAfterOffer(items)
	coupon := Round2(couponDiscount)
	if coupon.IsNegative() {
		coupon = decimal.Zero
	}
	if coupon.GreaterThan(subtotal) {
		coupon = subtotal
	}

	originals := make([]decimal.Decimal, len(active))
	caps := make([]decimal.Decimal, len(active))
	for k, i := range active {
		originals[k] = items[i].LineOriginal()
		caps[k] = items[i].LineAfterOffer()
	}
	couponShares := allocateCapped(coupon, originals, caps)

	taxable := make([]decimal.Decimal, len(active))
	taxableSum := decimal.Zero
	for k, i := range active {
		taxable[k] = items[i].LineAfterOffer().Sub(couponShares[k])
		taxableSum = taxableSum.Add(taxable[k])
	}
	taxShares := allocate(Round2(taxableSum.Mul(p.TaxRate)), taxable)

	for k, i := range active {
		qty := decimal.NewFromInt(int64(items[i].Quantity))
		items[i].CouponShare = couponShares[k]
		items[i].TaxShare = taxShares[k]
		items[i].FinalUnitPrice = Round2(taxable[k].Div(qty))
	}

	return Settle(items, p.Shipping(subtotal))
}

// Settle folds the stored per-line shares of the active items into order
// aggregates with the given shipping charge. It never reallocates, so
// removing an item from an order changes the total by exactly that line's
// taxable value plus its tax share.
func Settle(items []model.OrderItem, shipping decimal.Decimal) model.Aggregates {
	agg := model.Aggregates{
		ItemsPrice:     decimal.Zero,
		OfferDiscount:  decimal.Zero,
		CouponDiscount: decimal.Zero,
		TaxPrice:       decimal.Zero,
		ShippingPrice:  shipping,
	}
	for i := range items {
		if !items[i].Active() {
			continue
		}
		qty := decimal.NewFromInt(int64(items[i].Quantity))
		agg.ItemsPrice = agg.ItemsPrice.Add(items[i].LineOriginal())
		agg.OfferDiscount = agg.OfferDiscount.Add(items[i].OfferDiscount.Mul(qty))
		agg.CouponDiscount = agg.CouponDiscount.Add(items[i].CouponShare)
		agg.TaxPrice = agg.TaxPrice.Add(items[i].TaxShare)
	}
	agg.DiscountAmount = agg.OfferDiscount.Add(agg.CouponDiscount)
	agg.TotalPrice = agg.ItemsPrice.Sub(agg.DiscountAmount).Add(agg.TaxPrice).Add(agg.ShippingPrice)
	return agg
}

// RefundBase is what removing one active line from a settled order gives back.
func RefundBase(item *model.OrderItem) decimal.Decimal {
	return item.LineAfterOffer().Sub(item.CouponShare).Add(item.TaxShare)
}
