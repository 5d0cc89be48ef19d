package coupon

import (
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/model"
	"github.com/rabi-77/ecommerce-sub000/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Evaluate applies the coupon rules in order and returns the discount for
// subtotal, which must already be net of offers. Rules: active, inside the
// validity window, under the usage cap, not yet used by userID, subtotal at
// least the minimum purchase.
func Evaluate(c *model.Coupon, userID uuid.UUID, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if err := Eligible(c, userID, now); err != nil {
		return decimal.Zero, err
	}
	if !MeetsMinimum(c.MinPurchaseAmount, subtotal) {
		return decimal.Zero, model.ErrCouponMinPurchase
	}
	return Discount(c, subtotal), nil
}

// Eligible checks every rule except the minimum purchase.
func Eligible(c *model.Coupon, userID uuid.UUID, now time.Time) error {
	if c == nil {
		return model.ErrCouponNotFound
	}
	if !c.IsActive {
		return model.ErrCouponInactive
	}
	if now.Before(c.StartDate) {
		return model.ErrCouponNotStarted
	}
	if now.After(c.ExpiryDate) {
		return model.ErrCouponExpired
	}
	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return model.ErrCouponUsageExceeded
	}
	if c.UsedByUser(userID) {
		return model.ErrCouponAlreadyUsed
	}
	return nil
}

// MeetsMinimum reports whether subtotal satisfies a coupon minimum purchase amount.
func MeetsMinimum(minPurchase, subtotal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(minPurchase)
}

// Discount computes the coupon amount for subtotal, rounded to cents.
// Percentage coupons are capped at their max discount, fixed coupons at the subtotal.
func Discount(c *model.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch c.DiscountType {
	case model.DiscountPercentage:
		amount = subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
		if c.MaxDiscountAmount != nil && amount.GreaterThan(*c.MaxDiscountAmount) {
			amount = *c.MaxDiscountAmount
		}
	case model.DiscountFixed:
		amount = decimal.Min(c.DiscountValue, subtotal)
	default:
		return decimal.Zero
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return pricing.Round2(amount)
}
