package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Coupon is a cart-level discount code.
type Coupon struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	Code              string           `json:"code" db:"code"`
	Description       string           `json:"description,omitempty" db:"description"`
	DiscountType      DiscountKind     `json:"discountType" db:"discount_type"`
	DiscountValue     decimal.Decimal  `json:"discountValue" db:"discount_value"`
	MinPurchaseAmount decimal.Decimal  `json:"minPurchaseAmount" db:"min_purchase_amount"`
	MaxDiscountAmount *decimal.Decimal `json:"maxDiscountAmount,omitempty" db:"max_discount_amount"`
	StartDate         time.Time        `json:"startDate" db:"start_date"`
	ExpiryDate        time.Time        `json:"expiryDate" db:"expiry_date"`
	MaxUses           *int             `json:"maxUses,omitempty" db:"max_uses"`
	UsedCount         int              `json:"usedCount" db:"used_count"`
	UsedBy            []uuid.UUID      `json:"-"`
	IsActive          bool             `json:"isActive" db:"is_active"`
}

// NormalizeCode upper-cases and trims a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// UsedByUser reports whether the user has already redeemed this coupon.
func (c *Coupon) UsedByUser(userID uuid.UUID) bool {
	for _, id := range c.UsedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants of a coupon definition.
func (c *Coupon) Validate() error {
	if c.Code == "" || c.Code != NormalizeCode(c.Code) {
		return fmt.Errorf("coupon code %q must be non-empty and uppercase", c.Code)
	}
	if !c.DiscountType.Valid() {
		return fmt.Errorf("coupon %s: invalid discount type %q", c.Code, c.DiscountType)
	}
	if !c.DiscountValue.IsPositive() {
		return fmt.Errorf("coupon %s: discount value must be positive", c.Code)
	}
	if c.DiscountType == DiscountPercentage {
		if c.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("coupon %s: percentage cannot exceed 100", c.Code)
		}
		if c.MaxDiscountAmount == nil || !c.MaxDiscountAmount.IsPositive() {
			return fmt.Errorf("coupon %s: percentage coupons require a max discount amount", c.Code)
		}
	}
	if c.MinPurchaseAmount.IsNegative() {
		return fmt.Errorf("coupon %s: min purchase amount cannot be negative", c.Code)
	}
	if !c.ExpiryDate.After(c.StartDate) {
		return fmt.Errorf("coupon %s: expiry date must be after start date", c.Code)
	}
	if c.MaxUses != nil && *c.MaxUses < 0 {
		return fmt.Errorf("coupon %s: max uses cannot be negative", c.Code)
	}
	return nil
}
