package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferTarget identifies what an offer applies to.
type OfferTarget string

const (
	OfferTargetProduct  OfferTarget = "PRODUCT"
	OfferTargetCategory OfferTarget = "CATEGORY"
)

// DiscountKind tags how a discount value is interpreted.
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// Valid reports whether k is a known discount kind.
func (k DiscountKind) Valid() bool {
	return k == DiscountPercentage || k == DiscountFixed
}

// Discount is either a percentage of a price or a fixed amount off it.
type Discount struct {
	Kind  DiscountKind    `json:"kind" db:"discount_kind"`
	Value decimal.Decimal `json:"value" db:"discount_value"`
}

// Saving returns the absolute amount this discount takes off price, never more than price.
func (d Discount) Saving(price decimal.Decimal) decimal.Decimal {
	var saving decimal.Decimal
	switch d.Kind {
	case DiscountPercentage:
		saving = price.Mul(d.Value).Div(decimal.NewFromInt(100))
	case DiscountFixed:
		saving = d.Value
	default:
		return decimal.Zero
	}
	if saving.IsNegative() {
		return decimal.Zero
	}
	if saving.GreaterThan(price) {
		return price
	}
	return saving
}

// Offer is an administrator-defined promotion on one product or one category.
type Offer struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	Name       string      `json:"name" db:"name"`
	TargetType OfferTarget `json:"targetType" db:"target_type"`
	TargetID   uuid.UUID   `json:"targetId" db:"target_id"`
	Discount   Discount    `json:"discount"`
	StartDate  time.Time   `json:"startDate" db:"start_date"`
	EndDate    *time.Time  `json:"endDate,omitempty" db:"end_date"`
	IsActive   bool        `json:"isActive" db:"is_active"`
}

// ActiveAt reports whether the offer applies at t. A nil end date is open-ended.
func (o *Offer) ActiveAt(t time.Time) bool {
	if !o.IsActive || t.Before(o.StartDate) {
		return false
	}
	return o.EndDate == nil || !t.After(*o.EndDate)
}
