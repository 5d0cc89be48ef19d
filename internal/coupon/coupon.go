package coupon

import (
	"context"

	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validator checks a coupon against a cart and records its use.
type Validator interface {
	// Validate checks that the coupon can be applied by userID to a cart whose
	// subtotal after offers is subtotal, and computes the discount.
	// It returns one of the coupon domain errors when a rule fails.
	Validate(ctx context.Context, code string, userID uuid.UUID, subtotal decimal.Decimal) (*Redemption, error)

	// Redeem increments the usage count and records the user as having used the coupon.
	Redeem(ctx context.Context, couponID, userID, orderID uuid.UUID) error
}

// Redemption is a validated coupon together with the discount it grants.
type Redemption struct {
	Coupon   *model.Coupon
	Discount decimal.Decimal
}

// Store is the persistence the coupon package needs.
type Store interface {
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	Upsert(ctx context.Context, c *model.Coupon) error
	Redeem(ctx context.Context, couponID, userID, orderID uuid.UUID) error
}

// Set is a collection of coupon definitions keyed by code.
type Set interface {
	// Get returns the coupon with the given code.
	Get(code string) (model.Coupon, bool)

	// All returns every coupon ordered by code.
	All() []model.Coupon

	// Size returns the number of coupons in the set.
	Size() int
}

// Loader defines the interface for loading coupon definition files.
type Loader interface {
	// Load reads a gzipped JSON-lines coupon file and returns its coupons.
	Load(ctx context.Context, filePath string) (Set, error)
}
