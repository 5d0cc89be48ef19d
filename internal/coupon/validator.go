package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// validator implements Validator on top of a coupon Store.
type validator struct {
	store  Store
	now    func() time.Time
	logger zerolog.Logger
}

// NewValidator creates a new store-backed coupon validator.
func NewValidator(store Store, logger zerolog.Logger) Validator {
	return &validator{
		store:  store,
		now:    time.Now,
		logger: logger.With().Str("component", "coupon-validator").Logger(),
	}
}

// Validate checks that the coupon can be applied and computes the discount.
func (v *validator) Validate(ctx context.Context, code string, userID uuid.UUID, subtotal decimal.Decimal) (*Redemption, error) {
	code = model.NormalizeCode(code)
	if code == "" {
		return nil, model.ErrCouponNotFound
	}

	c, err := v.store.GetByCode(ctx, code)
	if err != nil {
		v.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to load coupon")
		return nil, fmt.Errorf("failed to load coupon: %w", err)
	}
	if c == nil {
		v.logger.Debug().Str("coupon_code", code).Msg("coupon not found")
		return nil, model.ErrCouponNotFound
	}

	discount, err := Evaluate(c, userID, subtotal, v.now())
	if err != nil {
		v.logger.Debug().
			Str("coupon_code", code).
			Str("user_id", userID.String()).
			Str("subtotal", subtotal.String()).
			Err(err).
			Msg("coupon rejected")
		return nil, err
	}

	v.logger.Debug().
		Str("coupon_code", code).
		Str("discount", discount.String()).
		Msg("coupon validated successfully")

	return &Redemption{Coupon: c, Discount: discount}, nil
}

// Redeem increments the usage count and records the user as having used the coupon.
func (v *validator) Redeem(ctx context.Context, couponID, userID, orderID uuid.UUID) error {
	if err := v.store.Redeem(ctx, couponID, userID, orderID); err != nil {
		v.logger.Error().
			Err(err).
			Str("coupon_id", couponID.String()).
			Str("user_id", userID.String()).
			Msg("failed to redeem coupon")
		return fmt.Errorf("failed to redeem coupon: %w", err)
	}
	return nil
}
