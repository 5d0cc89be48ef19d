package repository

import (
	"context"
	"fmt"

	"github.com/rabi-77/ecommerce-sub000/internal/database"
	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// GetByCode retrieves a coupon and the users who redeemed it.
func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `
		SELECT c.id, c.code, c.description, c.discount_type, c.discount_value,
		       c.min_purchase_amount, c.max_discount_amount, c.start_date, c.expiry_date,
		       c.max_uses, c.used_count, c.is_active,
		       COALESCE(array_agg(cr.user_id::text) FILTER (WHERE cr.user_id IS NOT NULL), '{}')
		FROM coupons c
		LEFT JOIN coupon_redemptions cr ON cr.coupon_id = c.id
		WHERE c.code = $1
		GROUP BY c.id
	`

	var c model.Coupon
	var usedBy []string
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&c.ID, &c.Code, &c.Description, &c.DiscountType, &c.DiscountValue,
		&c.MinPurchaseAmount, &c.MaxDiscountAmount, &c.StartDate, &c.ExpiryDate,
		&c.MaxUses, &c.UsedCount, &c.IsActive,
		&usedBy,
	)
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Str("coupon_code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	c.UsedBy = make([]uuid.UUID, 0, len(usedBy))
	for _, s := range usedBy {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redeeming user id %q: %w", s, err)
		}
		c.UsedBy = append(c.UsedBy, id)
	}

	return &c, nil
}

// Upsert inserts or replaces a coupon definition, keeping its usage count.
func (r *couponRepository) Upsert(ctx context.Context, c *model.Coupon) error {
	query := `
		INSERT INTO coupons (id, code, description, discount_type, discount_value,
		                     min_purchase_amount, max_discount_amount, start_date, expiry_date,
		                     max_uses, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (code) DO UPDATE SET
			description = EXCLUDED.description,
			discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value,
			min_purchase_amount = EXCLUDED.min_purchase_amount,
			max_discount_amount = EXCLUDED.max_discount_amount,
			start_date = EXCLUDED.start_date,
			expiry_date = EXCLUDED.expiry_date,
			max_uses = EXCLUDED.max_uses,
			is_active = EXCLUDED.is_active
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.Code, c.Description, c.DiscountType, c.DiscountValue,
		c.MinPurchaseAmount, c.MaxDiscountAmount, c.StartDate, c.ExpiryDate,
		c.MaxUses, c.IsActive,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_code", c.Code).Msg("failed to upsert coupon")
		return fmt.Errorf("failed to upsert coupon: %w", err)
	}

	r.logger.Debug().Str("coupon_code", c.Code).Msg("coupon upserted")
	return nil
}

// Redeem records a user's use of a coupon and increments its usage count.
// The coupon row is locked so concurrent redemptions cannot overrun max_uses.
func (r *couponRepository) Redeem(ctx context.Context, couponID, userID, orderID uuid.UUID) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var usedCount int
	var maxUses *int
	err = tx.QueryRow(ctx, `SELECT used_count, max_uses FROM coupons WHERE id = $1 FOR UPDATE`, couponID).
		Scan(&usedCount, &maxUses)
	if err != nil {
		if isNoRows(err) {
			return model.ErrCouponNotFound
		}
		return fmt.Errorf("failed to lock coupon: %w", err)
	}
	if maxUses != nil && usedCount >= *maxUses {
		r.logger.Warn().Str("coupon_id", couponID.String()).Msg("coupon usage cap reached at redemption")
		return model.ErrCouponUsageExceeded
	}

	if err = r.insertRedemption(ctx, tx, couponID, userID, orderID); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `UPDATE coupons SET used_count = used_count + 1 WHERE id = $1`, couponID); err != nil {
		return fmt.Errorf("failed to increment coupon usage: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info().
		Str("coupon_id", couponID.String()).
		Str("user_id", userID.String()).
		Str("order_id", orderID.String()).
		Msg("coupon redeemed")
	return nil
}

func (r *couponRepository) insertRedemption(ctx context.Context, tx pgx.Tx, couponID, userID, orderID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO coupon_redemptions (coupon_id, user_id, order_id)
		VALUES ($1, $2, $3)
	`, couponID, userID, orderID)
	if err != nil {
		if database.IsViolation(err, database.CodeUniqueViolation) {
			return model.ErrCouponAlreadyUsed
		}
		return fmt.Errorf("failed to record coupon redemption: %w", err)
	}
	return nil
}
