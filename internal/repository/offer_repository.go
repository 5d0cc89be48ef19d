package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type offerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOfferRepository creates a new PostgreSQL-backed offer repository.
func NewOfferRepository(pool *pgxpool.Pool, logger zerolog.Logger) OfferRepository {
	return &offerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "offer").Logger(),
	}
}

// ListActive retrieves offers that are switched on and whose window contains at.
func (r *offerRepository) ListActive(ctx context.Context, at time.Time) ([]model.Offer, error) {
	query := `
		SELECT id, name, target_type, target_id, discount_kind, discount_value, start_date, end_date, is_active
		FROM offers
		WHERE is_active = TRUE
		  AND start_date <= $1
		  AND (end_date IS NULL OR end_date >= $1)
	`

	rows, err := r.pool.Query(ctx, query, at)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query offers")
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	offers := []model.Offer{}
	for rows.Next() {
		var o model.Offer
		err := rows.Scan(
			&o.ID, &o.Name, &o.TargetType, &o.TargetID,
			&o.Discount.Kind, &o.Discount.Value,
			&o.StartDate, &o.EndDate, &o.IsActive,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan offer row")
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating offer rows")
		return nil, fmt.Errorf("error iterating offers: %w", err)
	}

	r.logger.Debug().Int("count", len(offers)).Msg("active offers loaded")

	return offers, nil
}
