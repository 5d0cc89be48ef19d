package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/model"
	"github.com/rabi-77/ecommerce-sub000/internal/pricing"
	"github.com/rabi-77/ecommerce-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	offerRepo   repository.OfferRepository
	now         func() time.Time
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, offerRepo repository.OfferRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		offerRepo:   offerRepo,
		now:         time.Now,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves products with pagination and their effective prices.
func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.PricedProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	idx, err := s.offerIndex(ctx)
	if err != nil {
		return nil, err
	}

	priced := make([]model.PricedProduct, 0, len(products))
	for _, p := range products {
		priced = append(priced, idx.PriceProduct(p))
	}

	s.logger.Debug().
		Int("count", len(priced)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("products retrieved")

	return priced, nil
}

// GetByID retrieves a single product with its effective price.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.PricedProduct, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	idx, err := s.offerIndex(ctx)
	if err != nil {
		return nil, err
	}

	priced := idx.PriceProduct(*product)
	return &priced, nil
}

func (s *productService) offerIndex(ctx context.Context) (pricing.OfferIndex, error) {
	now := s.now()
	offers, err := s.offerRepo.ListActive(ctx, now)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load offers")
		return pricing.OfferIndex{}, fmt.Errorf("failed to load offers: %w", err)
	}
	return pricing.NewOfferIndex(offers, now), nil
}
