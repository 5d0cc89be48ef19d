package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/coupon"
	"github.com/rabi-77/ecommerce-sub000/internal/database"
	"github.com/rabi-77/ecommerce-sub000/internal/lifecycle"
	"github.com/rabi-77/ecommerce-sub000/internal/model"
	"github.com/rabi-77/ecommerce-sub000/internal/pricing"
	"github.com/rabi-77/ecommerce-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	reconcileBatchSize  = 100
	orderNumberAttempts = 3
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	productRepo repository.ProductRepository
	offerRepo   repository.OfferRepository
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	walletRepo  repository.WalletRepository
	coupons     coupon.Validator
	policy      pricing.Policy
	now         func() time.Time
	orderNumber func(time.Time) string
	logger      zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	productRepo repository.ProductRepository,
	offerRepo repository.OfferRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	walletRepo repository.WalletRepository,
	coupons coupon.Validator,
	policy pricing.Policy,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		productRepo: productRepo,
		offerRepo:   offerRepo,
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		walletRepo:  walletRepo,
		coupons:     coupons,
		policy:      policy,
		now:         time.Now,
		orderNumber: GenerateOrderNumber,
		logger:      logger.With().Str("service", "checkout").Logger(),
	}
}

// GenerateOrderNumber formats ORD-<YYMMDD>-<HHMMSS>-<3-digit random>.
func GenerateOrderNumber(t time.Time) string {
	return fmt.Sprintf("ORD-%s-%s-%03d", t.Format("060102"), t.Format("150405"), rand.Intn(1000))
}

// Quote prices the cart without reserving stock or persisting anything.
func (s *checkoutService) Quote(ctx context.Context, userID uuid.UUID, req *model.QuoteRequest) (*model.Quote, error) {
	lines, err := s.buildLines(ctx, userID)
	if err != nil {
		return nil, err
	}

	subtotal := pricing.SubtotalAfterOffer(lines)
	codAvailable := s.policy.CODAllowed(subtotal)
	if req.PaymentMethod == model.PaymentCOD && !codAvailable {
		return nil, model.ErrCODLimitExceeded
	}

	redemption, agg, err := s.applyCoupon(ctx, userID, req.CouponCode, lines)
	if err != nil {
		return nil, err
	}

	quote := &model.Quote{
		Aggregates:   agg,
		Items:        lines,
		CODAvailable: codAvailable,
	}
	if redemption != nil {
		code := redemption.Coupon.Code
		quote.CouponCode = &code
	}

	s.logger.Debug().
		Str("user_id", userID.String()).
		Str("total", agg.TotalPrice.String()).
		Msg("cart quoted")

	return quote, nil
}

// Checkout prices the cart, reserves stock, persists the order and runs the payment branch.
func (s *checkoutService) Checkout(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.Order, error) {
	if !req.PaymentMethod.Valid() {
		return nil, model.ErrInvalidPayment
	}

	if req.PaymentMethod == model.PaymentRazorpay {
		existing, err := s.orderRepo.FindPendingGatewayOrder(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check pending orders: %w", err)
		}
		if existing != nil {
			s.logger.Info().
				Str("user_id", userID.String()).
				Str("order_id", existing.ID.String()).
				Msg("returning existing pending gateway order")
			return existing, nil
		}
	}

	lines, err := s.buildLines(ctx, userID)
	if err != nil {
		return nil, err
	}

	subtotal := pricing.SubtotalAfterOffer(lines)
	if req.PaymentMethod == model.PaymentCOD && !s.policy.CODAllowed(subtotal) {
		s.logger.Warn().
			Str("user_id", userID.String()).
			Str("subtotal", subtotal.String()).
			Msg("cash on delivery above limit")
		return nil, model.ErrCODLimitExceeded
	}

	redemption, agg, err := s.applyCoupon(ctx, userID, req.CouponCode, lines)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &model.Order{
		ID:                uuid.New(),
		OrderNumber:       s.orderNumber(now),
		UserID:            userID,
		PaymentMethod:     req.PaymentMethod,
		Status:            model.StatusPending,
		CheckoutState:     model.CheckoutStockReserved,
		Aggregates:        agg,
		CouponMinPurchase: decimal.Zero,
		RefundToWallet:    decimal.Zero,
		ReturnStatus:      model.ReturnNone,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if redemption != nil {
		id, code := redemption.Coupon.ID, redemption.Coupon.Code
		order.CouponID = &id
		order.CouponCode = &code
		order.CouponMinPurchase = redemption.Coupon.MinPurchaseAmount
	}
	for i := range lines {
		lines[i].OrderID = order.ID
	}
	order.Items = lines

	if err := s.reserveWithNumber(ctx, order, now); err != nil {
		return nil, err
	}

	switch order.PaymentMethod {
	case model.PaymentWallet:
		if err := s.payFromWallet(ctx, order); err != nil {
			if cerr := s.compensate(ctx, order.ID, true); cerr != nil {
				s.logger.Error().Err(cerr).Str("order_id", order.ID.String()).Msg("failed to compensate checkout")
			}
			return nil, err
		}
	case model.PaymentCOD:
		if err := s.markCompleted(ctx, order, false); err != nil {
			s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("checkout left in stock_reserved")
		}
	case model.PaymentRazorpay:
		s.logger.Info().
			Str("order_id", order.ID.String()).
			Str("order_number", order.OrderNumber).
			Str("total", order.TotalPrice.String()).
			Msg("order awaiting gateway payment")
		return order, nil
	}

	s.finish(ctx, order, true)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("payment_method", string(order.PaymentMethod)).
		Str("total", order.TotalPrice.String()).
		Int("item_count", len(order.Items)).
		Msg("order placed successfully")

	return order, nil
}

// ConfirmPayment applies the gateway's verdict to a pending RAZORPAY order.
func (s *checkoutService) ConfirmPayment(ctx context.Context, orderID uuid.UUID, conf *model.PaymentConfirmation) (order *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err = s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}
	if order.PaymentMethod != model.PaymentRazorpay || !lifecycle.CanFailPayment(order) {
		err = model.ErrPaymentNotPending
		return nil, err
	}

	now := s.now()
	if conf.Reference != "" {
		ref := conf.Reference
		order.PaymentReference = &ref
	}
	order.UpdatedAt = now

	paid := conf.Paid != nil && *conf.Paid
	if paid {
		order.IsPaid = true
		order.PaidAt = &now
		order.CheckoutState = model.CheckoutCompleted
	} else {
		for _, item := range order.Items {
			if !item.Active() {
				continue
			}
			if err = s.productRepo.ReleaseStock(ctx, tx, item.ProductID, item.Size, item.Quantity); err != nil {
				return nil, err
			}
		}
		order.Status = model.StatusPaymentFailed
		order.CheckoutState = model.CheckoutCompensated
	}

	if err = s.orderRepo.UpdateOrder(ctx, tx, order); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payment confirmation: %w", err)
	}

	if paid {
		s.finish(ctx, order, true)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Bool("paid", paid).
		Msg("payment confirmation applied")

	return order, nil
}

// ReconcileCheckouts finishes or compensates checkouts stuck in stock_reserved.
func (s *checkoutService) ReconcileCheckouts(ctx context.Context, olderThan time.Duration) (*model.ReconcileResult, error) {
	cutoff := s.now().Add(-olderThan)
	orders, err := s.orderRepo.ListStaleCheckouts(ctx, cutoff, reconcileBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale checkouts: %w", err)
	}

	result := &model.ReconcileResult{Scanned: len(orders)}
	for i := range orders {
		order := &orders[i]
		log := s.logger.With().
			Str("order_id", order.ID.String()).
			Str("payment_method", string(order.PaymentMethod)).
			Logger()

		completed, err := s.reconcileOne(ctx, order)
		switch {
		case err != nil:
			result.Failed++
			log.Error().Err(err).Msg("failed to reconcile checkout")
		case completed:
			result.Completed++
			log.Info().Msg("stale checkout completed")
		default:
			result.Compensated++
			log.Info().Msg("stale checkout compensated")
		}
	}

	s.logger.Info().
		Int("scanned", result.Scanned).
		Int("completed", result.Completed).
		Int("compensated", result.Compensated).
		Int("failed", result.Failed).
		Msg("checkout reconciliation finished")

	return result, nil
}

func (s *checkoutService) reconcileOne(ctx context.Context, order *model.Order) (bool, error) {
	switch order.PaymentMethod {
	case model.PaymentWallet:
		debited, err := s.walletRepo.HasOrderDebit(ctx, order.ID)
		if err != nil {
			return false, err
		}
		if !debited {
			return false, s.compensate(ctx, order.ID, false)
		}
		if err := s.completeStale(ctx, order.ID, true); err != nil {
			return false, err
		}
		return true, nil
	case model.PaymentRazorpay:
		return false, s.compensate(ctx, order.ID, true)
	default:
		if err := s.completeStale(ctx, order.ID, false); err != nil {
			return false, err
		}
		return true, nil
	}
}

// buildLines loads the cart and prices each line with its best offer.
func (s *checkoutService) buildLines(ctx context.Context, userID uuid.UUID) ([]model.OrderItem, error) {
	cart, err := s.cartRepo.GetItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cart) == 0 {
		return nil, model.ErrEmptyCart
	}

	ids := make([]uuid.UUID, 0, len(cart))
	seen := make(map[uuid.UUID]bool, len(cart))
	for _, ci := range cart {
		if !seen[ci.ProductID] {
			seen[ci.ProductID] = true
			ids = append(ids, ci.ProductID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	byID := make(map[uuid.UUID]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	now := s.now()
	offers, err := s.offerRepo.ListActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load offers: %w", err)
	}
	idx := pricing.NewOfferIndex(offers, now)

	lines := make([]model.OrderItem, 0, len(cart))
	for _, ci := range cart {
		p, ok := byID[ci.ProductID]
		if !ok {
			return nil, model.ErrProductNotFound
		}
		if err := checkLine(p, ci); err != nil {
			s.logger.Warn().
				Str("user_id", userID.String()).
				Str("product_id", ci.ProductID.String()).
				Str("size", ci.Size).
				Err(err).
				Msg("cart line rejected")
			return nil, err
		}

		res := idx.Resolve(p.ID, p.CategoryID, p.Price)
		line := model.OrderItem{
			ID:             uuid.New(),
			ProductID:      p.ID,
			ProductName:    p.Name,
			Size:           ci.Size,
			Quantity:       ci.Quantity,
			Price:          p.Price,
			OfferDiscount:  res.Saving,
			TotalPrice:     res.EffectivePrice,
			FinalUnitPrice: res.EffectivePrice,
			CouponShare:    decimal.Zero,
			TaxShare:       decimal.Zero,
			ReturnStatus:   model.ReturnNone,
		}
		if res.Offer != nil {
			id := res.Offer.ID
			line.OfferID = &id
		}
		lines = append(lines, line)
	}

	return lines, nil
}

func checkLine(p *model.Product, ci model.CartItem) error {
	if ci.Quantity <= 0 {
		return model.ErrInvalidQuantity
	}
	if !p.Available() {
		return model.ErrProductUnavailable
	}
	v, ok := p.Variant(ci.Size)
	if !ok {
		return model.ErrVariantNotFound
	}
	if v.Stock < ci.Quantity {
		return model.ErrInsufficientStock
	}
	return nil
}

// applyCoupon validates the optional coupon against the offer-adjusted
// subtotal and allocates the result across lines.
func (s *checkoutService) applyCoupon(ctx context.Context, userID uuid.UUID, code *string, lines []model.OrderItem) (*coupon.Redemption, model.Aggregates, error) {
	discount := decimal.Zero
	var redemption *coupon.Redemption

	if code != nil && model.NormalizeCode(*code) != "" {
		var err error
		redemption, err = s.coupons.Validate(ctx, *code, userID, pricing.SubtotalAfterOffer(lines))
		if err != nil {
			s.logger.Warn().
				Str("coupon_code", *code).
				Str("user_id", userID.String()).
				Err(err).
				Msg("coupon rejected at checkout")
			return nil, model.Aggregates{}, err
		}
		discount = redemption.Discount
	}

	return redemption, s.policy.Reprice(lines, discount), nil
}

// reserve decrements stock and inserts the order in one transaction.
func (s *checkoutService) reserve(ctx context.Context, order *model.Order) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	for _, item := range order.Items {
		if err = s.productRepo.ReserveStock(ctx, tx, item.ProductID, item.Size, item.Quantity); err != nil {
			return err
		}
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// reserveWithNumber runs reserve, drawing a fresh order number when the
// previous one collided with an existing order.
func (s *checkoutService) reserveWithNumber(ctx context.Context, order *model.Order, now time.Time) error {
	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		if attempt > 0 {
			order.OrderNumber = s.orderNumber(now)
			s.logger.Warn().Str("order_number", order.OrderNumber).Msg("order number collision, retrying")
		}
		err = s.reserve(ctx, order)
		if !database.IsViolation(err, database.CodeUniqueViolation) {
			return err
		}
	}
	return err
}

// payFromWallet debits the wallet and marks the order paid in one transaction.
func (s *checkoutService) payFromWallet(ctx context.Context, order *model.Order) (err error) {
	tx, err := s.walletRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to pay from wallet: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	orderID := order.ID
	_, err = s.walletRepo.Debit(ctx, tx, order.UserID, order.TotalPrice, model.WalletEntry{
		Source:      model.SourceOrderPayment,
		OrderID:     &orderID,
		Description: "Payment for order " + order.OrderNumber,
	})
	if err != nil {
		if errors.Is(err, model.ErrInsufficientBalance) {
			s.logger.Warn().
				Str("order_id", order.ID.String()).
				Str("total", order.TotalPrice.String()).
				Msg("wallet balance too low for order")
		}
		return err
	}

	now := s.now()
	order.IsPaid = true
	order.PaidAt = &now
	order.CheckoutState = model.CheckoutCompleted
	order.UpdatedAt = now
	if err = s.orderRepo.UpdateOrder(ctx, tx, order); err != nil {
		order.IsPaid = false
		order.PaidAt = nil
		order.CheckoutState = model.CheckoutStockReserved
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit wallet payment: %w", err)
	}
	return nil
}

// markCompleted moves a freshly reserved order to completed, optionally marking it paid.
func (s *checkoutService) markCompleted(ctx context.Context, order *model.Order, paid bool) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := s.now()
	order.CheckoutState = model.CheckoutCompleted
	order.UpdatedAt = now
	if paid && !order.IsPaid {
		order.IsPaid = true
		order.PaidAt = &now
	}
	if err = s.orderRepo.UpdateOrder(ctx, tx, order); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// completeStale reloads a stale order under lock and completes it if it is still reserved.
func (s *checkoutService) completeStale(ctx context.Context, orderID uuid.UUID, paid bool) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if order == nil || order.CheckoutState != model.CheckoutStockReserved {
		return tx.Rollback(ctx)
	}

	now := s.now()
	order.CheckoutState = model.CheckoutCompleted
	order.UpdatedAt = now
	if paid && !order.IsPaid {
		order.IsPaid = true
		order.PaidAt = &now
	}
	if err = s.orderRepo.UpdateOrder(ctx, tx, order); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return err
	}

	s.finish(ctx, order, false)
	return nil
}

// compensate releases the stock of a reserved order and either deletes it
// or marks it as a failed payment. Orders no longer in stock_reserved are left alone.
func (s *checkoutService) compensate(ctx context.Context, orderID uuid.UUID, deleteOrder bool) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if order == nil || order.CheckoutState != model.CheckoutStockReserved {
		return tx.Rollback(ctx)
	}

	for _, item := range order.Items {
		if err = s.productRepo.ReleaseStock(ctx, tx, item.ProductID, item.Size, item.Quantity); err != nil {
			return err
		}
	}

	if deleteOrder {
		err = s.orderRepo.DeleteOrder(ctx, tx, order.ID)
	} else {
		order.Status = model.StatusPaymentFailed
		order.CheckoutState = model.CheckoutCompensated
		order.UpdatedAt = s.now()
		err = s.orderRepo.UpdateOrder(ctx, tx, order)
	}
	if err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Bool("deleted", deleteOrder).
		Msg("checkout compensated")
	return nil
}

// finish runs the best-effort steps after a successful payment.
func (s *checkoutService) finish(ctx context.Context, order *model.Order, clearCart bool) {
	if clearCart {
		if err := s.cartRepo.Clear(ctx, order.UserID); err != nil {
			s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to clear cart after checkout")
		}
	}
	if order.CouponID != nil {
		if err := s.coupons.Redeem(ctx, *order.CouponID, order.UserID, order.ID); err != nil {
			s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to redeem coupon after checkout")
		}
	}
}
