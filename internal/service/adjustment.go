package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/coupon"
	"github.com/rabi-77/ecommerce-sub000/internal/database"
	"github.com/rabi-77/ecommerce-sub000/internal/lifecycle"
	"github.com/rabi-77/ecommerce-sub000/internal/model"
	"github.com/rabi-77/ecommerce-sub000/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// adjustment is what a mutation of a locked order asks the surrounding
// transaction to do besides saving the order.
type adjustment struct {
	restock []model.OrderItem
	refund  decimal.Decimal
	source  string
}

// adjustFunc mutates a freshly locked order in place.
// It must not touch the database so a retry can run it again on a reloaded order.
type adjustFunc func(order *model.Order, now time.Time) (*adjustment, error)

// adjust loads the order under lock, applies fn and persists the order,
// the restock and the wallet refund in one transaction, retrying on
// serialization failures and deadlocks.
func (s *orderService) adjust(ctx context.Context, orderID uuid.UUID, op string, fn adjustFunc) (*model.Order, error) {
	var result *model.Order
	err := database.Retry(ctx, s.retry, func(ctx context.Context) error {
		order, err := s.adjustOnce(ctx, orderID, op, fn)
		if err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		log := s.logger.Error()
		if isBusinessError(err) {
			log = s.logger.Warn()
		}
		log.Err(err).Str("order_id", orderID.String()).Str("operation", op).Msg("order adjustment rejected")
		return nil, err
	}
	return result, nil
}

func (s *orderService) adjustOnce(ctx context.Context, orderID uuid.UUID, op string, fn adjustFunc) (order *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
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

	now := s.now()
	adj, err := fn(order, now)
	if err != nil {
		return nil, err
	}
	order.UpdatedAt = now

	for _, item := range adj.restock {
		if err = s.productRepo.ReleaseStock(ctx, tx, item.ProductID, item.Size, item.Quantity); err != nil {
			return nil, err
		}
	}

	if err = s.orderRepo.UpdateOrder(ctx, tx, order); err != nil {
		return nil, err
	}
	if err = s.orderRepo.UpdateOrderItems(ctx, tx, order.Items); err != nil {
		return nil, err
	}

	refund := pricing.Round2(nonNegative(adj.refund))
	if refund.IsPositive() {
		id := order.ID
		_, err = s.walletRepo.Credit(ctx, tx, order.UserID, refund, model.WalletEntry{
			Source:      adj.source,
			OrderID:     &id,
			Description: fmt.Sprintf("Refund for order %s", order.OrderNumber),
		})
		if err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order adjustment: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("operation", op).
		Int("restocked_lines", len(adj.restock)).
		Str("refund", refund.String()).
		Str("total", order.TotalPrice.String()).
		Msg("order adjusted")

	return order, nil
}

// CancelOrder cancels every remaining item, restocks and refunds.
func (s *orderService) CancelOrder(ctx context.Context, orderID uuid.UUID, actor lifecycle.Actor, userID uuid.UUID, reason string) (*model.Order, error) {
	return s.adjust(ctx, orderID, "cancel_order", s.cancelAll(actor, userID, reason))
}

func (s *orderService) cancelAll(actor lifecycle.Actor, userID uuid.UUID, reason string) adjustFunc {
	return func(order *model.Order, now time.Time) (*adjustment, error) {
		if err := authorize(order, actor, userID); err != nil {
			return nil, err
		}
		if err := lifecycle.Check(actor, order.Status, model.StatusCancelled); err != nil {
			return nil, err
		}

		adj := &adjustment{source: model.SourceOrderCancellation}
		if order.RefundsToWallet() {
			adj.refund = order.TotalPrice
		}

		for i := range order.Items {
			item := &order.Items[i]
			if !item.Active() {
				continue
			}
			cancelItem(item, reason, now)
			adj.restock = append(adj.restock, *item)
		}

		order.Aggregates = pricing.Settle(order.Items, decimal.Zero)
		order.RefundToWallet = order.RefundToWallet.Add(pricing.Round2(adj.refund))
		if reason != "" {
			r := reason
			order.CancellationReason = &r
		}
		closeReservation(order)
		lifecycle.Apply(order, model.StatusCancelled, now)
		return adj, nil
	}
}

// CancelOrderItem cancels one item and recomputes the order aggregates.
// Paid orders keep their allocation and refund exactly the change in total.
// Unpaid orders are repriced and lose the coupon once below its minimum.
func (s *orderService) CancelOrderItem(ctx context.Context, orderID, itemID, userID uuid.UUID, reason string) (*model.Order, error) {
	return s.adjust(ctx, orderID, "cancel_item", func(order *model.Order, now time.Time) (*adjustment, error) {
		if err := authorize(order, lifecycle.ActorCustomer, userID); err != nil {
			return nil, err
		}
		if !lifecycle.ItemCancellable(order.Status) {
			return nil, model.ErrItemNotCancellable
		}
		item := order.Item(itemID)
		if item == nil {
			return nil, model.ErrOrderItemNotFound
		}
		if !item.Active() {
			return nil, model.ErrItemNotCancellable
		}

		adj := &adjustment{source: model.SourceItemCancellation}
		before := order.TotalPrice
		cancelItem(item, reason, now)
		adj.restock = append(adj.restock, *item)

		if order.RefundsToWallet() {
			shipping := decimal.Zero
			if order.HasActiveItems() {
				shipping = order.ShippingPrice
			}
			order.Aggregates = pricing.Settle(order.Items, shipping)
			adj.refund = before.Sub(order.TotalPrice)
			order.RefundToWallet = order.RefundToWallet.Add(pricing.Round2(nonNegative(adj.refund)))
		} else {
			discount := decimal.Zero
			if order.CouponID != nil && coupon.MeetsMinimum(order.CouponMinPurchase, pricing.SubtotalAfterOffer(order.Items)) {
				discount = order.CouponDiscount
			} else {
				order.CouponID = nil
				order.CouponCode = nil
				order.CouponMinPurchase = decimal.Zero
			}
			order.Aggregates = s.policy.Reprice(order.Items, discount)
		}

		if lifecycle.AllCancelled(order) {
			closeReservation(order)
			lifecycle.Apply(order, model.StatusCancelled, now)
		}
		return adj, nil
	})
}

// RequestReturn opens a return request for one item, or for every eligible item.
func (s *orderService) RequestReturn(ctx context.Context, orderID, userID uuid.UUID, req *model.ReturnRequest) (*model.Order, error) {
	return s.adjust(ctx, orderID, "request_return", s.requestReturn(userID, req))
}

func (s *orderService) requestReturn(userID uuid.UUID, req *model.ReturnRequest) adjustFunc {
	return func(order *model.Order, now time.Time) (*adjustment, error) {
		if err := authorize(order, lifecycle.ActorCustomer, userID); err != nil {
			return nil, err
		}
		if order.Status != model.StatusDelivered {
			return nil, model.ErrReturnNotAllowed
		}
		if !lifecycle.WithinReturnWindow(order, s.returnWindow, now) {
			return nil, model.ErrReturnWindowClosed
		}

		var targets []*model.OrderItem
		if req.ItemID != nil {
			item := order.Item(*req.ItemID)
			if item == nil {
				return nil, model.ErrOrderItemNotFound
			}
			if !lifecycle.ReturnEligible(item) {
				return nil, model.ErrReturnNotAllowed
			}
			targets = append(targets, item)
		} else {
			for i := range order.Items {
				if lifecycle.ReturnEligible(&order.Items[i]) {
					targets = append(targets, &order.Items[i])
				}
			}
			if len(targets) == 0 {
				return nil, model.ErrReturnNotAllowed
			}
		}

		for _, item := range targets {
			reason := req.Reason
			requestedAt := now
			item.ReturnStatus = model.ReturnPending
			item.ReturnReason = &reason
			item.ReturnRequestedAt = &requestedAt
		}

		reason := req.Reason
		order.ReturnReason = &reason
		order.ReturnRequestedAt = &now
		order.ReturnStatus = lifecycle.RollupReturnStatus(order, model.ReturnPending)
		return &adjustment{}, nil
	}
}

// VerifyReturn approves or rejects a pending item return.
// Approval restocks the item and refunds the change in total with shipping retained.
func (s *orderService) VerifyReturn(ctx context.Context, orderID, itemID uuid.UUID, req *model.VerifyReturnRequest) (*model.Order, error) {
	approved := req.Approved != nil && *req.Approved
	return s.adjust(ctx, orderID, "verify_return", func(order *model.Order, now time.Time) (*adjustment, error) {
		item := order.Item(itemID)
		if item == nil {
			return nil, model.ErrOrderItemNotFound
		}
		if item.ReturnStatus != model.ReturnPending {
			return nil, model.ErrReturnNotPending
		}

		if !approved {
			verifiedAt := now
			item.ReturnStatus = model.ReturnNone
			item.ReturnVerifiedAt = &verifiedAt
			if req.Notes != "" {
				notes := req.Notes
				item.ReturnNotes = &notes
			}
			order.ReturnStatus = lifecycle.RollupReturnStatus(order, model.ReturnRejected)
			return &adjustment{}, nil
		}

		adj := &adjustment{source: model.SourceOrderReturn}
		before := order.TotalPrice
		approveItem(item, req.Notes, now)
		adj.restock = append(adj.restock, *item)

		order.Aggregates = pricing.Settle(order.Items, order.ShippingPrice)
		if order.RefundsToWallet() {
			adj.refund = before.Sub(order.TotalPrice)
			order.RefundToWallet = order.RefundToWallet.Add(pricing.Round2(nonNegative(adj.refund)))
		}

		order.ReturnStatus = lifecycle.RollupReturnStatus(order, model.ReturnApproved)
		if lifecycle.AllReturned(order) {
			lifecycle.Apply(order, model.StatusReturned, now)
		}
		return adj, nil
	})
}

func cancelItem(item *model.OrderItem, reason string, now time.Time) {
	item.IsCancelled = true
	item.CancelledAt = &now
	if reason != "" {
		r := reason
		item.CancellationReason = &r
	}
}

func approveItem(item *model.OrderItem, notes string, now time.Time) {
	item.IsReturned = true
	item.ReturnStatus = model.ReturnApproved
	item.ReturnVerifiedAt = &now
	if notes != "" {
		n := notes
		item.ReturnNotes = &n
	}
}

// closeReservation stops the checkout reconciler from releasing stock a second time.
func closeReservation(order *model.Order) {
	if order.CheckoutState == model.CheckoutStockReserved {
		order.CheckoutState = model.CheckoutCompensated
	}
}
