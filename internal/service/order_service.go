package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/database"
	"github.com/rabi-77/ecommerce-sub000/internal/lifecycle"
	"github.com/rabi-77/ecommerce-sub000/internal/model"
	"github.com/rabi-77/ecommerce-sub000/internal/pricing"
	"github.com/rabi-77/ecommerce-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	walletRepo   repository.WalletRepository
	policy       pricing.Policy
	returnWindow time.Duration
	retry        database.RetryOptions
	now          func() time.Time
	logger       zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	walletRepo repository.WalletRepository,
	policy pricing.Policy,
	returnWindow time.Duration,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		walletRepo:   walletRepo,
		policy:       policy,
		returnWindow: returnWindow,
		retry:        database.DefaultRetryOptions(),
		now:          time.Now,
		logger:       logger.With().Str("service", "order").Logger(),
	}
}

// GetOrder retrieves an order owned by userID.
func (s *orderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", orderID.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, model.ErrForbidden
	}

	return order, nil
}

// TransitionStatus moves an order to a new status on behalf of actor.
// Cancellation and return targets run the matching adjustment so stock,
// aggregates and refunds stay consistent with the new status.
func (s *orderService) TransitionStatus(ctx context.Context, orderID uuid.UUID, actor lifecycle.Actor, userID uuid.UUID, req *model.StatusUpdateRequest) (*model.Order, error) {
	var fn adjustFunc
	switch {
	case req.Status == model.StatusCancelled:
		fn = s.cancelAll(actor, userID, req.Reason)
	case req.Status == model.StatusReturned && actor == lifecycle.ActorCustomer:
		fn = s.customerReturnAll(userID, req.Reason)
	case req.Status == model.StatusReturned:
		fn = s.approveAll(req.Reason)
	default:
		fn = s.move(actor, userID, req.Status)
	}

	order, err := s.adjust(ctx, orderID, "status_"+string(req.Status), fn)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("actor", string(actor)).
		Str("status", string(order.Status)).
		Msg("order status updated")

	return order, nil
}

// move is a plain transition with no stock or money side effects.
func (s *orderService) move(actor lifecycle.Actor, userID uuid.UUID, to model.OrderStatus) adjustFunc {
	return func(order *model.Order, now time.Time) (*adjustment, error) {
		if err := authorize(order, actor, userID); err != nil {
			return nil, err
		}
		if err := lifecycle.Check(actor, order.Status, to); err != nil {
			return nil, err
		}
		lifecycle.Apply(order, to, now)
		return &adjustment{}, nil
	}
}

// customerReturnAll opens a return request for every eligible item.
func (s *orderService) customerReturnAll(userID uuid.UUID, reason string) adjustFunc {
	request := s.requestReturn(userID, &model.ReturnRequest{Reason: reason})
	return func(order *model.Order, now time.Time) (*adjustment, error) {
		if err := authorize(order, lifecycle.ActorCustomer, userID); err != nil {
			return nil, err
		}
		if err := lifecycle.Check(lifecycle.ActorCustomer, order.Status, model.StatusReturned); err != nil {
			return nil, err
		}
		return request(order, now)
	}
}

// approveAll accepts the return of every remaining item, whether or not it was requested.
func (s *orderService) approveAll(notes string) adjustFunc {
	return func(order *model.Order, now time.Time) (*adjustment, error) {
		if err := lifecycle.Check(lifecycle.ActorAdmin, order.Status, model.StatusReturned); err != nil {
			return nil, err
		}

		adj := &adjustment{source: model.SourceOrderReturn}
		before := order.TotalPrice
		for i := range order.Items {
			item := &order.Items[i]
			if !item.Active() {
				continue
			}
			approveItem(item, notes, now)
			adj.restock = append(adj.restock, *item)
		}

		order.Aggregates = pricing.Settle(order.Items, order.ShippingPrice)
		if order.RefundsToWallet() {
			adj.refund = before.Sub(order.TotalPrice)
			order.RefundToWallet = order.RefundToWallet.Add(pricing.Round2(nonNegative(adj.refund)))
		}
		order.ReturnStatus = lifecycle.RollupReturnStatus(order, model.ReturnApproved)
		lifecycle.Apply(order, model.StatusReturned, now)
		return adj, nil
	}
}

// authorize rejects customers acting on orders they do not own.
func authorize(order *model.Order, actor lifecycle.Actor, userID uuid.UUID) error {
	if actor == lifecycle.ActorCustomer && order.UserID != userID {
		return model.ErrForbidden
	}
	return nil
}

// isBusinessError reports whether err is a rule rejection rather than an infrastructure failure.
func isBusinessError(err error) bool {
	var de *model.DomainError
	return errors.As(err, &de)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
