package service

import (
	"context"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/lifecycle"
	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductService defines catalogue reads with offers applied.
type ProductService interface {
	// GetAll retrieves products with pagination and their effective prices.
	GetAll(ctx context.Context, limit, offset int) ([]model.PricedProduct, error)

	// GetByID retrieves a single product with its effective price.
	GetByID(ctx context.Context, id uuid.UUID) (*model.PricedProduct, error)
}

// CheckoutService turns a user's cart into a priced order and drives its payment.
type CheckoutService interface {
	// Quote prices the cart without reserving stock or persisting anything.
	Quote(ctx context.Context, userID uuid.UUID, req *model.QuoteRequest) (*model.Quote, error)

	// Checkout prices the cart, reserves stock, persists the order and runs the payment branch.
	Checkout(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.Order, error)

	// ConfirmPayment applies the gateway's verdict to a pending RAZORPAY order.
	ConfirmPayment(ctx context.Context, orderID uuid.UUID, conf *model.PaymentConfirmation) (*model.Order, error)

	// ReconcileCheckouts finishes or compensates checkouts stuck in stock_reserved for longer than olderThan.
	ReconcileCheckouts(ctx context.Context, olderThan time.Duration) (*model.ReconcileResult, error)
}

// OrderService defines order reads, status transitions and the cancellation and return adjustments.
type OrderService interface {
	// GetOrder retrieves an order owned by userID.
	GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error)

	// TransitionStatus moves an order to a new status on behalf of actor.
	// userID is checked against the owner when actor is a customer.
	TransitionStatus(ctx context.Context, orderID uuid.UUID, actor lifecycle.Actor, userID uuid.UUID, req *model.StatusUpdateRequest) (*model.Order, error)

	// CancelOrder cancels every remaining item, restocks and refunds.
	CancelOrder(ctx context.Context, orderID uuid.UUID, actor lifecycle.Actor, userID uuid.UUID, reason string) (*model.Order, error)

	// CancelOrderItem cancels one item and recomputes the order aggregates.
	CancelOrderItem(ctx context.Context, orderID, itemID, userID uuid.UUID, reason string) (*model.Order, error)

	// RequestReturn opens a return request for one item, or for every eligible item.
	RequestReturn(ctx context.Context, orderID, userID uuid.UUID, req *model.ReturnRequest) (*model.Order, error)

	// VerifyReturn approves or rejects a pending item return.
	VerifyReturn(ctx context.Context, orderID, itemID uuid.UUID, req *model.VerifyReturnRequest) (*model.Order, error)
}

// WalletService defines the wallet ledger operations.
type WalletService interface {
	// Credit adds amount to the user's wallet. A non-positive amount is a no-op.
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, entry model.WalletEntry) (*model.WalletTransaction, error)

	// Debit takes amount from the user's wallet or fails with ErrInsufficientBalance.
	Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, entry model.WalletEntry) (*model.WalletTransaction, error)

	// GetWallet returns the balance and one page of transactions, newest first.
	GetWallet(ctx context.Context, userID uuid.UUID, page, limit int) (*model.WalletPage, error)
}
