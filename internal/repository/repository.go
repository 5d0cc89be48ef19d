package repository

import (
	"context"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for catalogue data access operations.
type ProductRepository interface {
	// GetAll retrieves non-deleted products with their variants, with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product with its variants.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products with their variants.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// ReserveStock decrements a variant's stock by qty only if enough is left.
	// Returns model.ErrInsufficientStock otherwise.
	ReserveStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, size string, qty int) error

	// ReleaseStock returns qty units to a variant's stock.
	ReleaseStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, size string, qty int) error
}

// OfferRepository defines the interface for offer data access operations.
type OfferRepository interface {
	// ListActive retrieves offers that are switched on and whose window contains at.
	ListActive(ctx context.Context, at time.Time) ([]model.Offer, error)
}

// CouponRepository defines the interface for coupon data access operations.
type CouponRepository interface {
	// GetByCode retrieves a coupon and the users who redeemed it.
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// Upsert inserts or replaces a coupon definition, keeping its usage count.
	Upsert(ctx context.Context, c *model.Coupon) error

	// Redeem records a user's use of a coupon and increments its usage count.
	Redeem(ctx context.Context, couponID, userID, orderID uuid.UUID) error
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// GetItems retrieves a user's cart lines, oldest first.
	GetItems(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)

	// Clear removes every line from a user's cart.
	Clear(ctx context.Context, userID uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetForUpdate retrieves an order with its items and locks the order row.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// UpdateOrder writes back every mutable order field.
	UpdateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// UpdateOrderItems writes back every mutable field of the given items.
	UpdateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// DeleteOrder removes an order and its items.
	DeleteOrder(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	// FindPendingGatewayOrder retrieves the user's pending, unpaid RAZORPAY order, if any.
	FindPendingGatewayOrder(ctx context.Context, userID uuid.UUID) (*model.Order, error)

	// ListStaleCheckouts retrieves orders still in stock_reserved that were created before the cutoff.
	ListStaleCheckouts(ctx context.Context, before time.Time, limit int) ([]model.Order, error)
}

// WalletRepository defines the interface for wallet data access operations.
type WalletRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Credit upserts the wallet, adds amount and appends a transaction.
	// A non-positive amount is a no-op and returns nil, nil.
	Credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal, entry model.WalletEntry) (*model.WalletTransaction, error)

	// Debit subtracts amount and appends a transaction. A missing wallet or a
	// short balance returns model.ErrInsufficientBalance without writing anything.
	Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal, entry model.WalletEntry) (*model.WalletTransaction, error)

	// GetBalance returns the stored balance, zero when the wallet does not exist.
	GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)

	// ListTransactions returns one page of transactions newest first and the total count.
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.WalletTransaction, int, error)

	// HasOrderDebit reports whether a payment debit exists for the order.
	HasOrderDebit(ctx context.Context, orderID uuid.UUID) (bool, error)
}
