package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `
	id, order_number, user_id, payment_method, status, checkout_state,
	items_price, offer_discount, coupon_discount, discount_amount, tax_price, shipping_price, total_price,
	is_paid, paid_at, payment_reference, coupon_id, coupon_code, coupon_min_purchase, refund_to_wallet,
	is_delivered, delivered_at, cancellation_date, cancellation_reason,
	return_request_status, return_reason, return_requested_at, created_at, updated_at
`

const orderItemColumns = `
	id, order_id, product_id, product_name, size, quantity, price, offer_id, offer_discount,
	total_price, final_unit_price, coupon_share, tax_share,
	is_cancelled, cancellation_reason, cancelled_at,
	is_returned, return_request_status, return_reason, return_requested_at, return_verified_at, return_notes
`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row scanner) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.PaymentMethod, &o.Status, &o.CheckoutState,
		&o.ItemsPrice, &o.OfferDiscount, &o.CouponDiscount, &o.DiscountAmount, &o.TaxPrice, &o.ShippingPrice, &o.TotalPrice,
		&o.IsPaid, &o.PaidAt, &o.PaymentReference, &o.CouponID, &o.CouponCode, &o.CouponMinPurchase, &o.RefundToWallet,
		&o.IsDelivered, &o.DeliveredAt, &o.CancellationDate, &o.CancellationReason,
		&o.ReturnStatus, &o.ReturnReason, &o.ReturnRequestedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrderItem(row scanner) (model.OrderItem, error) {
	var i model.OrderItem
	err := row.Scan(
		&i.ID, &i.OrderID, &i.ProductID, &i.ProductName, &i.Size, &i.Quantity, &i.Price, &i.OfferID, &i.OfferDiscount,
		&i.TotalPrice, &i.FinalUnitPrice, &i.CouponShare, &i.TaxShare,
		&i.IsCancelled, &i.CancellationReason, &i.CancelledAt,
		&i.IsReturned, &i.ReturnStatus, &i.ReturnReason, &i.ReturnRequestedAt, &i.ReturnVerifiedAt, &i.ReturnNotes,
	)
	return i, err
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.OrderNumber, order.UserID, order.PaymentMethod, order.Status, order.CheckoutState,
		order.ItemsPrice, order.OfferDiscount, order.CouponDiscount, order.DiscountAmount,
		order.TaxPrice, order.ShippingPrice, order.TotalPrice,
		order.IsPaid, order.PaidAt, order.PaymentReference, order.CouponID, order.CouponCode,
		order.CouponMinPurchase, order.RefundToWallet,
		order.IsDelivered, order.DeliveredAt, order.CancellationDate, order.CancellationReason,
		order.ReturnStatus, order.ReturnReason, order.ReturnRequestedAt, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (
			id, order_id, product_id, product_name, size, quantity, price, offer_id, offer_discount,
			total_price, final_unit_price, coupon_share, tax_share, position
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	batch := &pgx.Batch{}
	for pos, item := range items {
		batch.Queue(query,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.Size, item.Quantity,
			item.Price, item.OfferID, item.OfferDiscount,
			item.TotalPrice, item.FinalUnitPrice, item.CouponShare, item.TaxShare, pos,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.get(ctx, r.pool, id, false)
}

// GetForUpdate retrieves an order with its items and locks the order row.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	return r.get(ctx, tx, id, true)
}

func (r *orderRepository) get(ctx context.Context, q querier, id uuid.UUID, lock bool) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	order, err := scanOrder(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if order.Items, err = r.items(ctx, q, id); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) items(ctx context.Context, q querier, orderID uuid.UUID) ([]model.OrderItem, error) {
	rows, err := q.Query(ctx, `SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1 ORDER BY position, id`, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// UpdateOrder writes back every mutable order field.
func (r *orderRepository) UpdateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders SET
			status = $2, checkout_state = $3,
			items_price = $4, offer_discount = $5, coupon_discount = $6, discount_amount = $7,
			tax_price = $8, shipping_price = $9, total_price = $10,
			is_paid = $11, paid_at = $12, payment_reference = $13,
			coupon_id = $14, coupon_code = $15, refund_to_wallet = $16,
			is_delivered = $17, delivered_at = $18, cancellation_date = $19, cancellation_reason = $20,
			return_request_status = $21, return_reason = $22, return_requested_at = $23,
			updated_at = $24
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		order.ID, order.Status, order.CheckoutState,
		order.ItemsPrice, order.OfferDiscount, order.CouponDiscount, order.DiscountAmount,
		order.TaxPrice, order.ShippingPrice, order.TotalPrice,
		order.IsPaid, order.PaidAt, order.PaymentReference,
		order.CouponID, order.CouponCode, order.RefundToWallet,
		order.IsDelivered, order.DeliveredAt, order.CancellationDate, order.CancellationReason,
		order.ReturnStatus, order.ReturnReason, order.ReturnRequestedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

// UpdateOrderItems writes back every mutable field of the given items.
func (r *orderRepository) UpdateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		UPDATE order_items SET
			final_unit_price = $2, coupon_share = $3, tax_share = $4,
			is_cancelled = $5, cancellation_reason = $6, cancelled_at = $7,
			is_returned = $8, return_request_status = $9, return_reason = $10,
			return_requested_at = $11, return_verified_at = $12, return_notes = $13
		WHERE id = $1
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID, item.FinalUnitPrice, item.CouponShare, item.TaxShare,
			item.IsCancelled, item.CancellationReason, item.CancelledAt,
			item.IsReturned, item.ReturnStatus, item.ReturnReason,
			item.ReturnRequestedAt, item.ReturnVerifiedAt, item.ReturnNotes,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("item_id", items[i].ID.String()).
				Msg("failed to update order item")
			return fmt.Errorf("failed to update order item: %w", err)
		}
	}

	return nil
}

// DeleteOrder removes an order and its items.
func (r *orderRepository) DeleteOrder(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	r.logger.Info().Str("order_id", id.String()).Msg("order deleted")
	return nil
}

// FindPendingGatewayOrder retrieves the user's pending, unpaid RAZORPAY order, if any.
func (r *orderRepository) FindPendingGatewayOrder(ctx context.Context, userID uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1 AND payment_method = $2 AND status = $3 AND is_paid = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, userID, model.PaymentRazorpay, model.StatusPending))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query pending gateway order")
		return nil, fmt.Errorf("failed to query pending gateway order: %w", err)
	}

	if order.Items, err = r.items(ctx, r.pool, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

// ListStaleCheckouts retrieves orders still in stock_reserved that were created before the cutoff.
func (r *orderRepository) ListStaleCheckouts(ctx context.Context, before time.Time, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE checkout_state = $1 AND created_at < $2
		ORDER BY created_at
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, model.CheckoutStockReserved, before, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query stale checkouts")
		return nil, fmt.Errorf("failed to query stale checkouts: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}
