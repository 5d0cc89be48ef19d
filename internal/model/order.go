package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how an order is paid for.
type PaymentMethod string

const (
	PaymentCOD      PaymentMethod = "COD"
	PaymentRazorpay PaymentMethod = "RAZORPAY"
	PaymentWallet   PaymentMethod = "WALLET"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentRazorpay, PaymentWallet:
		return true
	}
	return false
}

// OrderStatus is the lifecycle status of an order.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusProcessing     OrderStatus = "processing"
	StatusShipped        OrderStatus = "shipped"
	StatusOutForDelivery OrderStatus = "out for delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
	StatusReturned       OrderStatus = "returned"
	StatusPaymentFailed  OrderStatus = "payment_failed"
)

// ReturnStatus tracks a return request on an order or an item.
type ReturnStatus string

const (
	ReturnNone           ReturnStatus = ""
	ReturnPending        ReturnStatus = "pending"
	ReturnApproved       ReturnStatus = "approved"
	ReturnRejected       ReturnStatus = "rejected"
	ReturnPartialPending ReturnStatus = "partial-pending"
)

// CheckoutState records how far the checkout sequence got for an order.
type CheckoutState string

const (
	CheckoutStockReserved CheckoutState = "stock_reserved"
	CheckoutCompleted     CheckoutState = "completed"
	CheckoutCompensated   CheckoutState = "compensated"
)

// Aggregates are the order-level money figures.
// TotalPrice always equals ItemsPrice - DiscountAmount + TaxPrice + ShippingPrice.
type Aggregates struct {
	ItemsPrice     decimal.Decimal `json:"itemsPrice" db:"items_price"`
	OfferDiscount  decimal.Decimal `json:"offerDiscount" db:"offer_discount"`
	CouponDiscount decimal.Decimal `json:"couponDiscount" db:"coupon_discount"`
	DiscountAmount decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	TaxPrice       decimal.Decimal `json:"taxPrice" db:"tax_price"`
	ShippingPrice  decimal.Decimal `json:"shippingPrice" db:"shipping_price"`
	TotalPrice     decimal.Decimal `json:"totalPrice" db:"total_price"`
}

// Order represents a customer order.
type Order struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	OrderNumber   string        `json:"orderNumber" db:"order_number"`
	UserID        uuid.UUID     `json:"userId" db:"user_id"`
	PaymentMethod PaymentMethod `json:"paymentMethod" db:"payment_method"`
	Status        OrderStatus   `json:"status" db:"status"`
	CheckoutState CheckoutState `json:"checkoutState" db:"checkout_state"`
	Aggregates

	IsPaid           bool       `json:"isPaid" db:"is_paid"`
	PaidAt           *time.Time `json:"paidAt,omitempty" db:"paid_at"`
	PaymentReference *string    `json:"paymentReference,omitempty" db:"payment_reference"`

	CouponID          *uuid.UUID      `json:"couponId,omitempty" db:"coupon_id"`
	CouponCode        *string         `json:"couponCode,omitempty" db:"coupon_code"`
	CouponMinPurchase decimal.Decimal `json:"-" db:"coupon_min_purchase"`

	RefundToWallet decimal.Decimal `json:"refundToWallet" db:"refund_to_wallet"`

	IsDelivered        bool         `json:"isDelivered" db:"is_delivered"`
	DeliveredAt        *time.Time   `json:"deliveredAt,omitempty" db:"delivered_at"`
	CancellationDate   *time.Time   `json:"cancellationDate,omitempty" db:"cancellation_date"`
	CancellationReason *string      `json:"cancellationReason,omitempty" db:"cancellation_reason"`
	ReturnStatus       ReturnStatus `json:"returnRequestStatus" db:"return_request_status"`
	ReturnReason       *string      `json:"returnReason,omitempty" db:"return_reason"`
	ReturnRequestedAt  *time.Time   `json:"returnRequestedAt,omitempty" db:"return_requested_at"`

	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

// Item returns a pointer to the item with the given id.
func (o *Order) Item(id uuid.UUID) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i]
		}
	}
	return nil
}

// HasActiveItems reports whether any item is neither cancelled nor returned.
func (o *Order) HasActiveItems() bool {
	for i := range o.Items {
		if o.Items[i].Active() {
			return true
		}
	}
	return false
}

// RefundsToWallet reports whether money taken for this order goes back to the wallet
// when items are cancelled or returned.
func (o *Order) RefundsToWallet() bool {
	if o.PaymentMethod == PaymentCOD {
		return o.IsPaid && o.IsDelivered
	}
	return o.IsPaid
}

// OrderItem represents a line item in an order.
// Price, OfferDiscount, TotalPrice and FinalUnitPrice are per unit.
// CouponShare and TaxShare are for the whole line.
type OrderItem struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OrderID        uuid.UUID       `json:"-" db:"order_id"`
	ProductID      uuid.UUID       `json:"productId" db:"product_id"`
	ProductName    string          `json:"productName" db:"product_name"`
	Size           string          `json:"size" db:"size"`
	Quantity       int             `json:"quantity" db:"quantity"`
	Price          decimal.Decimal `json:"price" db:"price"`
	OfferID        *uuid.UUID      `json:"offerId,omitempty" db:"offer_id"`
	OfferDiscount  decimal.Decimal `json:"offerDiscount" db:"offer_discount"`
	TotalPrice     decimal.Decimal `json:"totalPrice" db:"total_price"`
	FinalUnitPrice decimal.Decimal `json:"finalUnitPrice" db:"final_unit_price"`
	CouponShare    decimal.Decimal `json:"couponShare" db:"coupon_share"`
	TaxShare       decimal.Decimal `json:"taxShare" db:"tax_share"`

	IsCancelled        bool       `json:"isCancelled" db:"is_cancelled"`
	CancellationReason *string    `json:"cancellationReason,omitempty" db:"cancellation_reason"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty" db:"cancelled_at"`

	IsReturned        bool         `json:"isReturned" db:"is_returned"`
	ReturnStatus      ReturnStatus `json:"returnRequestStatus" db:"return_request_status"`
	ReturnReason      *string      `json:"returnReason,omitempty" db:"return_reason"`
	ReturnRequestedAt *time.Time   `json:"returnRequestedAt,omitempty" db:"return_requested_at"`
	ReturnVerifiedAt  *time.Time   `json:"returnVerifiedAt,omitempty" db:"return_verified_at"`
	ReturnNotes       *string      `json:"returnNotes,omitempty" db:"return_notes"`
}

// Active reports whether the item still counts towards the order totals.
func (i *OrderItem) Active() bool {
	return !i.IsCancelled && !i.IsReturned
}

// LineOriginal is the pre-discount value of the line.
func (i *OrderItem) LineOriginal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// LineAfterOffer is the line value after the offer and before the coupon.
func (i *OrderItem) LineAfterOffer() decimal.Decimal {
	return i.TotalPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CheckoutRequest is the payload for placing an order from the cart.
type CheckoutRequest struct {
	CouponCode    *string       `json:"couponCode,omitempty" validate:"omitempty,max=32"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required,oneof=COD RAZORPAY WALLET"`
}

// QuoteRequest is the payload for pricing the cart without placing an order.
type QuoteRequest struct {
	CouponCode    *string       `json:"couponCode,omitempty" validate:"omitempty,max=32"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty" validate:"omitempty,oneof=COD RAZORPAY WALLET"`
}

// Quote is a priced preview of the cart.
type Quote struct {
	Aggregates
	CouponCode   *string     `json:"couponCode,omitempty"`
	Items        []OrderItem `json:"items"`
	CODAvailable bool        `json:"codAvailable"`
}

// CancelRequest carries an optional cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// ReturnRequest asks to return one item, or every eligible item when ItemID is nil.
type ReturnRequest struct {
	ItemID *uuid.UUID `json:"itemId,omitempty"`
	Reason string     `json:"reason" validate:"required,max=500"`
}

// VerifyReturnRequest is an administrator's decision on a pending item return.
type VerifyReturnRequest struct {
	Approved *bool  `json:"approved" validate:"required"`
	Notes    string `json:"notes" validate:"max=500"`
}

// StatusUpdateRequest moves an order to a new status.
type StatusUpdateRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
	Reason string      `json:"reason,omitempty" validate:"max=500"`
}

// PaymentConfirmation is the payment gateway's verdict on an order.
type PaymentConfirmation struct {
	Paid      *bool  `json:"paid" validate:"required"`
	Reference string `json:"reference" validate:"max=128"`
}

// ReconcileResult summarises a reconciliation pass over stuck checkouts.
type ReconcileResult struct {
	Scanned     int `json:"scanned"`
	Completed   int `json:"completed"`
	Compensated int `json:"compensated"`
	Failed      int `json:"failed"`
}
