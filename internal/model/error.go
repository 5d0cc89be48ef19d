package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON    = "INVALID_JSON"
	ErrCodeValidation     = "VALIDATION_FAILED"
	ErrCodeUnauthorised   = "UNAUTHORIZED"
	ErrCodeForbidden      = "FORBIDDEN"
	ErrCodeInternalError  = "INTERNAL_ERROR"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInvalidRequest = "INVALID_REQUEST"

	// Catalog and cart
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeProductUnavailable  = "PRODUCT_UNAVAILABLE"
	ErrCodeVariantNotFound     = "VARIANT_NOT_FOUND"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodeInvalidPayment      = "INVALID_PAYMENT_METHOD"
	ErrCodeCODLimitExceeded    = "COD_LIMIT_EXCEEDED"
	ErrCodeCouponNotFound      = "COUPON_NOT_FOUND"
	ErrCodeCouponInactive      = "COUPON_INACTIVE"
	ErrCodeCouponExpired       = "COUPON_EXPIRED"
	ErrCodeCouponNotStarted    = "COUPON_NOT_YET_ACTIVE"
	ErrCodeCouponUsageExceeded = "COUPON_USAGE_LIMIT_REACHED"
	ErrCodeCouponAlreadyUsed   = "COUPON_ALREADY_USED"
	ErrCodeCouponMinPurchase   = "COUPON_BELOW_MINIMUM"
	ErrCodeInvalidCoupon       = "INVALID_COUPON"

	// Orders
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeOrderItemNotFound   = "ORDER_ITEM_NOT_FOUND"
	ErrCodeInvalidTransition   = "INVALID_STATUS_TRANSITION"
	ErrCodeItemNotCancellable  = "ITEM_NOT_CANCELLABLE"
	ErrCodeReturnNotAllowed    = "RETURN_NOT_ALLOWED"
	ErrCodeReturnWindowClosed  = "RETURN_WINDOW_CLOSED"
	ErrCodeReturnNotPending    = "RETURN_NOT_PENDING"
	ErrCodePaymentNotPending   = "PAYMENT_NOT_PENDING"
	ErrCodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
)

// DomainError is a business-level failure that is safe to surface to callers.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrProductUnavailable = NewDomainError(ErrCodeProductUnavailable, "One or more products are no longer available")
	ErrVariantNotFound    = NewDomainError(ErrCodeVariantNotFound, "Selected size is not available for this product")
	ErrInsufficientStock  = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock for one or more items")
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrInvalidPayment     = NewDomainError(ErrCodeInvalidPayment, "Payment method must be COD, RAZORPAY or WALLET")
	ErrCODLimitExceeded   = NewDomainError(ErrCodeCODLimitExceeded, "Cash on delivery is not available for orders above the limit")

	ErrCouponNotFound      = NewDomainError(ErrCodeCouponNotFound, "Coupon not found")
	ErrCouponInactive      = NewDomainError(ErrCodeCouponInactive, "Coupon is not active")
	ErrCouponExpired       = NewDomainError(ErrCodeCouponExpired, "Coupon has expired")
	ErrCouponNotStarted    = NewDomainError(ErrCodeCouponNotStarted, "Coupon is not active yet")
	ErrCouponUsageExceeded = NewDomainError(ErrCodeCouponUsageExceeded, "Coupon usage limit has been reached")
	ErrCouponAlreadyUsed   = NewDomainError(ErrCodeCouponAlreadyUsed, "Coupon has already been used by this user")
	ErrCouponMinPurchase   = NewDomainError(ErrCodeCouponMinPurchase, "Order subtotal is below the coupon minimum purchase amount")

	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrOrderItemNotFound   = NewDomainError(ErrCodeOrderItemNotFound, "Order item not found")
	ErrInvalidTransition   = NewDomainError(ErrCodeInvalidTransition, "Order status transition is not allowed")
	ErrItemNotCancellable  = NewDomainError(ErrCodeItemNotCancellable, "Order item cannot be cancelled")
	ErrReturnNotAllowed    = NewDomainError(ErrCodeReturnNotAllowed, "Return is not allowed for this order or item")
	ErrReturnWindowClosed  = NewDomainError(ErrCodeReturnWindowClosed, "Return window has closed")
	ErrReturnNotPending    = NewDomainError(ErrCodeReturnNotPending, "No pending return request for this item")
	ErrPaymentNotPending   = NewDomainError(ErrCodePaymentNotPending, "Order is not awaiting payment")
	ErrForbidden           = NewDomainError(ErrCodeForbidden, "Access to this resource is forbidden")
	ErrInsufficientBalance = NewDomainError(ErrCodeInsufficientBalance, "Insufficient wallet balance")
	ErrInvalidAmount       = NewDomainError(ErrCodeInvalidAmount, "Amount must be greater than zero")
)
