package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/lifecycle"
	"github.com/rabi-77/ecommerce-sub000/internal/middleware"
	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.PricedProduct, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PricedProduct), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.PricedProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PricedProduct), args.Error(1)
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Quote(ctx context.Context, userID uuid.UUID, req *model.QuoteRequest) (*model.Quote, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quote), args.Error(1)
}

func (m *MockCheckoutService) Checkout(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.Order, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockCheckoutService) ConfirmPayment(ctx context.Context, orderID uuid.UUID, conf *model.PaymentConfirmation) (*model.Order, error) {
	args := m.Called(ctx, orderID, conf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockCheckoutService) ReconcileCheckouts(ctx context.Context, olderThan time.Duration) (*model.ReconcileResult, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReconcileResult), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*model.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	return m.order(m.Called(ctx, orderID, userID))
}

func (m *MockOrderService) TransitionStatus(ctx context.Context, orderID uuid.UUID, actor lifecycle.Actor, userID uuid.UUID, req *model.StatusUpdateRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, orderID, actor, userID, req))
}

func (m *MockOrderService) CancelOrder(ctx context.Context, orderID uuid.UUID, actor lifecycle.Actor, userID uuid.UUID, reason string) (*model.Order, error) {
	return m.order(m.Called(ctx, orderID, actor, userID, reason))
}

func (m *MockOrderService) CancelOrderItem(ctx context.Context, orderID, itemID, userID uuid.UUID, reason string) (*model.Order, error) {
	return m.order(m.Called(ctx, orderID, itemID, userID, reason))
}

func (m *MockOrderService) RequestReturn(ctx context.Context, orderID, userID uuid.UUID, req *model.ReturnRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, orderID, userID, req))
}

func (m *MockOrderService) VerifyReturn(ctx context.Context, orderID, itemID uuid.UUID, req *model.VerifyReturnRequest) (*model.Order, error) {
	return m.order(m.Called(ctx, orderID, itemID, req))
}

// MockWalletService is a mock implementation of WalletService.
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, entry model.WalletEntry) (*model.WalletTransaction, error) {
	args := m.Called(ctx, userID, amount, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletTransaction), args.Error(1)
}

func (m *MockWalletService) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, entry model.WalletEntry) (*model.WalletTransaction, error) {
	args := m.Called(ctx, userID, amount, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletTransaction), args.Error(1)
}

func (m *MockWalletService) GetWallet(ctx context.Context, userID uuid.UUID, page, limit int) (*model.WalletPage, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WalletPage), args.Error(1)
}

// call describes one request routed through a chi pattern.
type call struct {
	method  string
	pattern string
	path    string
	body    interface{}
	userID  uuid.UUID
}

// serve routes the request through chi so URL params resolve, with userID
// placed on the context when set.
func serve(t *testing.T, c call, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	var body []byte
	switch b := c.body.(type) {
	case nil:
	case string:
		body = []byte(b)
	default:
		var err error
		body, err = json.Marshal(b)
		require.NoError(t, err)
	}

	r := chi.NewRouter()
	r.MethodFunc(c.method, c.pattern, h)

	req := httptest.NewRequest(c.method, c.path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if c.userID != uuid.Nil {
		req = req.WithContext(middleware.WithUserID(req.Context(), c.userID))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
