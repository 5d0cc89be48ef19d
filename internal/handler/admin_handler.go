package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rabi-77/ecommerce-sub000/internal/lifecycle"
	"github.com/rabi-77/ecommerce-sub000/internal/model"
	"github.com/rabi-77/ecommerce-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AdminHandler handles back-office requests: payment callbacks, status moves,
// return verification, manual wallet credits and checkout reconciliation.
type AdminHandler struct {
	checkout       service.CheckoutService
	orders         service.OrderService
	wallets        service.WalletService
	reconcileAfter time.Duration
	logger         zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	checkout service.CheckoutService,
	orders service.OrderService,
	wallets service.WalletService,
	reconcileAfter time.Duration,
	logger zerolog.Logger,
) *AdminHandler {
	return &AdminHandler{
		checkout:       checkout,
		orders:         orders,
		wallets:        wallets,
		reconcileAfter: reconcileAfter,
		logger:         logger.With().Str("handler", "admin").Logger(),
	}
}

// ConfirmPayment handles POST /api/admin/orders/{id}/payment requests.
func (h *AdminHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.PaymentConfirmation
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	order, err := h.checkout.ConfirmPayment(r.Context(), orderID, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/admin/orders/{id}/status requests.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.StatusUpdateRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	order, err := h.orders.TransitionStatus(r.Context(), orderID, lifecycle.ActorAdmin, uuid.Nil, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// VerifyReturn handles POST /api/admin/orders/{id}/items/{itemId}/return-verification requests.
func (h *AdminHandler) VerifyReturn(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemId", h.logger)
	if !ok {
		return
	}

	var req model.VerifyReturnRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	order, err := h.orders.VerifyReturn(r.Context(), orderID, itemID, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// CreditWallet handles POST /api/admin/wallets/{userId}/credit requests.
func (h *AdminHandler) CreditWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userId", h.logger)
	if !ok {
		return
	}

	var req model.CreditRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidAmount, "amount must be positive", h.logger)
		return
	}

	txn, err := h.wallets.Credit(r.Context(), userID, req.Amount, model.WalletEntry{
		Source:      model.SourceAdjustment,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, txn)
}

// Reconcile handles POST /api/admin/checkouts/reconcile requests.
// The optional older_than query parameter overrides the configured age.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	olderThan := h.reconcileAfter
	if raw := r.URL.Query().Get("older_than"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest,
				fmt.Sprintf("invalid older_than parameter: %q", raw), h.logger)
			return
		}
		olderThan = d
	}

	result, err := h.checkout.ReconcileCheckouts(r.Context(), olderThan)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
