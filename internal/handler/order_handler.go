package handler

import (
	"net/http"

	"github.com/rabi-77/ecommerce-sub000/internal/lifecycle"
	"github.com/rabi-77/ecommerce-sub000/internal/model"
	"github.com/rabi-77/ecommerce-sub000/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles customer order requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID, userID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/orders/{id}/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.CancelRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.CancelOrder(r.Context(), orderID, lifecycle.ActorCustomer, userID, req.Reason)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// CancelItem handles POST /api/orders/{id}/items/{itemId}/cancel requests.
func (h *OrderHandler) CancelItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemId", h.logger)
	if !ok {
		return
	}

	var req model.CancelRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.CancelOrderItem(r.Context(), orderID, itemID, userID, req.Reason)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// RequestReturn handles POST /api/orders/{id}/returns requests.
func (h *OrderHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.ReturnRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.RequestReturn(r.Context(), orderID, userID, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
