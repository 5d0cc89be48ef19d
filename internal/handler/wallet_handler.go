package handler

import (
	"net/http"

	"github.com/rabi-77/ecommerce-sub000/internal/service"

	"github.com/rs/zerolog"
)

// WalletHandler handles customer wallet requests.
type WalletHandler struct {
	service service.WalletService
	logger  zerolog.Logger
}

// NewWalletHandler creates a new wallet handler.
func NewWalletHandler(service service.WalletService, logger zerolog.Logger) *WalletHandler {
	return &WalletHandler{
		service: service,
		logger:  logger.With().Str("handler", "wallet").Logger(),
	}
}

// Get handles GET /api/wallet requests with page and limit parameters.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	page, ok := queryInt(w, r, "page", 1, h.logger)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 10, h.logger)
	if !ok {
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), userID, page, limit)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, wallet)
}
