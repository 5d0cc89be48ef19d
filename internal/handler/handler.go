package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rabi-77/ecommerce-sub000/internal/middleware"
	"github.com/rabi-77/ecommerce-sub000/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var validate = validator.New()

// statusByCode maps domain error codes to HTTP statuses. Codes not listed
// are business rule rejections and map to 422.
var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:     http.StatusBadRequest,
	model.ErrCodeValidation:      http.StatusBadRequest,
	model.ErrCodeInvalidRequest:  http.StatusBadRequest,
	model.ErrCodeInvalidQuantity: http.StatusBadRequest,
	model.ErrCodeInvalidPayment:  http.StatusBadRequest,
	model.ErrCodeInvalidAmount:   http.StatusBadRequest,

	model.ErrCodeUnauthorised: http.StatusUnauthorized,
	model.ErrCodeForbidden:    http.StatusForbidden,

	model.ErrCodeNotFound:          http.StatusNotFound,
	model.ErrCodeProductNotFound:   http.StatusNotFound,
	model.ErrCodeVariantNotFound:   http.StatusNotFound,
	model.ErrCodeCouponNotFound:    http.StatusNotFound,
	model.ErrCodeOrderNotFound:     http.StatusNotFound,
	model.ErrCodeOrderItemNotFound: http.StatusNotFound,

	model.ErrCodeInsufficientStock:   http.StatusConflict,
	model.ErrCodeInsufficientBalance: http.StatusConflict,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps a service error to its HTTP response.
// Errors that are not domain errors are reported as a generic 500.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if !errors.As(err, &de) {
		logger.Error().Err(err).Msg("unexpected service error")
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
		return
	}

	status, ok := statusByCode[de.Code]
	if !ok {
		status = http.StatusUnprocessableEntity
	}
	writeError(w, status, de.Code, err.Error(), logger)
}

// decodeBody decodes a JSON body into dst and runs its validation tags.
// It writes the error response itself and reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, err.Error(), logger)
		return false
	}
	return true
}

// pathUUID parses a UUID path parameter.
func pathUUID(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "invalid "+name+" format", logger)
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated customer id.
func currentUser(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", logger)
		return uuid.Nil, false
	}
	return userID, true
}
