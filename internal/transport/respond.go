package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront-be/internal/auth"
	"storefront-be/internal/buyer"
	"storefront-be/internal/logger"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/product"

	"go.uber.org/zap"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// respondError maps domain errors onto HTTP statuses. Unknown errors become
// an opaque 500 so internals never leak to clients.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, buyer.ErrBuyerNotFound),
		errors.Is(err, payment.ErrPaymentNotFound),
		errors.Is(err, payment.ErrRemoteOrderNotFound):
		status, msg = http.StatusNotFound, err.Error()

	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, payment.ErrNotCapturable),
		errors.Is(err, buyer.ErrEmailTaken):
		status, msg = http.StatusConflict, err.Error()

	case errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidDiscount):
		status, msg = http.StatusBadRequest, err.Error()

	case errors.Is(err, order.ErrUnauthorized):
		status, msg = http.StatusForbidden, err.Error()

	case errors.Is(err, buyer.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, err.Error()

	case errors.Is(err, payment.ErrCaptureFailed):
		status, msg = http.StatusPaymentRequired, err.Error()

	case errors.Is(err, payment.ErrGatewayUnavailable):
		status, msg = http.StatusServiceUnavailable, err.Error()
	}

	if status == http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	respondJSON(w, status, errorBody{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return false
	}
	return true
}
