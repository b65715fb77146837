package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/levelup-gamer/storefront/internal/cart"
	"github.com/levelup-gamer/storefront/internal/checkout"
	"github.com/levelup-gamer/storefront/internal/sales"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, code, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Details: details,
	})
}

// respondDomainError translates core and collaborator errors to HTTP. The
// upstream taxonomy maps onto gateway-style statuses so the UI can
// distinguish "you did something wrong" from "the backend is down".
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in before checking out")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "the cart has no items")
	case errors.Is(err, checkout.ErrInvalidProductID):
		respondError(w, http.StatusBadRequest, "invalid_product_id", err.Error())
	case errors.Is(err, cart.ErrPersistFailed):
		respondError(w, http.StatusInternalServerError, "persist_failed", err.Error())
	default:
		var apiErr *sales.APIError
		if errors.As(err, &apiErr) {
			respondSalesError(w, apiErr)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func respondSalesError(w http.ResponseWriter, apiErr *sales.APIError) {
	switch apiErr.Kind {
	case sales.KindInvalidRequest:
		respondError(w, http.StatusBadRequest, string(apiErr.Kind), apiErr.Body)
	case sales.KindUnauthenticated:
		respondError(w, http.StatusUnauthorized, string(apiErr.Kind), apiErr.Body)
	case sales.KindNotFound:
		respondError(w, http.StatusNotFound, string(apiErr.Kind), apiErr.Body)
	case sales.KindNetwork:
		respondError(w, http.StatusGatewayTimeout, string(apiErr.Kind), apiErr.Error())
	default:
		respondError(w, http.StatusBadGateway, string(apiErr.Kind), apiErr.Error())
	}
}
