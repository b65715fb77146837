package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/levelup-gamer/storefront/internal/checkout"
)

type CheckoutHandler struct {
	coordinator *checkout.Coordinator
	logger      *zap.Logger
}

func NewCheckoutHandler(coordinator *checkout.Coordinator, logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{coordinator: coordinator, logger: logger}
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	result, err := h.coordinator.Checkout(r.Context(), sessionID(r))
	if errors.Is(err, checkout.ErrClearFailed) {
		// The sale went through; the stale cart is a local problem the
		// next mutation or a retryable clear will fix.
		h.logger.Warn("cart clear failed after confirmed sale",
			zap.String("session_id", sessionID(r)), zap.Error(err))
		respondJSON(w, http.StatusCreated, result)
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}
