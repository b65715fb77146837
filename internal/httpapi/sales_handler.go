package httpapi

import (
	"context"
	"net/http"

	"github.com/levelup-gamer/storefront/internal/auth"
	"github.com/levelup-gamer/storefront/internal/domain"
)

// SaleLister is the read side of the sales API.
type SaleLister interface {
	ListMine(ctx context.Context, token string) ([]domain.SaleResult, error)
	ListAll(ctx context.Context, token string) ([]domain.SaleResult, error)
}

type SalesHandler struct {
	sales  SaleLister
	keeper *auth.Keeper
}

func NewSalesHandler(sales SaleLister, keeper *auth.Keeper) *SalesHandler {
	return &SalesHandler{sales: sales, keeper: keeper}
}

// ListMine serves the signed-in user's purchase history.
func (h *SalesHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	token, ok := h.keeper.Token(r.Context(), sessionID(r))
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in to see your purchases")
		return
	}

	result, err := h.sales.ListMine(r.Context(), token)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ListAll serves every sale for the admin view. The session must carry the
// admin role; the backend enforces it again on its side.
func (h *SalesHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.keeper.Claims(r.Context(), sessionID(r))
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in first")
		return
	}
	if !claims.HasRole(auth.AdminRole) {
		respondError(w, http.StatusForbidden, "forbidden", "admins only")
		return
	}

	token, _ := h.keeper.Token(r.Context(), sessionID(r))
	result, err := h.sales.ListAll(r.Context(), token)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
