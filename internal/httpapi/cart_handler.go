package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/levelup-gamer/storefront/internal/cart"
	"github.com/levelup-gamer/storefront/internal/domain"
	"github.com/levelup-gamer/storefront/internal/money"
)

type CartHandler struct {
	carts *cart.Service
}

func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Image     string `json:"image"`
	Price     int64  `json:"price"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Items   []domain.CartItem  `json:"items"`
	Summary domain.CartSummary `json:"summary"`
	Count   int                `json:"count"`
}

type summaryResponse struct {
	domain.CartSummary
	SubtotalDisplay string `json:"subtotalDisplay"`
	TaxDisplay      string `json:"ivaDisplay"`
	TotalDisplay    string `json:"totalDisplay"`
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	items, err := h.carts.Get(r.Context(), sessionID(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartResponse{
		Items:   items,
		Summary: domain.Summarize(items),
		Count:   domain.ItemCount(items),
	})
}

func (h *CartHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.carts.Summary(r.Context(), sessionID(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summaryResponse{
		CartSummary:     summary,
		SubtotalDisplay: money.Format(summary.Subtotal),
		TaxDisplay:      money.Format(summary.Tax),
		TotalDisplay:    money.Format(summary.Total),
	})
}

// Count serves the badge number.
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.carts.ItemCount(r.Context(), sessionID(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must not be negative")
		return
	}

	err := h.carts.Add(r.Context(), sessionID(r), domain.CartItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		Category:  req.Category,
		Image:     req.Image,
		Price:     req.Price,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondCart(w, r, http.StatusCreated)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	productID := chi.URLParam(r, "productID")
	if err := h.carts.UpdateQuantity(r.Context(), sessionID(r), productID, req.Quantity); err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if err := h.carts.Remove(r.Context(), sessionID(r), productID); err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), sessionID(r)); err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, status int) {
	items, err := h.carts.Get(r.Context(), sessionID(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, status, cartResponse{
		Items:   items,
		Summary: domain.Summarize(items),
		Count:   domain.ItemCount(items),
	})
}
