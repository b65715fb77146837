package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/levelup-gamer/storefront/internal/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Service
}

func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: svc}
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Products(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_category", "category id must be numeric")
		return
	}

	products, errList := h.catalog.ProductsByCategory(r.Context(), categoryID)
	if errList != nil {
		respondError(w, http.StatusBadGateway, "catalog_unavailable", errList.Error())
		return
	}
	respondJSON(w, http.StatusOK, products)
}
