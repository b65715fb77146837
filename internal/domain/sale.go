package domain

import "time"

// SaleItem references a catalog product by its backend numeric id.
type SaleItem struct {
	ProductID int64 `json:"productoId"`
	Quantity  int   `json:"cantidad"`
}

// SaleRequest is the payload submitted to the sales API. The idempotency key
// lets the backend deduplicate a resubmission of the same checkout.
type SaleRequest struct {
	Items          []SaleItem `json:"items"`
	Total          int64      `json:"total"`
	IdempotencyKey string     `json:"idempotencyKey,omitempty"`
}

// SaleProduct is the product snapshot the backend returns per detail line.
type SaleProduct struct {
	ID           int64  `json:"id"`
	Name         string `json:"nombre"`
	CategoryID   int64  `json:"categoriaId"`
	CategoryName string `json:"categoriaNombre"`
}

type SaleDetail struct {
	ID        int64       `json:"id"`
	Product   SaleProduct `json:"producto"`
	Quantity  int         `json:"cantidad"`
	UnitPrice int64       `json:"precioUnitario"`
	Subtotal  int64       `json:"subtotal"`
}

// SaleResult is the server-confirmed sale.
type SaleResult struct {
	ID      int64        `json:"id"`
	Date    time.Time    `json:"fechaVenta"`
	Total   int64        `json:"total"`
	Details []SaleDetail `json:"detalles"`
}
