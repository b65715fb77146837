package domain

// Product is the storefront view of a catalog product.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       int64  `json:"price"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Stock       int    `json:"stock"`
}
