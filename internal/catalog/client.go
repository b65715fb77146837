// Package catalog fetches the product listing from the backend and serves it
// through a Redis read-through cache.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/levelup-gamer/storefront/internal/domain"
)

// categoryNames maps backend category ids to display names. The mapping is
// fixed in the storefront, not served by the backend.
var categoryNames = map[int64]string{
	1: "Juegos de Mesa",
	2: "Accesorios",
	3: "Consolas",
	4: "Computadores Gamers",
	5: "Sillas Gamers",
	6: "Mouse",
	7: "Mousepad",
	8: "Poleras Personalizadas",
	9: "Polerones Gamers Personalizados",
}

const placeholderImage = "https://via.placeholder.com/400"

// backendProduct is the wire shape the backend serves.
type backendProduct struct {
	ID         int64  `json:"id"`
	Name       string `json:"nombre"`
	Price      int64  `json:"precio"`
	Stock      int    `json:"stock"`
	Image      string `json:"imagen"`
	CategoryID int64  `json:"categoriaId"`
}

func (p backendProduct) toProduct() domain.Product {
	category, ok := categoryNames[p.CategoryID]
	if !ok {
		category = "Sin categoría"
	}
	image := p.Image
	if image == "" {
		image = placeholderImage
	}
	return domain.Product{
		ID:       fmt.Sprintf("%d", p.ID),
		Name:     p.Name,
		Category: category,
		Price:    p.Price,
		Image:    image,
		Stock:    p.Stock,
	}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// List fetches the whole catalog.
func (c *Client) List(ctx context.Context) ([]domain.Product, error) {
	return c.fetch(ctx, "/api/productos")
}

// ListByCategory fetches one backend category.
func (c *Client) ListByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	return c.fetch(ctx, fmt.Sprintf("/api/productos/categoria/%d", categoryID))
}

func (c *Client) fetch(ctx context.Context, path string) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog request failed: status %d", resp.StatusCode)
	}

	var backend []backendProduct
	if errDecode := json.NewDecoder(resp.Body).Decode(&backend); errDecode != nil {
		return nil, fmt.Errorf("malformed catalog response: %w", errDecode)
	}

	products := make([]domain.Product, 0, len(backend))
	for _, p := range backend {
		products = append(products, p.toProduct())
	}
	return products, nil
}
