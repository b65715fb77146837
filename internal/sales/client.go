// Package sales talks to the remote sales API over HTTP/JSON. It is the sale
// submission collaborator of the checkout coordinator: it maps transport and
// status failures onto a small error taxonomy and interprets nothing else.
package sales

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/levelup-gamer/storefront/internal/domain"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[json.RawMessage]
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:    "sales-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Client-side faults do not indicate a backend outage; only
		// server and transport failures count against the breaker.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return !IsKind(err, KindServer) && !IsKind(err, KindNetwork)
		},
	})
	return c
}

type Option func(*Client)

// WithHTTPClient overrides the transport, mostly for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// Create submits a completed cart as a sale and returns the confirmed sale.
func (c *Client) Create(ctx context.Context, req *domain.SaleRequest, token string) (*domain.SaleResult, error) {
	var result domain.SaleResult
	if err := c.call(ctx, http.MethodPost, "/api/ventas", token, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListMine fetches the authenticated user's purchase history.
func (c *Client) ListMine(ctx context.Context, token string) ([]domain.SaleResult, error) {
	var result []domain.SaleResult
	if err := c.call(ctx, http.MethodGet, "/api/ventas/mis-ventas", token, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAll fetches every sale. Admin only; the backend enforces the role.
func (c *Client) ListAll(ctx context.Context, token string) ([]domain.SaleResult, error) {
	var result []domain.SaleResult
	if err := c.call(ctx, http.MethodGet, "/api/ventas", token, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) call(ctx context.Context, method, path, token string, body, out any) error {
	raw, err := c.breaker.Execute(func() (json.RawMessage, error) {
		return c.do(ctx, method, path, token, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &APIError{Kind: KindServer, cause: err}
		}
		return err
	}
	if out == nil {
		return nil
	}
	if errDecode := json.Unmarshal(raw, out); errDecode != nil {
		return &APIError{Kind: KindServer, cause: fmt.Errorf("malformed response: %w", errDecode)}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request failed: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, cause: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	return nil, &APIError{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Body: string(raw)}
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest:
		return KindInvalidRequest
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthenticated
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindInvalidRequest
	}
}
