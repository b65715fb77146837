// Package checkout turns an uncommitted cart into a submitted sale. The two
// phases are deliberately ordered: the cart is cleared only after the remote
// sale is confirmed, so a crash in between leaves the cart intact at the cost
// of a possible duplicate submission. The idempotency key on the request lets
// the backend collapse such duplicates.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/levelup-gamer/storefront/internal/domain"
)

var (
	ErrUnauthenticated  = errors.New("checkout requires a signed-in user")
	ErrEmptyCart        = errors.New("cart is empty, nothing to check out")
	ErrInvalidProductID = errors.New("cart line has a non-numeric product id")

	// ErrClearFailed reports that the sale was confirmed but the local
	// cart could not be cleared. The sale result is still returned.
	ErrClearFailed = errors.New("sale confirmed but clearing the cart failed")
)

// CartStore is the slice of the cart service the coordinator needs.
type CartStore interface {
	Get(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	Clear(ctx context.Context, sessionID string) error
}

// SaleCreator is the remote sale submission collaborator. Its failures are
// forwarded to the caller verbatim.
type SaleCreator interface {
	Create(ctx context.Context, req *domain.SaleRequest, token string) (*domain.SaleResult, error)
}

// CredentialProvider yields the session's auth token, or reports it absent.
type CredentialProvider interface {
	Token(ctx context.Context, sessionID string) (string, bool)
}

type Coordinator struct {
	store CartStore
	sales SaleCreator
	creds CredentialProvider
}

func NewCoordinator(store CartStore, sales SaleCreator, creds CredentialProvider) *Coordinator {
	return &Coordinator{store: store, sales: sales, creds: creds}
}

// Checkout validates preconditions, submits the cart as a sale and clears the
// cart after the backend confirms. On any failure before confirmation the
// cart is left untouched and no partial mutation occurs.
func (c *Coordinator) Checkout(ctx context.Context, sessionID string) (*domain.SaleResult, error) {
	token, ok := c.creds.Token(ctx, sessionID)
	if !ok {
		return nil, ErrUnauthenticated
	}

	items, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	req, err := buildRequest(items)
	if err != nil {
		return nil, err
	}

	result, err := c.sales.Create(ctx, req, token)
	if err != nil {
		return nil, err
	}

	if errClear := c.store.Clear(ctx, sessionID); errClear != nil {
		return result, fmt.Errorf("%w: %v", ErrClearFailed, errClear)
	}
	return result, nil
}

// buildRequest converts cart lines to sale items. The catalog guarantees
// numeric product ids; a line that breaks the contract fails the whole
// checkout before any network call.
func buildRequest(items []domain.CartItem) (*domain.SaleRequest, error) {
	req := &domain.SaleRequest{
		Items:          make([]domain.SaleItem, 0, len(items)),
		Total:          domain.Total(items),
		IdempotencyKey: uuid.NewString(),
	}
	for _, it := range items {
		id, err := strconv.ParseInt(it.ProductID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProductID, it.ProductID)
		}
		req.Items = append(req.Items, domain.SaleItem{ProductID: id, Quantity: it.Quantity})
	}
	return req, nil
}
