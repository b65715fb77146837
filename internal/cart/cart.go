// Package cart owns the persisted cart for every storefront session. All
// reads and mutations go through Service; nothing else touches the stored
// copy. Every mutation persists the full cart and notifies subscribers once.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/levelup-gamer/storefront/internal/domain"
	"github.com/levelup-gamer/storefront/internal/storage"
)

const cartKeyPrefix = "levelup_cart:"

// ErrPersistFailed wraps a storage write failure. The in-memory mutation is
// not applied when the write fails; callers decide whether to retry or warn.
var ErrPersistFailed = errors.New("cart persist failed")

// Publisher fans a change announcement out to other storefront instances
// sharing the same storage. Optional; publish failures are dropped, the
// announcement is fire-and-forget like the local one.
type Publisher interface {
	PublishUpdate(ctx context.Context, sessionID string) error
}

type Service struct {
	kv  storage.KV
	bus *Bus
	pub Publisher
}

func NewService(kv storage.KV, opts ...Option) *Service {
	s := &Service{kv: kv, bus: newBus()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Option func(*Service)

// WithPublisher announces mutations across instances as well as locally.
func WithPublisher(pub Publisher) Option {
	return func(s *Service) { s.pub = pub }
}

func cartKey(sessionID string) string {
	return cartKeyPrefix + sessionID
}

// Get returns the session's cart in insertion order. A missing or corrupt
// stored cart reads as empty; availability wins over strictness here.
func (s *Service) Get(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	raw, err := s.kv.Get(ctx, cartKey(sessionID))
	if errors.Is(err, storage.ErrNotFound) {
		return []domain.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	var items []domain.CartItem
	if errUnmarshal := json.Unmarshal([]byte(raw), &items); errUnmarshal != nil {
		return []domain.CartItem{}, nil
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return items, nil
}

// Add appends the product as a new line with quantity 1, or increments the
// quantity of the existing line for the same product id.
func (s *Service) Add(ctx context.Context, sessionID string, item domain.CartItem) error {
	items, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	found := false
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		item.Quantity = 1
		items = append(items, item)
	}

	return s.save(ctx, sessionID, items)
}

// UpdateQuantity sets the line's quantity to the given value. A value of zero
// or less removes the line. An unknown product id is a no-op: nothing is
// persisted and no notification fires.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) error {
	items, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	for i := range items {
		if items[i].ProductID == productID {
			if quantity <= 0 {
				return s.Remove(ctx, sessionID, productID)
			}
			items[i].Quantity = quantity
			return s.save(ctx, sessionID, items)
		}
	}
	return nil
}

// Remove drops the matching line. Removing an absent id still re-persists the
// unchanged cart and still notifies.
func (s *Service) Remove(ctx context.Context, sessionID, productID string) error {
	items, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	filtered := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			filtered = append(filtered, it)
		}
	}
	return s.save(ctx, sessionID, filtered)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.save(ctx, sessionID, []domain.CartItem{})
}

// Summary derives subtotal, tax and total from the current contents.
func (s *Service) Summary(ctx context.Context, sessionID string) (domain.CartSummary, error) {
	items, err := s.Get(ctx, sessionID)
	if err != nil {
		return domain.CartSummary{}, err
	}
	return domain.Summarize(items), nil
}

// ItemCount is the badge number: the sum of all line quantities.
func (s *Service) ItemCount(ctx context.Context, sessionID string) (int, error) {
	items, err := s.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return domain.ItemCount(items), nil
}

// Total is the tax-inclusive sum over all lines.
func (s *Service) Total(ctx context.Context, sessionID string) (int64, error) {
	items, err := s.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return domain.Total(items), nil
}

// Subscribe registers for change notifications for one session. The caller
// must Close the subscription when done, and should read current state at
// registration time: notifications carry no payload and are not replayed.
func (s *Service) Subscribe(sessionID string) *Subscription {
	return s.bus.subscribe(sessionID)
}

// NotifyLocal wakes local subscribers without going through a mutation. The
// cross-instance bridge uses it to relay announcements from other nodes.
func (s *Service) NotifyLocal(sessionID string) {
	s.bus.notify(sessionID)
}

func (s *Service) save(ctx context.Context, sessionID string, items []domain.CartItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	if errSet := s.kv.Set(ctx, cartKey(sessionID), string(raw)); errSet != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, errSet)
	}

	s.bus.notify(sessionID)
	if s.pub != nil {
		_ = s.pub.PublishUpdate(ctx, sessionID)
	}
	return nil
}
