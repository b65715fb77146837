package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levelup-gamer/storefront/internal/domain"
)

type mockFetcher struct {
	mu       sync.Mutex
	calls    int
	products []domain.Product
	err      error
}

func (m *mockFetcher) List(context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockFetcher) ListByCategory(context.Context, int64) ([]domain.Product, error) {
	return m.List(context.Background())
}

func (m *mockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockCache struct {
	mu   sync.RWMutex
	data map[string][]domain.Product
	err  error
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]domain.Product)}
}

func (m *mockCache) Get(_ context.Context, key string) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	products, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return products, nil
}

func (m *mockCache) Set(_ context.Context, key string, products []domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = products
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockCache) has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

func sample() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Mouse Gamer", Category: "Mouse", Price: 50000, Stock: 10},
	}
}

func TestProducts_MissFetchesAndFillsCache(t *testing.T) {
	fetcher := &mockFetcher{products: sample()}
	cache := newMockCache()
	svc := NewService(fetcher, cache, nil)

	products, err := svc.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 1, fetcher.callCount())

	// The cache fill is asynchronous.
	require.Eventually(t, func() bool { return cache.has("all") }, time.Second, 5*time.Millisecond)
}

func TestProducts_HitSkipsFetcher(t *testing.T) {
	fetcher := &mockFetcher{}
	cache := newMockCache()
	require.NoError(t, cache.Set(context.Background(), "all", sample()))
	svc := NewService(fetcher, cache, nil)

	products, err := svc.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 0, fetcher.callCount())
}

func TestProducts_FetchErrorPropagates(t *testing.T) {
	fetchErr := errors.New("backend down")
	svc := NewService(&mockFetcher{err: fetchErr}, newMockCache(), nil)

	_, err := svc.Products(context.Background())
	assert.ErrorIs(t, err, fetchErr)
}

func TestProducts_CacheFailureFallsThroughToFetcher(t *testing.T) {
	fetcher := &mockFetcher{products: sample()}
	cache := newMockCache()
	cache.err = errors.New("redis down")
	svc := NewService(fetcher, cache, nil)

	products, err := svc.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestProductsByCategory_UsesOwnKey(t *testing.T) {
	fetcher := &mockFetcher{products: sample()}
	cache := newMockCache()
	svc := NewService(fetcher, cache, nil)

	_, err := svc.ProductsByCategory(context.Background(), 6)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return cache.has("category:6") }, time.Second, 5*time.Millisecond)
	assert.False(t, cache.has("all"))
}
