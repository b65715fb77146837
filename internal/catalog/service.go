package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/levelup-gamer/storefront/internal/domain"
)

// Fetcher is the backend listing the cache fronts.
type Fetcher interface {
	List(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error)
}

type Service struct {
	fetcher Fetcher
	cache   Cache
	logger  *zap.Logger
	sfg     singleflight.Group // prevents cache stampede
}

func NewService(fetcher Fetcher, cache Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{fetcher: fetcher, cache: cache, logger: logger}
}

// Products returns the whole catalog, cache-first.
func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	return s.load(ctx, "all", func(ctx context.Context) ([]domain.Product, error) {
		return s.fetcher.List(ctx)
	})
}

// ProductsByCategory returns one backend category, cache-first.
func (s *Service) ProductsByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	key := fmt.Sprintf("category:%d", categoryID)
	return s.load(ctx, key, func(ctx context.Context) ([]domain.Product, error) {
		return s.fetcher.ListByCategory(ctx, categoryID)
	})
}

func (s *Service) load(ctx context.Context, key string, fetch func(context.Context) ([]domain.Product, error)) ([]domain.Product, error) {
	// Use singleflight so concurrent misses for the same key fetch once.
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		products, errCache := s.cache.Get(ctx, key)
		if errCache == nil {
			return products, nil
		}
		if !errors.Is(errCache, ErrCacheMiss) {
			s.logger.Warn("catalog cache get failed", zap.String("key", key), zap.Error(errCache))
		}

		products, errFetch := fetch(ctx)
		if errFetch != nil {
			return nil, errFetch
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), key, products); errSet != nil {
				s.logger.Warn("catalog cache set failed", zap.String("key", key), zap.Error(errSet))
			}
		}()

		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}
