// Package storage provides the persistent key-value store the storefront
// keeps session state in. Consumers depend on the KV interface, not on the
// Redis implementation.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

type KV interface {
	// Get returns the stored value, or ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
