// Package cache provides the response cache used by the HTTP read paths and
// the eviction hooks used by the write paths.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss indicates that the key was not found in the cache.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte-oriented key-value store with per-entry TTLs.
type Cache interface {
	// Get returns the stored value or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value. A zero ttl falls back to the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes a single key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}
