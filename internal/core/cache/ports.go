package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key does not exist or has expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the port for key/value caching and short-lived locks.
type Cache interface {
	// Get returns the cached value or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX stores value only if key is absent and reports whether it did.
	// Used as a cross-instance lock.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes key.
	Delete(ctx context.Context, key string) error

	// Ping checks that the cache is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection.
	Close() error
}

// Key builds a namespaced key such as "storefront:postal:01001000".
func Key(operation, id string) string {
	return "storefront:" + operation + ":" + id
}
