// Package cache provides TTL key-value stores for metadata API responses
// and aggregated recommendation results.
package cache

import (
	"context"
	"time"
)

// Store is a TTL key-value store. A read after expiry behaves exactly like
// a miss. Implementations must treat backend failures as miss / no-op so
// the cache stays an optimization, never a correctness dependency.
type Store interface {
	// Get retrieves a cached value by key.
	// Returns nil, false if not found or expired.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a cached value.
	Delete(ctx context.Context, key string) error
}
