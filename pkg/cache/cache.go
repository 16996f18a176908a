// Package cache provides response caching for the package index and other
// HTTP-fetched data.
//
// Three backends are available:
//   - file: directory-based cache for normal CLI usage (default)
//   - redis: shared cache for CI farms running many mip processes
//   - null: disables caching entirely
//
// Keys are arbitrary strings; backends are responsible for making them safe
// for their storage (the file backend hashes them). Entries carry a TTL; an
// expired entry behaves like a miss.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with expiration.
type Cache interface {
	// Get retrieves a value. The boolean reports whether a fresh entry was
	// found; expired or missing entries return (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any backend resources.
	Close() error
}
