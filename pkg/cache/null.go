package cache

import (
	"context"
	"time"
)

// NullCache reports a miss on every Get and discards every Set, so each
// index fetch goes straight to the network. It backs the "none" cache
// backend in the config file and serves as the fallback when a configured
// backend cannot be reached.
type NullCache struct{}

// NewNullCache creates a cache that never stores anything.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always reports a miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the value.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
