// Package cache provides the advisory read cache used by the services.
// Entries are JSON encoded so the in-process and Redis implementations
// behave the same and callers never share mutable values with the cache.
// Losing any entry only costs a store round trip.
package cache

import (
	"context"
	"time"
)

// Cache is implemented by MemoryCache and RedisCache.
type Cache interface {
	// Get decodes the value stored at key into dest. found is false on a
	// miss or when the entry has expired.
	Get(ctx context.Context, key string, dest interface{}) (found bool, err error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
}

// Stats describes the current cache contents.
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}
