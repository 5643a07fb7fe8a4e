// Package cache is the cache-aside layer: key derivation, a byte-level Store
// contract with a Redis implementation, and typed JSON helpers.
package cache

import (
	"context"
	"time"
)

// Store is a shared byte cache. A missing key is reported as (nil, false,
// nil), never as an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
	// RemoveByPattern deletes every key matching a glob pattern using
	// incremental, bounded iteration.
	RemoveByPattern(ctx context.Context, pattern string) error
}
