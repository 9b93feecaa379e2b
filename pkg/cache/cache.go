// Package cache stores computed calendar results between CLI runs.
//
// Entries are opaque byte slices addressed by string keys. A [Keyer] derives
// keys from a feed digest, the query name and the view, so a changed feed or
// a different filter never hits a stale entry.
package cache

import (
	"context"
	"time"
)

// TTLServiceIDs is the lifetime of a cached calendar. Keys already change
// with the feed content, so it only bounds disk usage.
const TTLServiceIDs = 7 * 24 * time.Hour

// Cache is a key-value store for computed results.
type Cache interface {
	// Get returns the value for key and whether it was found. Expired or
	// unreadable entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
