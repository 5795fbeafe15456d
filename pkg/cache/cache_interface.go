package cache

import (
	"context"
	"time"
)

// Cache is the contract for the cache layer. Implementations marshal values
// to JSON; Get reports (found, err) so a miss is distinguishable from a
// transport failure.
type Cache interface {
	// Get unmarshals the cached value into dest.
	// found == false means cache miss and dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error
}
