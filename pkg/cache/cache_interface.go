package cache

import (
	"context"
	"time"
)

// Cache is the contract of the cache layer, Redis in production.
type Cache interface {
	// Get unmarshals the cached value into dest.
	// found is false on a miss and dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)

	// Delete removes the keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error
}
