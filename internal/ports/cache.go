package ports

import (
	"context"
	"time"
)

// Cache is the small key-value surface backed by Redis: the
// availability response cache and the webhook dedupe fast path.
// Implementations must degrade gracefully when the backend is down —
// a cache error is never fatal to the caller.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX returns true when the key was newly set.
	SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
