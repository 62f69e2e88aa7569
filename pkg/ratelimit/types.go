// Package ratelimit provides fixed-window request rate limiting with
// pluggable storage backends and HTTP middleware.
package ratelimit

import (
	"context"
	"time"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests left in the current window.
	Remaining int

	// ResetAt is when the current window expires.
	ResetAt time.Time
}

// RetryAfter returns how long to wait before the next request is allowed.
// Returns 0 if the current request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Limiter is implemented by rate limiting algorithms.
type Limiter interface {
	// Allow checks whether a single request is allowed for the key, and if
	// so consumes one slot.
	Allow(ctx context.Context, key string) (*Result, error)

	// Status reports the current state for the key without consuming a slot.
	Status(ctx context.Context, key string) (*Result, error)

	// Reset clears the counter for the key.
	Reset(ctx context.Context, key string) error
}

// Store is the counter backend used by limiters.
type Store interface {
	// IncrementAndGet atomically increments the counter for the key and
	// returns the new value along with the remaining window TTL. A counter
	// that does not exist or has expired starts a fresh window.
	IncrementAndGet(ctx context.Context, key string, window time.Duration) (current int64, ttl time.Duration, err error)

	// Get returns the current counter value and TTL for the key.
	Get(ctx context.Context, key string) (current int64, ttl time.Duration, err error)

	// Delete removes the key from the store.
	Delete(ctx context.Context, key string) error
}
