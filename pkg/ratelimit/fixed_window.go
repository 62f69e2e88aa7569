package ratelimit

import (
	"context"
	"time"
)

// FixedWindow counts requests per key within fixed time windows. The first
// request for a key opens a window; the counter resets when it expires.
type FixedWindow struct {
	store  Store
	limit  int
	window time.Duration
}

// NewFixedWindow creates a fixed window limiter allowing limit requests per
// window.
func NewFixedWindow(store Store, limit int, window time.Duration) (*FixedWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		return nil, ErrInvalidInterval
	}

	return &FixedWindow{
		store:  store,
		limit:  limit,
		window: window,
	}, nil
}

// Allow consumes one slot for the key if the limit has not been reached.
// The slot is counted even when the request is rejected, so a client that
// keeps hammering a closed window never makes progress.
func (fw *FixedWindow) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	current, ttl, err := fw.store.IncrementAndGet(ctx, key, fw.window)
	if err != nil {
		return nil, err
	}

	return fw.result(current <= int64(fw.limit), current, ttl), nil
}

// Status reports the state for the key without consuming a slot.
func (fw *FixedWindow) Status(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	current, ttl, err := fw.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = fw.window
	}

	return fw.result(current < int64(fw.limit), current, ttl), nil
}

// Reset clears the counter for the key.
func (fw *FixedWindow) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return fw.store.Delete(ctx, key)
}

func (fw *FixedWindow) result(allowed bool, current int64, ttl time.Duration) *Result {
	return &Result{
		Allowed:   allowed,
		Limit:     fw.limit,
		Remaining: max(0, fw.limit-int(current)),
		ResetAt:   time.Now().Add(ttl),
	}
}
