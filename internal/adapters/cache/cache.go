// Package cache holds read-through caches for public listings.
package cache

import (
	"context"
	"time"
)

// Cache stores JSON encoded values. A miss is reported as (false, nil).
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Incr atomically increments an integer counter and returns the new value
	Incr(ctx context.Context, key string) (int64, error)
	// Counter returns the current counter value, 0 when unset
	Counter(ctx context.Context, key string) (int64, error)
	Close() error
}

// Noop never stores anything
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Incr(context.Context, string) (int64, error)           { return 0, nil }
func (Noop) Counter(context.Context, string) (int64, error)        { return 0, nil }
func (Noop) Close() error                                          { return nil }
