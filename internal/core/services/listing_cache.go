package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"servicehub/internal/adapters/cache"
	"servicehub/internal/pkg/sl"
)

const generationKey = "providers:generation"

// ListingCache caches provider listings under a generation number.
// Any provider write bumps the generation so older entries are never read again.
type ListingCache struct {
	cache cache.Cache
	ttl   time.Duration
	log   *slog.Logger
}

func NewListingCache(c cache.Cache, ttl time.Duration, log *slog.Logger) *ListingCache {
	if c == nil {
		c = cache.Noop{}
	}
	return &ListingCache{cache: c, ttl: ttl, log: log}
}

// key returns the cache key for parts in the current generation
func (l *ListingCache) key(ctx context.Context, parts ...string) (string, bool) {
	gen, err := l.cache.Counter(ctx, generationKey)
	if err != nil {
		l.log.Warn("cache generation unavailable", sl.Err(err))
		return "", false
	}
	return fmt.Sprintf("providers:%d:%s", gen, strings.Join(parts, ":")), true
}

func (l *ListingCache) load(ctx context.Context, key string, dest any) bool {
	found, err := l.cache.Get(ctx, key, dest)
	if err != nil {
		l.log.Warn("cache read failed", slog.String("key", key), sl.Err(err))
		return false
	}
	return found
}

func (l *ListingCache) store(ctx context.Context, key string, value any) {
	if err := l.cache.Set(ctx, key, value, l.ttl); err != nil {
		l.log.Warn("cache write failed", slog.String("key", key), sl.Err(err))
	}
}

func (l *ListingCache) invalidate(ctx context.Context) {
	if _, err := l.cache.Incr(ctx, generationKey); err != nil {
		l.log.Error("cache invalidation failed", sl.Err(err))
	}
}
