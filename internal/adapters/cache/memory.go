package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// DefaultMemoryCapacity bounds the entries kept by NewMemory
const DefaultMemoryCapacity = 1024

// Memory is an in-process Cache for single instance deployments and tests.
// Expired entries are evicted by a background janitor; once full, the least recently used entry goes.
type Memory struct {
	entries *ttlcache.Cache[string, []byte]

	mu       sync.Mutex
	counters map[string]int64

	stopOnce sync.Once
}

func NewMemory() *Memory {
	return NewMemoryWithCapacity(DefaultMemoryCapacity)
}

func NewMemoryWithCapacity(capacity uint64) *Memory {
	m := &Memory{
		entries: ttlcache.New[string, []byte](
			ttlcache.WithCapacity[string, []byte](capacity),
			ttlcache.WithDisableTouchOnHit[string, []byte](),
		),
		counters: make(map[string]int64),
	}
	go m.entries.Start()
	return m
}

func (m *Memory) Get(_ context.Context, key string, dest any) (bool, error) {
	item := m.entries.Get(key)
	if item == nil {
		return false, nil
	}
	if err := json.Unmarshal(item.Value(), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	m.entries.Set(key, data, ttl)
	return nil
}

func (m *Memory) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
	return m.counters[key], nil
}

func (m *Memory) Counter(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key], nil
}

// Len returns the number of cached entries, counters excluded
func (m *Memory) Len() int {
	return m.entries.Len()
}

func (m *Memory) Close() error {
	m.stopOnce.Do(m.entries.Stop)
	return nil
}
