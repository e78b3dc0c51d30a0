package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listing struct {
	IDs []uint `json:"ids"`
}

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	var got listing
	found, err := m.Get(ctx, "search:1:plumb", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, m.Set(ctx, "search:1:plumb", listing{IDs: []uint{1, 2}}, time.Minute))

	found, err = m.Get(ctx, "search:1:plumb", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []uint{1, 2}, got.IDs)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	require.NoError(t, m.Set(ctx, "k", listing{}, 20*time.Millisecond))

	assert.Eventually(t, func() bool {
		var got listing
		found, err := m.Get(ctx, "k", &got)
		return err == nil && !found
	}, time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool { return m.Len() == 0 }, 2*time.Second, 10*time.Millisecond,
		"expired entries are evicted without being read")
}

func TestMemory_BoundedAcrossGenerations(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryWithCapacity(16)
	defer m.Close()

	for i := 0; i < 200; i++ {
		gen, err := m.Incr(ctx, "providers:generation")
		require.NoError(t, err)
		key := fmt.Sprintf("providers:%d:search:plumb", gen)
		require.NoError(t, m.Set(ctx, key, listing{IDs: []uint{uint(i)}}, time.Minute))
		require.NoError(t, m.Set(ctx, fmt.Sprintf("providers:%d:stats", gen), listing{}, time.Minute))
	}

	assert.LessOrEqual(t, m.Len(), 16)

	var got listing
	found, err := m.Get(ctx, "providers:200:search:plumb", &got)
	require.NoError(t, err)
	assert.True(t, found, "latest generation survives eviction")
	assert.Equal(t, []uint{199}, got.IDs)
}

func TestMemory_Counter(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	n, err := m.Counter(ctx, "gen")
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := 1; i <= 3; i++ {
		n, err = m.Incr(ctx, "gen")
		require.NoError(t, err)
		assert.Equal(t, int64(i), n)
	}
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Noop{}

	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	var v int
	found, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, found)
}
