package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cacheKey(id string) CacheKey {
	return CacheKey{Snapshot1ID: id, Snapshot2ID: id + "'", Dimension: DimensionAgent}
}

func TestMapCache(t *testing.T) {
	cache := NewMapCache()
	result := &ComparisonResult{Snapshot1ID: "a"}

	_, ok := cache.Get(cacheKey("a"))
	assert.False(t, ok)

	cache.Set(cacheKey("a"), result)
	got, ok := cache.Get(cacheKey("a"))
	require.True(t, ok)
	assert.Same(t, result, got)

	// Dimension is part of the key
	_, ok = cache.Get(CacheKey{Snapshot1ID: "a", Snapshot2ID: "a'", Dimension: DimensionModel})
	assert.False(t, ok)

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache, err := NewLRUCache(2)
	require.NoError(t, err)

	cache.Set(cacheKey("a"), &ComparisonResult{})
	cache.Set(cacheKey("b"), &ComparisonResult{})
	_, _ = cache.Get(cacheKey("a"))
	cache.Set(cacheKey("c"), &ComparisonResult{})

	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get(cacheKey("b"))
	assert.False(t, ok, "b was least recently used")
	_, ok = cache.Get(cacheKey("a"))
	assert.True(t, ok)

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestNewCache(t *testing.T) {
	unbounded, err := NewCache(0)
	require.NoError(t, err)
	assert.IsType(t, &MapCache{}, unbounded)

	bounded, err := NewCache(16)
	require.NoError(t, err)
	assert.IsType(t, &LRUCache{}, bounded)
}

func TestNoopCache(t *testing.T) {
	var cache NoopCache
	cache.Set(cacheKey("a"), &ComparisonResult{})

	_, ok := cache.Get(cacheKey("a"))
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}
