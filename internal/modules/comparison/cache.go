package comparison

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheKey identifies a comparison
type CacheKey struct {
	Snapshot1ID string
	Snapshot2ID string
	Dimension   Dimension
}

// Cache memoizes comparison results. Implementations must be safe for concurrent use.
type Cache interface {
	Get(key CacheKey) (*ComparisonResult, bool)
	Set(key CacheKey, result *ComparisonResult)
	Clear()
	Len() int
}

// MapCache is an unbounded cache
type MapCache struct {
	mu      sync.RWMutex
	results map[CacheKey]*ComparisonResult
}

// NewMapCache creates an empty unbounded cache
func NewMapCache() *MapCache {
	return &MapCache{results: make(map[CacheKey]*ComparisonResult)}
}

func (c *MapCache) Get(key CacheKey) (*ComparisonResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.results[key]
	return result, ok
}

func (c *MapCache) Set(key CacheKey, result *ComparisonResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[key] = result
}

func (c *MapCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = make(map[CacheKey]*ComparisonResult)
}

func (c *MapCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// LRUCache keeps at most size results, dropping the least recently used
type LRUCache struct {
	lru *lru.Cache[CacheKey, *ComparisonResult]
}

// NewLRUCache creates a bounded cache
func NewLRUCache(size int) (*LRUCache, error) {
	c, err := lru.New[CacheKey, *ComparisonResult](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create comparison LRU cache: %w", err)
	}
	return &LRUCache{lru: c}, nil
}

func (c *LRUCache) Get(key CacheKey) (*ComparisonResult, bool) {
	return c.lru.Get(key)
}

func (c *LRUCache) Set(key CacheKey, result *ComparisonResult) {
	c.lru.Add(key, result)
}

func (c *LRUCache) Clear() {
	c.lru.Purge()
}

func (c *LRUCache) Len() int {
	return c.lru.Len()
}

// NoopCache never stores anything
type NoopCache struct{}

func (NoopCache) Get(CacheKey) (*ComparisonResult, bool) { return nil, false }
func (NoopCache) Set(CacheKey, *ComparisonResult)        {}
func (NoopCache) Clear()                                 {}
func (NoopCache) Len() int                               { return 0 }

// NewCache picks the cache for a configured size: 0 is unbounded, above 0 is LRU
func NewCache(size int) (Cache, error) {
	if size <= 0 {
		return NewMapCache(), nil
	}
	return NewLRUCache(size)
}
