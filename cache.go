package fixtures

import "sync"

// ProgramCache stores compiled matcher programs keyed by engine and source.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// PathCache stores compiled paths keyed by matcher engine and raw path.
type PathCache interface {
	Get(key string) (*Path, bool)
	Set(key string, path *Path)
}

// MemoryCache is a mutex guarded map usable as both ProgramCache and, through
// Paths, PathCache. It never evicts.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewMemoryCache constructs an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]any{}}
}

// Get implements ProgramCache.
func (c *MemoryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

// Set implements ProgramCache.
func (c *MemoryCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[string]any{}
	}
	c.entries[key] = value
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Paths exposes the cache as a PathCache.
func (c *MemoryCache) Paths() PathCache {
	return pathCacheAdapter{cache: c}
}

type pathCacheAdapter struct {
	cache *MemoryCache
}

func (a pathCacheAdapter) Get(key string) (*Path, bool) {
	value, ok := a.cache.Get("path:" + key)
	if !ok {
		return nil, false
	}
	path, ok := value.(*Path)
	return path, ok
}

func (a pathCacheAdapter) Set(key string, path *Path) {
	a.cache.Set("path:"+key, path)
}
