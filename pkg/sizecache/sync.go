package sizecache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// SyncCache is a Cache that may be shared between goroutines. Concurrent
// Size calls for the same uncached directory are collapsed into a single walk.
type SyncCache struct {
	mu      sync.RWMutex
	entries map[string]int64
	flight  singleflight.Group
}

var _ Cache = (*SyncCache)(nil)

// NewSyncCache returns an empty SyncCache.
func NewSyncCache() *SyncCache {
	return &SyncCache{entries: make(map[string]int64)}
}

func (c *SyncCache) Lookup(key string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	size, ok := c.entries[key]
	return size, ok
}

func (c *SyncCache) Store(key string, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = size
}

// Invalidate drops the entry for path and reports whether one existed.
func (c *SyncCache) Invalidate(path string) bool {
	key := Key(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Clear drops every entry and returns how many there were.
func (c *SyncCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]int64)
	return n
}

// Len returns the number of cached directories.
func (c *SyncCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Size measures path against the cache. Callers asking for the same
// directory while a walk is in flight wait for and share its result.
func (c *SyncCache) Size(ctx context.Context, path string) (Result, error) {
	key := Key(path)
	if size, ok := c.Lookup(key); ok {
		return Result{Bytes: size}, nil
	}
	v, err, _ := c.flight.Do(key, func() (any, error) {
		return Measure(ctx, key, c)
	})
	res, _ := v.(Result)
	return res, err
}
