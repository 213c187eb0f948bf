// Package sizecache computes the total byte size of directory trees and
// memoizes the result per resolved directory path.
//
// A cache never notices filesystem changes on its own: an entry stays valid
// until it is invalidated or the cache is cleared.
package sizecache

import (
	"path/filepath"
)

// Cache stores directory sizes keyed by resolved path (see Key).
type Cache interface {
	// Lookup returns the cached size for key, if present.
	Lookup(key string) (int64, bool)
	// Store records the size computed for key.
	Store(key string, size int64)
}

type noCache struct{}

func (noCache) Lookup(string) (int64, bool) { return 0, false }
func (noCache) Store(string, int64)         {}

// NoCache is the Cache to pass when results must not be memoized.
// Every computation against it walks the full tree.
var NoCache Cache = noCache{}

// MapCache is a Cache owned by a single session. It is not safe for
// concurrent use; see SyncCache for that.
type MapCache struct {
	entries map[string]int64
}

var _ Cache = (*MapCache)(nil)

// NewMapCache returns an empty MapCache.
func NewMapCache() *MapCache {
	return &MapCache{entries: make(map[string]int64)}
}

func (c *MapCache) Lookup(key string) (int64, bool) {
	size, ok := c.entries[key]
	return size, ok
}

func (c *MapCache) Store(key string, size int64) {
	c.entries[key] = size
}

// Invalidate drops the entry for path and reports whether one existed.
func (c *MapCache) Invalidate(path string) bool {
	key := Key(path)
	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Clear drops every entry and returns how many there were.
func (c *MapCache) Clear() int {
	n := len(c.entries)
	c.entries = make(map[string]int64)
	return n
}

// Len returns the number of cached directories.
func (c *MapCache) Len() int {
	return len(c.entries)
}

// Key returns the cache key for path: its absolute form with symbolic links
// evaluated. If the links cannot be evaluated (e.g. the path no longer
// exists) the cleaned absolute path is used.
func Key(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
