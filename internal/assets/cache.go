package assets

import (
	"sync"
	"sync/atomic"
)

// Cache keeps fetched file contents keyed by path. It is safe for
// concurrent use by the fetch workers.
type Cache struct {
	files sync.Map // string -> []byte

	hits, misses atomic.Int64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached contents of path and counts the lookup.
func (c *Cache) Get(path string) ([]byte, bool) {
	v, ok := c.files.Load(path)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return v.([]byte), true
}

// Set stores the contents of path, replacing any earlier entry.
func (c *Cache) Set(path string, body []byte) {
	c.files.Store(path, body)
}

// Clear drops every entry and resets the counters.
func (c *Cache) Clear() {
	c.files.Clear()
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns the lookup counts since the last Clear.
func (c *Cache) Stats() (hits, misses int) {
	return int(c.hits.Load()), int(c.misses.Load())
}
