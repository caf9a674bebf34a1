package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process cache. It is safe for concurrent use.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
}

// NewMemoryCache creates an empty in-memory cache with the given default TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]Entry),
		ttl:     effectiveTTL(ttl, DefaultTTL),
	}
}

// Read returns the entry for key unless it is missing or expired.
func (c *MemoryCache) Read(_ context.Context, key string) (*Entry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if entry.Expired(time.Now()) {
		// Expired - clean up lazily
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	return &entry, true
}

// Write stores a copy of entry under key.
func (c *MemoryCache) Write(_ context.Context, key string, entry *Entry, ttl time.Duration) error {
	entry.stamp(time.Now(), effectiveTTL(ttl, c.ttl))

	stored := *entry
	stored.Body = append([]byte(nil), entry.Body...)

	c.mu.Lock()
	c.entries[key] = stored
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ Cache = (*MemoryCache)(nil)
