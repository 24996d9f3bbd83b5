package service

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// ttlCache is a bounded TTL cache with oldest-first eviction. Expiry is
// checked inline on access; there is no background sweeper. The lock covers
// only the check/write critical section, never backend I/O.
type ttlCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	order   []string
	ttl     time.Duration
	maxSize int
}

func newTTLCache(ttl time.Duration, maxSize int) *ttlCache {
	return &ttlCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

func (c *ttlCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		c.dropOrder(key)
		return nil, false
	}
	return entry.value, true
}

// dropOrder removes key from the insertion-order list. A later Set of the
// same key must re-append it, not leave a stale duplicate ahead of it that
// eviction would pop first. Caller holds the lock.
func (c *ttlCache) dropOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *ttlCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{value: value, expiresAt: time.Now().Add(c.ttl)}

	// Evict oldest entries once over capacity.
	for len(c.entries) > c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

func (c *ttlCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.dropOrder(key)
}

func (c *ttlCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	c.order = nil
}

func (c *ttlCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
