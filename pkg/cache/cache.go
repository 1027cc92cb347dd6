// Package cache provides a keyed in-memory cache with per-entry TTLs.
//
// Entries expire lazily on read and are additionally removed by a
// background janitor so abandoned keys do not accumulate. The cache is
// safe for concurrent use. It holds process-local state only; no
// cross-process sharing is assumed.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// Cache is a TTL cache from string keys to values of type V.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	stop    chan struct{}
	once    sync.Once
}

// New creates a cache whose janitor sweeps expired entries every
// sweepInterval. A non-positive interval disables the janitor and leaves
// expiry entirely to lazy checks on read.
func New[V any](sweepInterval time.Duration) *Cache[V] {
	c := &Cache[V]{
		entries: make(map[string]entry[V]),
		stop:    make(chan struct{}),
	}

	if sweepInterval > 0 {
		go c.janitor(sweepInterval)
	}

	return c
}

// Get returns the value for key if present and unexpired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}

	if e.expired(time.Now()) {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// stored a fresh entry in the meantime.
		if cur, ok := c.entries[key]; ok && cur.expired(time.Now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()

		var zero V
		return zero, false
	}

	return e.value, true
}

// Set stores value under key for the given TTL, replacing any existing
// entry regardless of its remaining lifetime.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

// Delete removes key from the cache.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of entries currently stored, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stop terminates the background janitor. The cache remains usable.
func (c *Cache[V]) Stop() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache[V]) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache[V]) removeExpired() {
	now := time.Now()

	c.mu.Lock()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}
