package cache

import (
	"path"
	"sync"
	"time"
)

// TrackingCache is a process-local TTL cache for hot tracking lookups.
// Entries expire lazily on read and are swept periodically; there is no size
// bound since entries are small and short-lived. A horizontally scaled
// deployment must swap this for a shared cache or accept staleness bounded by
// the TTL.
type TrackingCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   func() time.Time
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

func NewTrackingCache() *TrackingCache {
	return &TrackingCache{
		entries: make(map[string]entry),
		clock:   time.Now,
	}
}

// NewTrackingCacheWithClock lets tests control expiry.
func NewTrackingCacheWithClock(clock func() time.Time) *TrackingCache {
	return &TrackingCache{
		entries: make(map[string]entry),
		clock:   clock,
	}
}

// Get returns the cached value, or false when absent or expired. An expired
// entry is removed on the spot.
func (c *TrackingCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.clock().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a Set may have raced the expiry.
		if cur, ok := c.entries[key]; ok && c.clock().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttlSeconds.
func (c *TrackingCache) Set(key string, value interface{}, ttlSeconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		value:     value,
		expiresAt: c.clock().Add(time.Duration(ttlSeconds) * time.Second),
	}
}

// Delete removes the entry for key if present.
func (c *TrackingCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// DeletePattern removes every entry whose key matches the glob pattern,
// e.g. "shipment:track:*".
func (c *TrackingCache) DeletePattern(pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if ok, err := path.Match(pattern, key); err == nil && ok {
			delete(c.entries, key)
		}
	}
}

// Sweep drops all expired entries. Scheduled from main on a cron tick.
func (c *TrackingCache) Sweep() {
	now := c.clock()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of live plus not-yet-swept entries.
func (c *TrackingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TrackingKey builds the cache key for a tracking-number lookup.
func TrackingKey(trackingNumber string) string {
	return "shipment:track:" + trackingNumber
}
