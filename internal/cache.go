// Package internal provides the occurrence cache behind duplicate detection.
// It is a thread-safe LRU keyed by text with optional TTL expiry.
package internal

import (
	"sync"
	"time"
)

type cacheEntry struct {
	prev, next *cacheEntry
	expiresAt  int64
	count      int
	key        string
}

func (e *cacheEntry) isExpired(now int64) bool {
	return e.expiresAt > 0 && now > e.expiresAt
}

// CountCache remembers how often each text was seen, evicting the least
// recently used text once maxEntries is reached.
type CountCache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	maxEntries int
	ttl        time.Duration
	head, tail *cacheEntry // Sentinel nodes for doubly-linked list
}

func NewCountCache(maxEntries int, ttl time.Duration) *CountCache {
	if maxEntries < 0 {
		maxEntries = 0
	}
	c := &CountCache{
		entries:    make(map[string]*cacheEntry, maxEntries),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
	c.head = &cacheEntry{}
	c.tail = &cacheEntry{}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the stored count for key, or 0 when it is unknown or expired.
func (c *CountCache) Get(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.get(key, time.Now().UnixNano())
}

func (c *CountCache) Put(key string, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(key, count, time.Now().UnixNano())
}

// Increment adds one to the count of key and returns the count it had
// before, as a single atomic step.
func (c *CountCache) Increment(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().UnixNano()
	prev := c.get(key, now)
	c.put(key, prev+1, now)
	return prev
}

func (c *CountCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *CountCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		delete(c.entries, key)
	}
	c.head.next = c.tail
	c.tail.prev = c.head
}

func (c *CountCache) get(key string, now int64) int {
	if key == "" {
		return 0
	}
	entry := c.entries[key]
	if entry == nil {
		return 0
	}
	if entry.isExpired(now) {
		c.unlink(entry)
		delete(c.entries, key)
		return 0
	}
	c.moveToFront(entry)
	return entry.count
}

func (c *CountCache) put(key string, count int, now int64) {
	if key == "" || c.maxEntries == 0 {
		return
	}
	var expiresAt int64
	if c.ttl > 0 {
		expiresAt = now + c.ttl.Nanoseconds()
	}
	if entry, exists := c.entries[key]; exists {
		entry.count = count
		entry.expiresAt = expiresAt
		c.moveToFront(entry)
		return
	}
	if len(c.entries) >= c.maxEntries {
		c.evictOne(now)
	}
	entry := &cacheEntry{key: key, count: count, expiresAt: expiresAt}
	c.entries[key] = entry
	c.addToFront(entry)
}

func (c *CountCache) moveToFront(entry *cacheEntry) {
	if entry == nil || entry == c.head || entry == c.tail {
		return
	}
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

func (c *CountCache) addToFront(entry *cacheEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *CountCache) unlink(entry *cacheEntry) {
	if entry == nil || entry == c.head || entry == c.tail {
		return
	}
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	entry.prev = nil
	entry.next = nil
}

// evictOne drops an expired entry if there is one, else the least recently
// used entry (tail.prev).
func (c *CountCache) evictOne(now int64) {
	for key, entry := range c.entries {
		if entry.isExpired(now) {
			c.unlink(entry)
			delete(c.entries, key)
			return
		}
	}
	if c.tail.prev != c.head {
		lru := c.tail.prev
		c.unlink(lru)
		delete(c.entries, lru.key)
	}
}
