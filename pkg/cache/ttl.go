package cache

import (
	"sync"
	"time"
)

type ttlEntry[V any] struct {
	value      V
	insertedAt time.Time
}

// HashMapTTL is an unbounded map with read-time TTL expiry. An expired entry
// is treated as absent and deleted lazily on the read that finds it expired.
type HashMapTTL[K comparable, V any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[K]ttlEntry[V]
	now   func() time.Time
}

func NewHashMapTTL[K comparable, V any](ttl time.Duration) *HashMapTTL[K, V] {
	return &HashMapTTL[K, V]{
		ttl:   ttl,
		items: make(map[K]ttlEntry[V]),
		now:   time.Now,
	}
}

// SetClock replaces the time source, for tests.
func (c *HashMapTTL[K, V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *HashMapTTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().Sub(entry.insertedAt) > c.ttl {
		delete(c.items, key)
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Set overwrites any previous entry for the key and restarts its TTL.
func (c *HashMapTTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = ttlEntry[V]{value: value, insertedAt: c.now()}
}

func (c *HashMapTTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *HashMapTTL[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]ttlEntry[V])
}
