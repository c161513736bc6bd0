package cache

import (
	"container/list"
	"sync"
	"time"
)

type ttlLRUEntry[K comparable, V any] struct {
	key        K
	value      V
	insertedAt time.Time
}

// TTLLRU combines capacity-bounded LRU eviction with read-time TTL expiry.
// Used for hazard risk readings, which are geographically local but must not
// grow without bound over a long-running process.
type TTLLRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	ll       *list.List
	items    map[K]*list.Element
	now      func() time.Time
}

func NewTTLLRU[K comparable, V any](capacity int, ttl time.Duration) *TTLLRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &TTLLRU[K, V]{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		items:    make(map[K]*list.Element),
		now:      time.Now,
	}
}

// SetClock replaces the time source, for tests.
func (c *TTLLRU[K, V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *TTLLRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}

	entry := elem.Value.(*ttlLRUEntry[K, V])
	if c.now().Sub(entry.insertedAt) > c.ttl {
		c.ll.Remove(elem)
		delete(c.items, key)
		var zero V
		return zero, false
	}

	c.ll.MoveToFront(elem)
	return entry.value, true
}

func (c *TTLLRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*ttlLRUEntry[K, V])
		entry.value = value
		entry.insertedAt = c.now()
		c.ll.MoveToFront(elem)
		return
	}

	elem := c.ll.PushFront(&ttlLRUEntry[K, V]{key: key, value: value, insertedAt: c.now()})
	c.items[key] = elem

	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*ttlLRUEntry[K, V]).key)
		}
	}
}

func (c *TTLLRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *TTLLRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[K]*list.Element)
}
