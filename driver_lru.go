package onionfetch

import (
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/simplelru"
)

// MapCache is the default cache driver. Entries are kept in insertion
// order and the oldest is evicted first once MaxCache is reached.
// Each entry owns at most one expiry timer, stopped whenever the entry
// leaves the cache.
//
// The ordered store is a simplelru.LRU that is only ever read with Peek,
// so recency never changes and LRU order is insertion order.
type MapCache struct {
	mu       sync.Mutex
	entries  *simplelru.LRU
	maxCache int
	gen      uint64
}

type mapEntry struct {
	res   *Response
	timer *time.Timer
	gen   uint64
}

// NewMapCache returns a FIFO cache bounded to maxCache entries.
// Zero means unbounded.
func NewMapCache(maxCache int) *MapCache {
	c := &MapCache{maxCache: maxCache}
	// capacity is enforced in Set, the LRU itself never evicts
	c.entries, _ = simplelru.NewLRU(math.MaxInt32, c.onEvict)
	return c
}

func (c *MapCache) onEvict(_ interface{}, value interface{}) {
	if e, ok := value.(*mapEntry); ok && e.timer != nil {
		e.timer.Stop()
	}
}

// Get returns the snapshot stored under key
func (c *MapCache) Get(key string) (*Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries.Peek(key)
	if !ok {
		return nil, false
	}
	return v.(*mapEntry).res, true
}

// Set stores res under key.
// A new key evicts the oldest entry first when the cache is full.
// An existing key keeps its place and gets a fresh timer.
func (c *MapCache) Set(key string, res *Response, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	e := &mapEntry{res: res, gen: c.gen}
	if v, ok := c.entries.Peek(key); ok {
		old := v.(*mapEntry)
		if old.timer != nil {
			old.timer.Stop()
		}
		// swap the value in place, Add would move the key to the front
		*old = *e
		e = old
	} else {
		if c.maxCache > 0 && c.entries.Len() >= c.maxCache {
			c.entries.RemoveOldest()
		}
		c.entries.Add(key, e)
	}

	if ttl > 0 {
		gen := e.gen
		e.timer = time.AfterFunc(ttl, func() {
			c.expire(key, gen)
		})
	}
}

// expire removes key only if it still holds the value the timer was set for
func (c *MapCache) expire(key string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries.Peek(key)
	if !ok {
		return
	}
	if v.(*mapEntry).gen == gen {
		c.entries.Remove(key)
	}
}

// Delete removes key and stops its timer
func (c *MapCache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Remove(key)
}

// Clear removes every entry and stops every pending timer
func (c *MapCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
}

// Len returns the number of entries
func (c *MapCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// SetMaxCache changes the bound. Existing entries above it are evicted,
// oldest first.
func (c *MapCache) SetMaxCache(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxCache = n
	for n > 0 && c.entries.Len() > n {
		c.entries.RemoveOldest()
	}
}

// Keys returns the cached keys, oldest first
func (c *MapCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := c.entries.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.(string))
	}
	return out
}
