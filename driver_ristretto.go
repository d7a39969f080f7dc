package onionfetch

import (
	"time"
	"unsafe"

	"github.com/dgraph-io/ristretto"
)

var responseSize = int64(unsafe.Sizeof(Response{}))

// RistrettoCache is a driver implementation using github.com/dgraph-io/ristretto
// It is bounded by the estimated byte size of the cached responses rather
// than by entry count, and admission is TinyLFU based, so the FIFO order of
// MapCache is not preserved. SetMaxCache has no effect.
type RistrettoCache struct {
	Cache *ristretto.Cache
}

func calculateResponseCost(res *Response) int64 {
	s := responseSize

	// Estimate size of the map itself.
	s += 5*8 + int64(len(res.Header)*8)

	for k, vv := range res.Header {
		s += int64(len(k))
		for _, v := range vv {
			s += int64(len(v))
		}
	}

	s += int64(cap(res.Body)) + int64(len(res.URL)+len(res.StatusText))

	return s
}

// NewRistrettoCache returns a ristretto backed cache.
// items should be the number of items you expect to keep in the cache when full.
// Estimating this on the higher side is better.
// size determines the maximum number of bytes in the cache.
func NewRistrettoCache(items, size int64) *RistrettoCache {
	if size == 0 {
		size = 1
	}
	if items == 0 {
		items = size
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: items * 10,
		MaxCost:     size,
		BufferItems: 64,
		Metrics:     true, // Required to implement Len()
	})
	if err != nil {
		panic(err)
	}

	return &RistrettoCache{Cache: cache}
}

func (d *RistrettoCache) Get(key string) (*Response, bool) {
	r, ok := d.Cache.Get(key)
	if !ok || r == nil {
		return nil, false
	}
	return r.(*Response), true
}

// Set waits for the write buffer to drain so the entry is visible to the next Get
func (d *RistrettoCache) Set(key string, res *Response, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	d.Cache.SetWithTTL(key, res, calculateResponseCost(res), ttl)
	d.Cache.Wait()
}

// Delete checks presence with GetTTL so the lookup is not counted as a hit,
// and waits for the policy to apply the removal before returning.
func (d *RistrettoCache) Delete(key string) bool {
	_, ok := d.Cache.GetTTL(key)
	d.Cache.Del(key)
	d.Cache.Wait()
	return ok
}

func (d *RistrettoCache) Clear() {
	d.Cache.Clear()
}

// Len is keys added minus keys evicted from ristretto metrics.
// Deletes count as evictions and Clear resets both. Expired entries are
// only subtracted once ristretto's cleanup ticker removes them.
func (d *RistrettoCache) Len() int {
	return int(d.Cache.Metrics.KeysAdded() - d.Cache.Metrics.KeysEvicted())
}

func (d *RistrettoCache) SetMaxCache(int) {}
