package onionfetch

import (
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

// Cache is the interface for response cache drivers
type Cache interface {
	// Get returns the snapshot stored under key
	Get(key string) (*Response, bool)

	// Set stores res under key. A zero ttl never expires.
	Set(key string, res *Response, ttl time.Duration)

	// Delete removes key and reports whether it was present
	Delete(key string) bool

	// Clear removes every entry
	Clear()

	// Len returns the number of objects stored in the cache
	Len() int

	// SetMaxCache bounds the number of entries. Zero means unbounded.
	SetMaxCache(n int)
}

// CacheKey identifies a cached response
type CacheKey struct {
	URL    string     `json:"url"`
	Params url.Values `json:"params"`
	Method string     `json:"method"`
}

// String returns the canonical form of the key. Map keys are sorted so
// logically equal keys always serialise identically.
func (k CacheKey) String() string {
	if len(k.Params) == 0 {
		k.Params = nil
	}
	b, err := json.Marshal(k)
	if err != nil {
		return k.Method + " " + k.URL
	}
	return string(b)
}
