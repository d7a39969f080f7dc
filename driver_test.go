package onionfetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResponse(body string) *Response {
	return NewResponse(200, nil, []byte(body))
}

// The oldest entry is evicted first once maxCache is reached
func TestMapCacheFIFO(t *testing.T) {
	c := NewMapCache(2)
	c.Set("a", testResponse("a"), 0)
	c.Set("b", testResponse("b"), 0)
	c.Get("a")
	c.Set("c", testResponse("c"), 0)

	_, ok := c.Get("a")
	assert.False(t, ok, "reading a key must not refresh it")
	assert.Equal(t, []string{"b", "c"}, c.Keys())
	assert.Equal(t, 2, c.Len())
}

// Re-setting a key replaces its value and keeps its place
func TestMapCacheOverwrite(t *testing.T) {
	c := NewMapCache(2)
	c.Set("a", testResponse("a1"), 0)
	c.Set("b", testResponse("b"), 0)
	c.Set("a", testResponse("a2"), 0)
	assert.Equal(t, 2, c.Len())
	res, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a2", res.Text())

	c.Set("c", testResponse("c"), 0)
	assert.Equal(t, []string{"b", "c"}, c.Keys())
}

func TestMapCacheUnbounded(t *testing.T) {
	c := NewMapCache(0)
	for _, k := range []string{"a", "b", "c", "d"} {
		c.Set(k, testResponse(k), 0)
	}
	assert.Equal(t, 4, c.Len())
}

func TestMapCacheTTL(t *testing.T) {
	c := NewMapCache(0)
	c.Set("forever", testResponse("x"), 0)
	c.Set("short", testResponse("y"), 50*time.Millisecond)
	c.Set("negative", testResponse("z"), -time.Second)

	_, ok := c.Get("short")
	assert.True(t, ok)
	assert.Eventually(t, func() bool {
		_, ok := c.Get("short")
		return !ok
	}, time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	_, ok = c.Get("forever")
	assert.True(t, ok)
	_, ok = c.Get("negative")
	assert.True(t, ok)
}

// An expiry timer never removes an entry set after it
func TestMapCacheTimerIdempotent(t *testing.T) {
	c := NewMapCache(0)
	c.Set("deleted", testResponse("old"), 30*time.Millisecond)
	assert.True(t, c.Delete("deleted"))
	assert.False(t, c.Delete("deleted"))
	c.Set("deleted", testResponse("new"), 0)

	c.Set("overwritten", testResponse("old"), 30*time.Millisecond)
	c.Set("overwritten", testResponse("new"), 0)

	time.Sleep(100 * time.Millisecond)
	res, ok := c.Get("deleted")
	require.True(t, ok)
	assert.Equal(t, "new", res.Text())
	res, ok = c.Get("overwritten")
	require.True(t, ok)
	assert.Equal(t, "new", res.Text())
}

func TestMapCacheClear(t *testing.T) {
	c := NewMapCache(0)
	c.Set("a", testResponse("a"), 30*time.Millisecond)
	c.Set("b", testResponse("b"), 0)
	c.Clear()
	assert.Equal(t, 0, c.Len())
	c.Set("a", testResponse("a"), 0)
	time.Sleep(60 * time.Millisecond)
	_, ok := c.Get("a")
	assert.True(t, ok)
}

func TestMapCacheSetMaxCache(t *testing.T) {
	c := NewMapCache(0)
	for _, k := range []string{"a", "b", "c", "d"} {
		c.Set(k, testResponse(k), 0)
	}
	c.SetMaxCache(2)
	assert.Equal(t, []string{"c", "d"}, c.Keys())
	c.Set("e", testResponse("e"), 0)
	assert.Equal(t, []string{"d", "e"}, c.Keys())
}

func TestRistrettoCache(t *testing.T) {
	c := NewRistrettoCache(100, 1<<20)
	c.Set("a", testResponse("a"), 0)
	res, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", res.Text())
	assert.Equal(t, 1, c.Len())

	assert.True(t, c.Delete("a"))
	_, ok = c.Get("a")
	assert.False(t, ok)

	c.Set("b", testResponse("b"), 0)
	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestRistrettoCacheLenAfterDelete(t *testing.T) {
	c := NewRistrettoCache(100, 1<<20)
	c.Set("a", testResponse("a"), 0)
	c.Set("b", testResponse("b"), 0)
	require.Equal(t, 2, c.Len())

	assert.True(t, c.Delete("a"))
	assert.Equal(t, 1, c.Len())
	assert.False(t, c.Delete("a"))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, uint64(0), c.Cache.Metrics.Hits())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestRistrettoCacheTTL(t *testing.T) {
	c := NewRistrettoCache(100, 1<<20)
	c.Set("a", testResponse("a"), 50*time.Millisecond)
	_, ok := c.Get("a")
	assert.True(t, ok)
	assert.Eventually(t, func() bool {
		_, ok := c.Get("a")
		return !ok
	}, 2*time.Second, 20*time.Millisecond)
}
