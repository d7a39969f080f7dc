package onionfetch

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Logically equal keys serialise identically
func TestCacheKeyCanonical(t *testing.T) {
	a := url.Values{}
	a.Set("b", "2")
	a.Set("a", "1")
	b := url.Values{}
	b.Set("a", "1")
	b.Set("b", "2")

	k1 := CacheKey{URL: "/x", Params: a, Method: "get"}.String()
	k2 := CacheKey{URL: "/x", Params: b, Method: "get"}.String()
	assert.Equal(t, k1, k2)
	assert.Equal(t, `{"url":"/x","params":{"a":["1"],"b":["2"]},"method":"get"}`, k1)

	assert.NotEqual(t, k1, CacheKey{URL: "/x", Params: a, Method: "post"}.String())
	assert.NotEqual(t, k1, CacheKey{URL: "/y", Params: a, Method: "get"}.String())
	assert.Equal(t,
		CacheKey{URL: "/x", Method: "get"}.String(),
		CacheKey{URL: "/x", Params: url.Values{}, Method: "get"}.String())
}

func TestNeedCache(t *testing.T) {
	ctx := func(o *Options, noCache bool) *Context {
		return &Context{Req: &Request{URL: "/x", Options: o}, Cache: NewMapCache(0), noCache: noCache}
	}
	assert.True(t, needCache(ctx(&Options{Method: "get", UseCache: true}, false)))
	assert.True(t, needCache(ctx(&Options{UseCache: true}, false)))
	assert.False(t, needCache(ctx(&Options{Method: "get"}, false)))
	assert.False(t, needCache(ctx(&Options{Method: "post", UseCache: true}, false)))
	assert.False(t, needCache(ctx(&Options{Method: "get", UseCache: true}, true)))
	assert.True(t, needCache(ctx(&Options{Method: "post", UseCache: true, ValidateCache: func(string, *Options) bool { return true }}, false)))

	noStore := ctx(&Options{Method: "get", UseCache: true}, false)
	noStore.Cache = nil
	assert.False(t, needCache(noStore))
}
