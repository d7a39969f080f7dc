package onionfetch

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeQuery(t *testing.T) {
	tr := &recorder{body: `{}`}
	c := newTestClient(tr, Options{})
	ctx := context.Background()

	_, err := c.Get(ctx, "/p", WithParams(url.Values{"b": {"x y"}, "a": {"1", "2"}}))
	require.NoError(t, err)
	assert.Equal(t, "/p?a=1&a=2&b=x+y", tr.lastURL())

	_, err = c.Get(ctx, "/p?z=1", WithParam("a", "1"))
	require.NoError(t, err)
	assert.Equal(t, "/p?z=1&a=1", tr.lastURL())

	_, err = c.Get(ctx, "/p", WithParam("a", "1"), WithParamsSerializer(func(v url.Values) string {
		return "custom=" + v.Get("a")
	}))
	require.NoError(t, err)
	assert.Equal(t, "/p?custom=1", tr.lastURL())

	_, err = c.Get(ctx, "/p")
	require.NoError(t, err)
	assert.Equal(t, "/p", tr.lastURL())
}

func TestEncodeQueryOriginURL(t *testing.T) {
	var origin string
	c := newTestClient(&recorder{body: `{}`}, Options{})
	c.Use(func(ctx *Context, next Next) error {
		err := next()
		origin = ctx.Req.OriginURL
		return err
	}, UseOptions{})
	_, err := c.Get(context.Background(), "/p", WithParam("a", "1"))
	require.NoError(t, err)
	assert.Equal(t, "/p", origin)
}

func TestEncodeBodyJSON(t *testing.T) {
	tr := &recorder{body: `{}`}
	c := newTestClient(tr, Options{})
	_, err := c.Post(context.Background(), "/items", WithData(map[string]interface{}{"name": "onion", "layers": 3}))
	require.NoError(t, err)
	o := tr.lastOptions()
	assert.JSONEq(t, `{"name":"onion","layers":3}`, string(o.Body))
	assert.Equal(t, contentTypeJSON, o.Headers["Content-Type"])
	assert.Equal(t, "application/json", o.Headers["Accept"])
}

func TestEncodeBodyForm(t *testing.T) {
	tr := &recorder{body: `{}`}
	c := newTestClient(tr, Options{})
	ctx := context.Background()

	_, err := c.Put(ctx, "/items", WithRequestType("form"), WithData(map[string]string{"a": "1", "b": "x y"}))
	require.NoError(t, err)
	assert.Equal(t, "a=1&b=x+y", string(tr.lastOptions().Body))
	assert.Equal(t, contentTypeForm, tr.lastOptions().Headers["Content-Type"])

	_, err = c.Patch(ctx, "/items", WithData(url.Values{"q": {"go"}}))
	require.NoError(t, err)
	assert.Equal(t, "q=go", string(tr.lastOptions().Body))

	_, err = c.Post(ctx, "/items", WithRequestType("form"), WithData(struct{ A int }{1}))
	assert.ErrorIs(t, err, &RequestError{Type: ErrorTypeRequest})
	assert.Equal(t, 2, tr.count())
}

func TestEncodeBodyPassthrough(t *testing.T) {
	tr := &recorder{body: `{}`}
	c := newTestClient(tr, Options{})
	ctx := context.Background()

	_, err := c.Post(ctx, "/raw", WithData("plain text"), WithHeader("content-type", "text/plain"))
	require.NoError(t, err)
	o := tr.lastOptions()
	assert.Equal(t, "plain text", string(o.Body))
	assert.Equal(t, "text/plain", o.Headers["content-type"])

	_, err = c.Post(ctx, "/raw", WithData(map[string]int{"a": 1}), WithHeader("Content-Type", "application/vnd.api+json"))
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.api+json", tr.lastOptions().Headers["Content-Type"])

	_, err = c.Get(ctx, "/get", WithData(map[string]int{"a": 1}))
	require.NoError(t, err)
	assert.Empty(t, tr.lastOptions().Body)

	_, err = c.Post(ctx, "/body", WithBody([]byte("keep")), WithData(map[string]int{"a": 1}))
	require.NoError(t, err)
	assert.Equal(t, "keep", string(tr.lastOptions().Body))
}
