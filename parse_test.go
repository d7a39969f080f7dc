package onionfetch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestParseResponseTypes(t *testing.T) {
	tr := &recorder{body: `{"a":1}`}
	c := newTestClient(tr, Options{})
	ctx := context.Background()

	v, err := c.Get(ctx, "/", WithResponseType("text"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, v)

	v, err = c.Get(ctx, "/", WithResponseType("blob"))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), v)

	v, err = c.Get(ctx, "/", WithResponseType("arrayBuffer"))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), v)

	_, err = c.Get(ctx, "/", WithResponseType("formData"))
	var resErr *ResponseError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, ErrorTypeParse, resErr.Type)
	assert.Equal(t, "responseType not support", resErr.Message)
}

func TestParseJSONFailure(t *testing.T) {
	tr := &recorder{body: `not json`}
	c := newTestClient(tr, Options{})
	ctx := context.Background()

	v, err := c.Get(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, "not json", v)

	_, err = c.Get(ctx, "/", WithThrowErrIfParseFail())
	assert.ErrorIs(t, err, &ResponseError{Type: ErrorTypeParse})
	var resErr *ResponseError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "not json", resErr.Data)
}

func TestParseGBK(t *testing.T) {
	body, err := simplifiedchinese.GBK.NewEncoder().String(`{"greeting":"你好"}`)
	require.NoError(t, err)
	c := newTestClient(&recorder{body: body}, Options{})

	v, err := c.Get(context.Background(), "/", WithCharset("gbk"))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"greeting": "你好"}, v)
}

func TestParseRawAndResult(t *testing.T) {
	tr := &recorder{status: 201, body: `[1,2]`}
	c := newTestClient(tr, Options{})
	ctx := context.Background()

	v, err := c.Get(ctx, "/", WithRawResponse())
	require.NoError(t, err)
	res, ok := v.(*Response)
	require.True(t, ok)
	assert.Equal(t, 201, res.Status)

	v, err = c.Get(ctx, "/", WithGetResponse())
	require.NoError(t, err)
	result := v.(*Result)
	assert.Equal(t, []interface{}{float64(1), float64(2)}, result.Data)
	assert.Equal(t, "Created", result.Response.StatusText)
}

// Raw responses are returned as is, even for error statuses
func TestParseRawHTTPError(t *testing.T) {
	c := newTestClient(&recorder{status: 503, body: `down`}, Options{})
	v, err := c.Get(context.Background(), "/", WithRawResponse())
	require.NoError(t, err)
	assert.Equal(t, 503, v.(*Response).Status)
}

// Unknown failures are annotated with the request they occurred on
func TestParseAnnotatesErrors(t *testing.T) {
	c := newTestClient(&recorder{body: `{}`}, Options{})
	c.Use(func(ctx *Context, next Next) error {
		panic("core failure")
	}, UseOptions{Core: true})
	_, err := c.Get(context.Background(), "/annotated")
	var annotated *AnnotatedError
	require.ErrorAs(t, err, &annotated)
	assert.Equal(t, "/annotated", annotated.Request.URL)
	var pe *PanicError
	assert.ErrorAs(t, err, &pe)
}
