package onionfetch

import (
	"context"

	"go.uber.org/zap"
)

// Request is the url and merged options of one call
type Request struct {
	URL string

	// OriginURL is the url before query parameters were appended
	OriginURL string

	Options *Options
}

// Context is the mutable state threaded through one pipeline execution.
// It belongs to a single in-flight request and is discarded once the
// request settles.
type Context struct {
	Req *Request

	// Res starts nil. The core fetch middleware sets it to a *Response,
	// parseResponse replaces it with the decoded body.
	Res interface{}

	Cache                Cache
	ResponseInterceptors []ResponseInterceptor

	ctx        context.Context
	transport  Transport
	compressor Compressor
	monitor    Monitor
	logger     *zap.Logger
	noCache    bool
}

// Ctx returns the caller's context for this request
func (c *Context) Ctx() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// Logger returns the client logger, never nil
func (c *Context) Logger() *zap.Logger {
	if c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}

// Response returns Res as a *Response when it still holds one
func (c *Context) Response() (*Response, bool) {
	res, ok := c.Res.(*Response)
	return res, ok && res != nil
}

func (c *Context) options() *Options {
	if c.Req == nil || c.Req.Options == nil {
		return &Options{}
	}
	return c.Req.Options
}
