package onionfetch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// fetchMiddleware is the built-in core middleware. It serves from the
// cache when allowed, otherwise races the transport against cancellation
// and timeout, runs the response interceptors and stores 2xx snapshots.
func fetchMiddleware(c *Context, next Next) error {
	if c == nil || c.Req == nil {
		return next()
	}
	o := c.options()
	monitor := c.monitor
	if monitor == nil {
		monitor = nopMonitor{}
	}
	log := c.Logger()

	cacheable := needCache(c)
	var key string
	if cacheable {
		key = getCacheKey(c)
		if cached, ok := c.Cache.Get(key); ok {
			res := cached.Clone()
			if c.compressor != nil {
				res = c.compressor.Expand(res)
			}
			res.FromCache = true
			monitor.Hit()
			log.Debug("cache_hit", zap.String("url", c.Req.URL), zap.String("key", key))
			c.Res = res
			return next()
		}
		monitor.Miss()
	}

	if c.transport == nil {
		return ErrNoTransport
	}
	monitor.Backend()
	res, err := race(c, o)
	if err != nil {
		switch {
		case IsCancel(err):
			monitor.Cancel()
			log.Debug("request_cancelled", zap.String("url", c.Req.URL), zap.Error(err))
		case IsTimeout(err):
			monitor.Timeout()
			log.Debug("request_timeout", zap.String("url", c.Req.URL), zap.Duration("timeout", o.Timeout))
		default:
			monitor.Error()
			log.Debug("transport_failed", zap.String("url", c.Req.URL), zap.Error(err))
		}
		return err
	}

	for _, h := range c.ResponseInterceptors {
		res, err = h(res.Clone(), o)
		if err != nil {
			return err
		}
		if res == nil {
			return ErrNilResponse
		}
	}

	if cacheable && res.OK() {
		snapshot := res.Clone()
		snapshot.FromCache = true
		if c.compressor != nil {
			snapshot = c.compressor.Compress(snapshot)
		}
		c.Cache.Set(key, snapshot, o.TTL)
		log.Debug("cache_store", zap.String("key", key), zap.Duration("ttl", o.TTL))
	}

	c.Res = res
	return next()
}

type fetchResult struct {
	res *Response
	err error
}

// race runs the transport and returns whichever settles first of the
// transport, the cancel token, the timeout and the caller's context.
// The transport context is cancelled on return so a losing call is
// abandoned, and its late result is dropped.
func race(c *Context, o *Options) (*Response, error) {
	ctx, cancel := context.WithCancel(c.Ctx())
	defer cancel()

	results := make(chan fetchResult, 1)
	url := c.Req.URL
	go func() {
		defer func() {
			if r := recover(); r != nil {
				results <- fetchResult{err: &PanicError{Value: r}}
			}
		}()
		res, err := c.transport.Fetch(ctx, url, o)
		results <- fetchResult{res, err}
	}()

	var cancelled <-chan struct{}
	if o.CancelToken != nil {
		cancelled = o.CancelToken.Done()
	}
	var timeout <-chan time.Time
	if o.Timeout > 0 {
		t := time.NewTimer(o.Timeout)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case r := <-results:
		if r.err != nil {
			if ctxErr := c.Ctx().Err(); ctxErr != nil {
				return nil, &RequestError{Type: ErrorTypeContextDone, Message: "context done", Request: c.Req, Cause: ctxErr}
			}
			return nil, &RequestError{Type: ErrorTypeRequest, Message: "transport failed", Request: c.Req, Cause: r.err}
		}
		if r.res == nil {
			return nil, &RequestError{Type: ErrorTypeRequest, Message: "transport returned no response", Request: c.Req}
		}
		return r.res, nil
	case <-cancelled:
		return nil, o.CancelToken.Reason()
	case <-timeout:
		return nil, &RequestError{
			Type:    ErrorTypeTimeout,
			Message: fmt.Sprintf("timeout of %dms exceeded", o.Timeout.Milliseconds()),
			Request: c.Req,
		}
	case <-c.Ctx().Done():
		return nil, &RequestError{Type: ErrorTypeContextDone, Message: "context done", Request: c.Req, Cause: c.Ctx().Err()}
	}
}
