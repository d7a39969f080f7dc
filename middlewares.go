package onionfetch

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RequestIDHeader is set by the RequestID middleware
const RequestIDHeader = "X-Request-Id"

// RequestID returns a middleware that tags every request with a random
// X-Request-Id header unless the caller already set one.
func RequestID() Middleware {
	return func(c *Context, next Next) error {
		if c == nil || c.Req == nil {
			return next()
		}
		o := c.options()
		if o.Headers == nil {
			o.Headers = map[string]string{}
		}
		setDefaultHeader(o.Headers, RequestIDHeader, uuid.NewString())
		return next()
	}
}

// RateLimit returns a middleware that waits on limiter before letting the
// request continue. The wait is bounded by the request's context.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(c *Context, next Next) error {
		if c == nil || limiter == nil {
			return next()
		}
		if err := limiter.Wait(c.Ctx()); err != nil {
			c.Logger().Debug("rate_limit_wait_failed", zap.Error(err))
			return &RequestError{Type: ErrorTypeContextDone, Message: "rate limit wait", Request: c.Req, Cause: err}
		}
		return next()
	}
}
