package onionfetch

// Next advances the chain to the following middleware
type Next func() error

// Middleware is one layer of the onion. It may do work before and after
// calling next, or return without calling it to stop the chain.
type Middleware func(ctx *Context, next Next) error

// Chain runs a composed middleware sequence against ctx. When the sequence
// is exhausted the terminal middleware, if any, runs last.
type Chain func(ctx *Context, terminal Middleware) error

// Compose combines middlewares into a single Chain.
// next may be called at most once per middleware invocation and only
// forward; a second call fails with ErrNextCalledMultiple.
// A panic inside a middleware is recovered and returned as a *PanicError.
func Compose(middlewares []Middleware) (Chain, error) {
	for _, m := range middlewares {
		if m == nil {
			return nil, ErrInvalidMiddleware
		}
	}
	mws := make([]Middleware, len(middlewares))
	copy(mws, middlewares)

	return func(ctx *Context, terminal Middleware) error {
		index := -1
		var violation error
		var dispatch func(i int) error
		dispatch = func(i int) (err error) {
			if i <= index {
				violation = ErrNextCalledMultiple
				return violation
			}
			index = i

			var fn Middleware
			if i < len(mws) {
				fn = mws[i]
			} else if i == len(mws) {
				fn = terminal
			}
			if fn == nil {
				return nil
			}

			defer func() {
				if r := recover(); r != nil {
					err = &PanicError{Value: r}
				}
			}()
			return fn(ctx, func() error { return dispatch(i + 1) })
		}
		if err := dispatch(0); err != nil {
			return err
		}
		// a middleware that swallowed the error from a second next still fails the chain
		return violation
	}, nil
}
