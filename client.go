// Package onionfetch is an HTTP client built around an onion of middleware.
// Requests pass through request interceptors, then through the instance,
// default-instance, global and core middleware pools; the core fetch
// middleware consults the response cache and races the transport against
// cancellation and timeout.
package onionfetch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	// Options are the instance defaults every request starts from
	Options Options

	// Transport performs the network call
	// Default: NewHTTPTransport(http.DefaultClient)
	Transport Transport

	// Cache stores 2xx responses of cacheable requests
	// Default: MapCache bounded by Options.MaxCache
	Cache Cache

	// Compressor is an optional parameter which compresses cached snapshots
	// Default: nil
	Compressor Compressor

	// Monitor is an optional parameter which will periodically report statistics
	// about the cache and the transport once Start is called.
	// Stats.Size comes from Cache.Len, which for RistrettoCache still counts
	// expired entries until ristretto's periodic cleanup drops them.
	// Default: nil
	Monitor Monitor

	// Logger receives debug events for cache hits, stores, timeouts and cancellations
	// Default: zap.NewNop()
	Logger *zap.Logger

	// DisableCache turns caching off regardless of per-request options
	// Default: false
	DisableCache bool

	// Registry holds the global and core middleware pools
	// Default: DefaultRegistry
	Registry *Registry
}

// Client executes requests through its middleware onion
type Client struct {
	mu                   sync.RWMutex
	options              Options
	onion                *Onion
	registry             *Registry
	cache                Cache
	transport            Transport
	compressor           Compressor
	monitor              Monitor
	logger               *zap.Logger
	noCache              bool
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
	stop                 chan struct{}
}

// New creates and returns a configured client
func New(o Config) *Client {
	c := &Client{
		options:    o.Options,
		registry:   o.Registry,
		cache:      o.Cache,
		transport:  o.Transport,
		compressor: o.Compressor,
		monitor:    o.Monitor,
		logger:     o.Logger,
		noCache:    o.DisableCache,
	}
	if c.registry == nil {
		c.registry = DefaultRegistry
	}
	if c.cache == nil {
		c.cache = NewMapCache(o.Options.MaxCache)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(nil)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.onion = NewOnion(c.registry)
	return c
}

// Start launches the monitor loop, if a Monitor with a positive interval is configured
func (c *Client) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.monitor == nil || c.monitor.GetInterval() <= 0 || c.stop != nil {
		return
	}
	c.stop = make(chan struct{})
	go func(stop chan struct{}, m Monitor) {
		ticker := time.NewTicker(m.GetInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Log(Stats{Size: c.cache.Len()})
			case <-stop:
				return
			}
		}
	}(c.stop, c.monitor)
}

// Stop terminates the monitor loop
func (c *Client) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

// Request runs url through the interceptors and the middleware onion.
// It resolves with the decoded body, a *Result when GetResponse is set,
// or the *Response itself when RawResponse is set.
func (c *Client) Request(ctx context.Context, url string, opts ...RequestOption) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.RLock()
	o := mergeOptions(c.options, opts...)
	reqInterceptors := append([]RequestInterceptor(nil), c.requestInterceptors...)
	resInterceptors := append([]ResponseInterceptor(nil), c.responseInterceptors...)
	c.mu.RUnlock()

	globalReq, globalRes := c.registry.interceptors()
	req := &Request{URL: url, Options: o}
	fc := &Context{
		Req:                  req,
		Cache:                c.cache,
		ResponseInterceptors: append(globalRes, resInterceptors...),
		ctx:                  ctx,
		transport:            c.transport,
		compressor:           c.compressor,
		monitor:              c.monitor,
		logger:               c.logger,
		noCache:              c.noCache,
	}

	err := runRequestInterceptors(req, append(globalReq, reqInterceptors...))
	if err == nil {
		err = c.onion.Execute(fc)
	}
	if err == nil {
		return fc.Res, nil
	}

	if h := fc.options().ErrorHandler; h != nil {
		return h(err)
	}
	return nil, err
}

// Get issues a get request
func (c *Client) Get(ctx context.Context, url string, opts ...RequestOption) (interface{}, error) {
	return c.Request(ctx, url, withMethod(opts, "get")...)
}

// Post issues a post request
func (c *Client) Post(ctx context.Context, url string, opts ...RequestOption) (interface{}, error) {
	return c.Request(ctx, url, withMethod(opts, "post")...)
}

// Put issues a put request
func (c *Client) Put(ctx context.Context, url string, opts ...RequestOption) (interface{}, error) {
	return c.Request(ctx, url, withMethod(opts, "put")...)
}

// Patch issues a patch request
func (c *Client) Patch(ctx context.Context, url string, opts ...RequestOption) (interface{}, error) {
	return c.Request(ctx, url, withMethod(opts, "patch")...)
}

// Delete issues a delete request
func (c *Client) Delete(ctx context.Context, url string, opts ...RequestOption) (interface{}, error) {
	return c.Request(ctx, url, withMethod(opts, "delete")...)
}

// Head issues a head request
func (c *Client) Head(ctx context.Context, url string, opts ...RequestOption) (interface{}, error) {
	return c.Request(ctx, url, withMethod(opts, "head")...)
}

// Options issues an options request
func (c *Client) Options(ctx context.Context, url string, opts ...RequestOption) (interface{}, error) {
	return c.Request(ctx, url, withMethod(opts, "options")...)
}

// RPC issues a request with the rpc method, for transports that understand it
func (c *Client) RPC(ctx context.Context, url string, opts ...RequestOption) (interface{}, error) {
	return c.Request(ctx, url, withMethod(opts, "rpc")...)
}

// Use registers m in the pool selected by opts
func (c *Client) Use(m Middleware, opts UseOptions) *Client {
	c.onion.Use(m, opts)
	return c
}

// RequestUse registers a request interceptor on the client,
// or on its registry when opts.Global is set
func (c *Client) RequestUse(h RequestInterceptor, opts InterceptorOptions) error {
	if h == nil {
		return ErrInvalidInterceptor
	}
	if opts.Global {
		c.registry.requestUse(h)
		return nil
	}
	c.mu.Lock()
	c.requestInterceptors = append(c.requestInterceptors, h)
	c.mu.Unlock()
	return nil
}

// ResponseUse registers a response interceptor on the client,
// or on its registry when opts.Global is set
func (c *Client) ResponseUse(h ResponseInterceptor, opts InterceptorOptions) error {
	if h == nil {
		return ErrInvalidInterceptor
	}
	if opts.Global {
		c.registry.responseUse(h)
		return nil
	}
	c.mu.Lock()
	c.responseInterceptors = append(c.responseInterceptors, h)
	c.mu.Unlock()
	return nil
}

// ExtendOptions applies opts to the instance defaults of every later request.
// A changed MaxCache resizes the cache.
func (c *Client) ExtendOptions(opts ...RequestOption) {
	c.mu.Lock()
	o := mergeOptions(c.options, opts...)
	c.options = *o
	c.mu.Unlock()
	c.cache.SetMaxCache(o.MaxCache)
}

// Middlewares returns a snapshot of the four middleware pools
func (c *Client) Middlewares() map[Pool][]Middleware {
	return c.onion.Middlewares()
}

// Cache returns the response cache of the client
func (c *Client) Cache() Cache {
	return c.cache
}

func withMethod(opts []RequestOption, method string) []RequestOption {
	out := make([]RequestOption, 0, len(opts)+1)
	out = append(out, opts...)
	return append(out, WithMethod(method))
}
