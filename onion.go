package onionfetch

import (
	"sync"
)

// Pool identifies one of the four middleware pools
type Pool int

const (
	PoolInstance Pool = iota
	PoolDefaultInstance
	PoolGlobal
	PoolCore
)

// UseOptions selects the pool a middleware is registered in.
// When several flags are set the first of Global, Core, DefaultInstance wins.
// The zero value registers on the instance.
type UseOptions struct {
	Global          bool
	Core            bool
	DefaultInstance bool
}

func (o UseOptions) pool() Pool {
	switch {
	case o.Global:
		return PoolGlobal
	case o.Core:
		return PoolCore
	case o.DefaultInstance:
		return PoolDefaultInstance
	default:
		return PoolInstance
	}
}

// Onion owns the instance and default-instance pools of one client and
// shares the global and core pools of its Registry.
type Onion struct {
	mu              sync.RWMutex
	middlewares     []Middleware
	defaultInstance []Middleware
	registry        *Registry
}

// NewOnion returns an onion with the given default-instance middlewares.
// A nil registry means DefaultRegistry.
func NewOnion(registry *Registry, defaults ...Middleware) *Onion {
	if registry == nil {
		registry = DefaultRegistry
	}
	return &Onion{
		defaultInstance: append([]Middleware(nil), defaults...),
		registry:        registry,
	}
}

// Use registers m in the pool selected by opts.
// Global and core middlewares are inserted ahead of the built-in ones.
func (o *Onion) Use(m Middleware, opts UseOptions) {
	switch opts.pool() {
	case PoolGlobal:
		o.registry.useGlobal(m)
	case PoolCore:
		o.registry.useCore(m)
	case PoolDefaultInstance:
		o.mu.Lock()
		o.defaultInstance = append(o.defaultInstance, m)
		o.mu.Unlock()
	default:
		o.mu.Lock()
		o.middlewares = append(o.middlewares, m)
		o.mu.Unlock()
	}
}

// Middlewares returns a snapshot of all four pools
func (o *Onion) Middlewares() map[Pool][]Middleware {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return map[Pool][]Middleware{
		PoolInstance:        append([]Middleware(nil), o.middlewares...),
		PoolDefaultInstance: append([]Middleware(nil), o.defaultInstance...),
		PoolGlobal:          o.registry.Global(),
		PoolCore:            o.registry.Core(),
	}
}

// Execute composes instance, default-instance, global and core
// middlewares, in that order, and runs the chain once against ctx.
func (o *Onion) Execute(ctx *Context) error {
	o.mu.RLock()
	all := make([]Middleware, 0, len(o.middlewares)+len(o.defaultInstance)+8)
	all = append(all, o.middlewares...)
	all = append(all, o.defaultInstance...)
	o.mu.RUnlock()
	all = append(all, o.registry.Global()...)
	all = append(all, o.registry.Core()...)

	chain, err := Compose(all)
	if err != nil {
		return err
	}
	return chain(ctx, nil)
}
