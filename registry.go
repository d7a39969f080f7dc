package onionfetch

import (
	"sync"
)

// Registry holds the process-wide middleware pools and interceptors shared
// by every Client built on it. DefaultRegistry is used unless a Config
// supplies its own. Tests that register global or core middleware should
// call Reset between cases.
type Registry struct {
	mu                   sync.RWMutex
	global               []Middleware
	defaultGlobalLen     int
	core                 []Middleware
	defaultCoreLen       int
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// DefaultRegistry is the process-wide registry
var DefaultRegistry = NewRegistry()

// NewRegistry returns a registry holding only the built-in defaults
func NewRegistry() *Registry {
	r := &Registry{}
	r.Reset()
	return r
}

// Reset drops everything registered since construction and restores the
// built-in global middlewares (query encoding, body encoding, response
// parsing), the core fetch middleware and the prefix/suffix interceptor.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.global = []Middleware{encodeBodyMiddleware, encodeQueryMiddleware, parseResponseMiddleware}
	r.defaultGlobalLen = len(r.global)
	r.core = []Middleware{fetchMiddleware}
	r.defaultCoreLen = len(r.core)
	r.requestInterceptors = []RequestInterceptor{addfixInterceptor}
	r.responseInterceptors = nil
}

// useGlobal inserts m ahead of the built-in global middlewares
func (r *Registry) useGlobal(m Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.global = splice(r.global, len(r.global)-r.defaultGlobalLen, m)
}

// useCore inserts m ahead of the built-in core middlewares
func (r *Registry) useCore(m Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.core = splice(r.core, len(r.core)-r.defaultCoreLen, m)
}

func (r *Registry) requestUse(h RequestInterceptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requestInterceptors = append(r.requestInterceptors, h)
}

func (r *Registry) responseUse(h ResponseInterceptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responseInterceptors = append(r.responseInterceptors, h)
}

// Global returns a copy of the global pool
func (r *Registry) Global() []Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Middleware(nil), r.global...)
}

// Core returns a copy of the core pool
func (r *Registry) Core() []Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Middleware(nil), r.core...)
}

func (r *Registry) interceptors() ([]RequestInterceptor, []ResponseInterceptor) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]RequestInterceptor(nil), r.requestInterceptors...),
		append([]ResponseInterceptor(nil), r.responseInterceptors...)
}

func splice(s []Middleware, at int, m Middleware) []Middleware {
	if at < 0 {
		at = 0
	}
	out := make([]Middleware, 0, len(s)+1)
	out = append(out, s[:at]...)
	out = append(out, m)
	return append(out, s[at:]...)
}
