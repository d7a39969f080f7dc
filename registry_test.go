package onionfetch

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samePointer(a, b Middleware) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func TestUseOptionsPool(t *testing.T) {
	assert.Equal(t, PoolInstance, UseOptions{}.pool())
	assert.Equal(t, PoolDefaultInstance, UseOptions{DefaultInstance: true}.pool())
	assert.Equal(t, PoolCore, UseOptions{Core: true, DefaultInstance: true}.pool())
	assert.Equal(t, PoolGlobal, UseOptions{Global: true, Core: true, DefaultInstance: true}.pool())
}

func TestRegistryDefaults(t *testing.T) {
	r := NewRegistry()
	global := r.Global()
	require.Len(t, global, 3)
	assert.True(t, samePointer(global[0], encodeBodyMiddleware))
	assert.True(t, samePointer(global[1], encodeQueryMiddleware))
	assert.True(t, samePointer(global[2], parseResponseMiddleware))
	core := r.Core()
	require.Len(t, core, 1)
	assert.True(t, samePointer(core[0], fetchMiddleware))
}

// User global and core middlewares are inserted ahead of the built-ins
func TestRegistrySplice(t *testing.T) {
	r := NewRegistry()
	o := NewOnion(r)
	var log []string
	a, b, c := trace(&log, "a"), trace(&log, "b"), trace(&log, "c")
	o.Use(a, UseOptions{Global: true})
	o.Use(b, UseOptions{Global: true})
	o.Use(c, UseOptions{Core: true})

	global := r.Global()
	require.Len(t, global, 5)
	assert.True(t, samePointer(global[0], a))
	assert.True(t, samePointer(global[1], b))
	assert.True(t, samePointer(global[4], parseResponseMiddleware))

	core := r.Core()
	require.Len(t, core, 2)
	assert.True(t, samePointer(core[0], c))
	assert.True(t, samePointer(core[1], fetchMiddleware))

	r.Reset()
	assert.Len(t, r.Global(), 3)
	assert.Len(t, r.Core(), 1)
}

// Execute runs instance, default instance, global and core pools in order
func TestOnionExecuteOrder(t *testing.T) {
	r := NewRegistry()
	var log []string
	o := NewOnion(r, trace(&log, "default"))
	o.Use(trace(&log, "core"), UseOptions{Core: true})
	o.Use(trace(&log, "global"), UseOptions{Global: true})
	o.Use(trace(&log, "instance1"), UseOptions{})
	o.Use(trace(&log, "instance2"), UseOptions{})
	o.Use(trace(&log, "default2"), UseOptions{DefaultInstance: true})

	require.NoError(t, o.Execute(&Context{}))
	assert.Equal(t, []string{
		"instance1", "instance2", "default", "default2", "global", "core",
		"core'", "global'", "default2'", "default'", "instance2'", "instance1'",
	}, log)
}

// Global pools are shared by onions on the same registry, instance pools are not
func TestOnionPoolsShared(t *testing.T) {
	r := NewRegistry()
	o1, o2 := NewOnion(r), NewOnion(r)
	o1.Use(trace(new([]string), "g"), UseOptions{Global: true})
	o1.Use(trace(new([]string), "i"), UseOptions{})

	p1, p2 := o1.Middlewares(), o2.Middlewares()
	assert.Len(t, p1[PoolInstance], 1)
	assert.Len(t, p2[PoolInstance], 0)
	assert.Len(t, p1[PoolGlobal], 4)
	assert.Len(t, p2[PoolGlobal], 4)
	assert.Len(t, NewRegistry().Global(), 3)
}

func TestOnionNilMiddleware(t *testing.T) {
	o := NewOnion(NewRegistry())
	o.Use(nil, UseOptions{})
	assert.ErrorIs(t, o.Execute(&Context{}), ErrInvalidMiddleware)
}
