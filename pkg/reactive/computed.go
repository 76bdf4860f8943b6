package reactive

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// ValueField is the field under which reads of a Ref or Computed are
// tracked.
const ValueField = "value"

// Computed is a lazily evaluated derived value. The getter runs on the first
// Value call after a dependency changed and at most once between two
// invalidations.
type Computed[T any] struct {
	id     uint64
	subs   *subTable
	getter func() T
	effect *Effect

	mu    sync.RWMutex
	value T
	dirty atomic.Bool
}

// NewComputed creates a computed value. The getter is not run until the
// first Value call.
func NewComputed[T any](getter func() T) *Computed[T] {
	id := nextID()
	c := &Computed[T]{
		id:     id,
		subs:   newSubTable(id),
		getter: getter,
	}
	c.dirty.Store(true)

	c.effect = NewEffect(func() {
		v := getter()
		c.mu.Lock()
		c.value = v
		c.mu.Unlock()
	}, Lazy(), WithScheduler(func(*Effect) {
		if c.dirty.CompareAndSwap(false, true) {
			trigger(c.subs, ValueField)
		}
	}))
	c.effect.computed = true

	runtime.AddCleanup(c, func(id uint64) { deps.forget(id) }, id)
	return c
}

// Value returns the current value, recomputing it when dirty. The read is
// tracked so computed values compose with effects and other computed values.
func (c *Computed[T]) Value() T {
	if c.dirty.CompareAndSwap(true, false) {
		c.effect.Run()
	}
	track(c.subs, ValueField)

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Peek returns the cached value without tracking or recomputing.
func (c *Computed[T]) Peek() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Dirty reports whether the next Value call will recompute.
func (c *Computed[T]) Dirty() bool {
	return c.dirty.Load()
}

// ID returns the handle id used in the dependency graph.
func (c *Computed[T]) ID() uint64 {
	return c.id
}

// Stop detaches the computed value from its dependencies. The cached value
// stays readable.
func (c *Computed[T]) Stop() {
	c.effect.Stop()
}
