package reactive

import (
	"runtime"
	"sync"
)

// Ref is a reactive cell holding a single value.
type Ref[T any] struct {
	id    uint64
	subs  *subTable
	mu    sync.RWMutex
	value T
	equal func(a, b T) bool
}

// NewRef creates a ref holding initial.
func NewRef[T any](initial T) *Ref[T] {
	id := nextID()
	r := &Ref[T]{id: id, subs: newSubTable(id), value: initial}
	runtime.AddCleanup(r, func(id uint64) { deps.forget(id) }, r.id)
	return r
}

// WithEquals sets the equality used to decide whether Set changes the
// value. The default compares like Cell writes do.
func (r *Ref[T]) WithEquals(fn func(a, b T) bool) *Ref[T] {
	r.equal = fn
	return r
}

// ID returns the handle id used in the dependency graph.
func (r *Ref[T]) ID() uint64 {
	return r.id
}

// Value returns the held value, tracking the read.
func (r *Ref[T]) Value() T {
	track(r.subs, ValueField)
	return r.Peek()
}

// Peek returns the held value without tracking.
func (r *Ref[T]) Peek() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set replaces the value and notifies subscribers when it changed.
func (r *Ref[T]) Set(v T) {
	r.mu.Lock()
	if r.same(r.value, v) {
		r.mu.Unlock()
		return
	}
	r.value = v
	r.mu.Unlock()

	trigger(r.subs, ValueField)
}

// Update sets the value to fn(current).
func (r *Ref[T]) Update(fn func(T) T) {
	r.Set(fn(r.Peek()))
}

func (r *Ref[T]) same(a, b T) bool {
	if r.equal != nil {
		return r.equal(a, b)
	}
	return sameValue(a, b)
}
