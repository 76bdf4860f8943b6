package component

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/eghact/eghact/internal/errors"
)

type contextEntry struct {
	value       any
	subscribers map[uint64]*Instance
}

var (
	contextIDs   atomic.Uint64
	contextsMu   sync.Mutex
	contextTable = make(map[uint64]*contextEntry)
)

// Context is a value pushed to subscribed instances. Instances subscribe by
// calling UseContext during render. Provide updates the value and
// re-renders every subscriber.
type Context[T any] struct {
	id  uint64
	def T
}

// CreateContext registers a context with a default value.
func CreateContext[T any](defaultValue T) *Context[T] {
	c := &Context[T]{id: contextIDs.Add(1), def: defaultValue}

	contextsMu.Lock()
	contextTable[c.id] = &contextEntry{
		value:       defaultValue,
		subscribers: make(map[uint64]*Instance),
	}
	contextsMu.Unlock()
	return c
}

// ID returns the context identifier.
func (c *Context[T]) ID() uint64 { return c.id }

// Default returns the value the context was created with.
func (c *Context[T]) Default() T { return c.def }

// Value returns the current value without subscribing. It panics with E020
// when the context has been released.
func (c *Context[T]) Value() T {
	var v any
	withContext(c.id, func(e *contextEntry) { v = e.value })
	return typed[T](v)
}

// Subscribers returns the number of subscribed instances.
func (c *Context[T]) Subscribers() int {
	var n int
	withContext(c.id, func(e *contextEntry) { n = len(e.subscribers) })
	return n
}

// Release unregisters the context. Later lookups panic with E020.
func (c *Context[T]) Release() {
	contextsMu.Lock()
	entry, ok := contextTable[c.id]
	delete(contextTable, c.id)
	contextsMu.Unlock()

	if !ok {
		return
	}
	for _, inst := range entry.subscribers {
		delete(inst.contexts, c.id)
	}
}

// withContext calls fn with the entry for id under the table lock. It
// panics with E020 when id is not registered.
func withContext(id uint64, fn func(*contextEntry)) {
	contextsMu.Lock()
	defer contextsMu.Unlock()

	entry, ok := contextTable[id]
	if !ok {
		panic(errors.New(errors.CodeUnknownContext).
			WithSubject("context " + strconv.FormatUint(id, 10)).
			WithSuggestion("Create the context with component.CreateContext and do not use it after Release"))
	}
	fn(entry)
}

func typed[T any](v any) T {
	t, _ := v.(T)
	return t
}

// UseContext subscribes the rendering instance to c and returns the
// current value.
func UseContext[T any](c *Context[T]) T {
	inst := hookInstance(hookContext)
	if prev, ok := inst.slot(hookContext); !ok {
		inst.store(hookContext, c.id)
	} else if inst.manager.debug && prev != any(c.id) {
		panic(errors.New(errors.CodeHookOrderChanged).
			WithSubject(inst.subject()).
			WithDetail(fmt.Sprintf("slot %d: UseContext read context %d, previously %v", inst.hooks.idx-1, c.id, prev)))
	}

	var v any
	withContext(c.id, func(e *contextEntry) {
		e.subscribers[inst.id] = inst
		v = e.value
	})
	inst.contexts[c.id] = struct{}{}
	return typed[T](v)
}

// Provide sets the value of c and re-renders every subscriber in instance
// id order, whether or not the value changed.
func Provide[T any](c *Context[T], value T) {
	var subs []*Instance
	withContext(c.id, func(e *contextEntry) {
		e.value = value
		for _, inst := range e.subscribers {
			subs = append(subs, inst)
		}
	})

	sort.Slice(subs, func(a, b int) bool { return subs[a].id < subs[b].id })
	for _, inst := range subs {
		inst.Update()
	}
}

func unsubscribeAll(inst *Instance) {
	contextsMu.Lock()
	defer contextsMu.Unlock()
	for id := range inst.contexts {
		if entry, ok := contextTable[id]; ok {
			delete(entry.subscribers, inst.id)
		}
	}
	inst.contexts = make(map[uint64]struct{})
}
