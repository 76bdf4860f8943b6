package component

import (
	"fmt"
	"sync"

	"github.com/eghact/eghact/internal/errors"
	"github.com/eghact/eghact/internal/routine"
	"github.com/eghact/eghact/pkg/reactive"
)

// hookKind identifies the hook that created a slot.
type hookKind uint8

const (
	hookState hookKind = iota + 1
	hookEffect
	hookRef
	hookComputed
	hookContext
)

func (h hookKind) String() string {
	switch h {
	case hookState:
		return "UseState"
	case hookEffect:
		return "UseEffect"
	case hookRef:
		return "UseRef"
	case hookComputed:
		return "UseComputed"
	case hookContext:
		return "UseContext"
	default:
		return "Unknown"
	}
}

// hookSlots is the ordered slot vector of an instance. idx is reset at the
// start of every render.
type hookSlots struct {
	values  []any
	kinds   []hookKind
	idx     int
	pending []func()
}

// renderStack is the stack of instances rendering on one goroutine.
type renderStack struct {
	items []*Instance
}

// rendering maps goroutine id to its *renderStack.
var rendering sync.Map

func pushRendering(i *Instance) func() {
	gid := routine.ID()
	v, _ := rendering.LoadOrStore(gid, &renderStack{})
	s := v.(*renderStack)
	s.items = append(s.items, i)

	return func() {
		s.items = s.items[:len(s.items)-1]
		if len(s.items) == 0 {
			rendering.Delete(gid)
		}
	}
}

// Current returns the instance rendering on this goroutine, or nil.
func Current() *Instance {
	v, ok := rendering.Load(routine.ID())
	if !ok {
		return nil
	}
	s := v.(*renderStack)
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

func hookInstance(kind hookKind) *Instance {
	inst := Current()
	if inst == nil {
		panic(errors.New(errors.CodeHookOutsideRender).WithSubject(kind.String()))
	}
	return inst
}

func (i *Instance) beginHooks() {
	i.hooks.idx = 0
}

func (i *Instance) endHooks() {
	if !i.manager.debug || i.renders == 0 {
		return
	}
	if i.hooks.idx < len(i.hooks.values) {
		panic(errors.New(errors.CodeHookOrderChanged).
			WithSubject(i.subject()).
			WithDetail(fmt.Sprintf("expected %d hooks, got %d", len(i.hooks.values), i.hooks.idx)))
	}
}

// slot consumes the next slot. It returns false when the slot is new.
func (i *Instance) slot(kind hookKind) (any, bool) {
	idx := i.hooks.idx
	i.hooks.idx++

	if idx < len(i.hooks.values) {
		if i.manager.debug && i.hooks.kinds[idx] != kind {
			panic(errors.New(errors.CodeHookOrderChanged).
				WithSubject(i.subject()).
				WithDetail(fmt.Sprintf("slot %d: expected %s, got %s", idx, i.hooks.kinds[idx], kind)))
		}
		return i.hooks.values[idx], true
	}
	if i.manager.debug && i.renders > 0 {
		panic(errors.New(errors.CodeHookOrderChanged).
			WithSubject(i.subject()).
			WithDetail(fmt.Sprintf("extra %s hook at slot %d", kind, idx)))
	}
	return nil, false
}

func (i *Instance) store(kind hookKind, v any) {
	i.hooks.values = append(i.hooks.values, v)
	i.hooks.kinds = append(i.hooks.kinds, kind)
}

func (i *Instance) runPendingEffects() {
	pending := i.hooks.pending
	i.hooks.pending = nil
	for _, fn := range pending {
		fn()
	}
}

func slotMismatch(kind hookKind, v any) *errors.EghactError {
	return errors.New(errors.CodeHookSlotMismatch).
		WithSubject(kind.String()).
		WithDetail(fmt.Sprintf("slot holds %T", v))
}

// UseState returns the value of a state slot and a setter. Setting a
// different value re-renders the instance.
func UseState[T any](initial T) (T, func(T)) {
	inst := hookInstance(hookState)
	v, ok := inst.slot(hookState)
	if !ok {
		r := reactive.NewRef(initial)
		inst.store(hookState, r)
		return r.Value(), r.Set
	}
	r, ok := v.(*reactive.Ref[T])
	if !ok {
		panic(slotMismatch(hookState, v))
	}
	return r.Value(), r.Set
}

type effectSlot struct {
	deps    []any
	cleanup func()
}

func (s *effectSlot) release() {
	if s.cleanup != nil {
		c := s.cleanup
		s.cleanup = nil
		c()
	}
}

// UseEffect runs fn after the render is patched in, on the first render and
// whenever an element of deps differs from the previous render's. With no
// deps fn runs once. The cleanup fn returns, if any, runs before the next
// invocation and on unmount.
func UseEffect(fn func() func(), deps ...any) {
	inst := hookInstance(hookEffect)
	v, ok := inst.slot(hookEffect)

	var s *effectSlot
	if !ok {
		s = &effectSlot{}
		inst.store(hookEffect, s)
		inst.OnCleanup(s.release)
	} else {
		s, ok = v.(*effectSlot)
		if !ok {
			panic(slotMismatch(hookEffect, v))
		}
		if sameDeps(s.deps, deps) {
			return
		}
	}

	s.deps = append([]any(nil), deps...)
	inst.hooks.pending = append(inst.hooks.pending, func() {
		s.release()
		s.cleanup = fn()
	})
}

func sameDeps(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reactive.Identical(a[i], b[i]) {
			return false
		}
	}
	return true
}

// RefBox is a mutable box that survives re-renders without triggering them.
type RefBox[T any] struct {
	Current T
}

// UseRef returns the instance's box for this slot, created with initial on
// the first render.
func UseRef[T any](initial T) *RefBox[T] {
	inst := hookInstance(hookRef)
	v, ok := inst.slot(hookRef)
	if !ok {
		b := &RefBox[T]{Current: initial}
		inst.store(hookRef, b)
		return b
	}
	b, ok := v.(*RefBox[T])
	if !ok {
		panic(slotMismatch(hookRef, v))
	}
	return b
}

// UseComputed returns a computed value owned by the instance. The getter of
// the first render is kept; later getters are ignored.
func UseComputed[T any](getter func() T) *reactive.Computed[T] {
	inst := hookInstance(hookComputed)
	v, ok := inst.slot(hookComputed)
	if !ok {
		c := reactive.NewComputed(getter)
		inst.store(hookComputed, c)
		inst.OnCleanup(c.Stop)
		return c
	}
	c, ok := v.(*reactive.Computed[T])
	if !ok {
		panic(slotMismatch(hookComputed, v))
	}
	return c
}
