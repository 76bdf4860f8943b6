package reactive

import (
	"sync"

	"github.com/eghact/eghact/internal/routine"
)

// scope is one entry of a goroutine's tracking stack. A nil effect marks an
// untracked region.
type scope struct {
	effect *Effect
}

// trackingContext holds the scope stack of one goroutine.
type trackingContext struct {
	stack []scope
}

// trackingContexts maps goroutine id to its *trackingContext.
var trackingContexts sync.Map

func currentContext() (*trackingContext, uint64) {
	gid := routine.ID()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext), gid
	}
	return nil, gid
}

// activeEffect returns the effect whose scope is on top of the current
// goroutine's stack, or nil when tracking is inactive.
func activeEffect() *Effect {
	ctx, _ := currentContext()
	if ctx == nil || len(ctx.stack) == 0 {
		return nil
	}
	return ctx.stack[len(ctx.stack)-1].effect
}

// pushScope makes e the active effect and returns a func restoring the
// previous scope.
func pushScope(e *Effect) func() {
	ctx, gid := currentContext()
	if ctx == nil {
		ctx = &trackingContext{}
		trackingContexts.Store(gid, ctx)
	}
	ctx.stack = append(ctx.stack, scope{effect: e})

	return func() {
		top := len(ctx.stack) - 1
		ctx.stack[top] = scope{}
		ctx.stack = ctx.stack[:top]
		if len(ctx.stack) == 0 {
			trackingContexts.Delete(gid)
		}
	}
}

// IsTracking reports whether reads on the current goroutine are being
// recorded.
func IsTracking() bool {
	return activeEffect() != nil
}

// Untracked runs fn with dependency tracking paused. Reads inside fn do not
// subscribe the surrounding effect.
func Untracked(fn func()) {
	restore := pushScope(nil)
	defer restore()
	fn()
}

// UntrackedValue is Untracked for a function returning a value.
func UntrackedValue[T any](fn func() T) T {
	var v T
	Untracked(func() { v = fn() })
	return v
}
