// Package reactive implements fine-grained dependency tracking for Eghact.
//
// State is held in explicit handles: a [Cell] over a map or slice, a [Ref]
// holding a single value, and a [Computed] deriving a value from other
// handles. Reads made while an [Effect] is running are recorded in a
// dependency graph keyed by (handle id, field). Writes that change a value
// re-run every subscribed effect synchronously.
//
// # Effects
//
//	state := reactive.NewCell(map[string]any{"count": 0})
//	var log []any
//	reactive.NewEffect(func() {
//	    log = append(log, state.Get("count"))
//	})
//	state.Set("count", 1) // log == [0 1]
//	state.Set("count", 1) // unchanged value, no re-run
//
// Effects detach from every dependency set before each run, so a branch that
// stops reading a field also stops being notified for it. A write performed
// by an effect to one of its own dependencies does not re-enter it.
//
// # Tracking scopes
//
// Each goroutine has its own scope stack. Nested effects and computed values
// push a scope on entry and restore the previous one on exit. Reads outside
// any scope, or inside [Untracked], are not recorded.
//
// # Scheduling
//
// There is no automatic batching. Pass [WithScheduler] to defer re-runs, for
// example into a [Queue] that deduplicates and flushes them in one pass.
//
// # Memory
//
// Each handle owns its subscriber sets. The package-level index used by
// [Stats] and [Subscribers] holds weak pointers only, so a handle captured by
// the effects that read it is collected together with them once neither is
// referenced from outside. A runtime cleanup then drops its index entry. The
// identity cache used by [Wrap] holds weak pointers too.
package reactive
