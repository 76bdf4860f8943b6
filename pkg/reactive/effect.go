package reactive

import "sync/atomic"

// Effect is a re-runnable computation subscribed to the handles it reads.
//
// An effect detaches from every dependency set before each run and records
// the sets it reads during the run. When one of them changes the effect is
// re-run synchronously, or handed to its scheduler when one is set.
type Effect struct {
	id uint64

	fn        func()
	scheduler func(*Effect)
	onStop    func()

	// computed marks effects backing a Computed; they are notified before
	// plain effects so derived values are dirty when those read them.
	computed bool

	// deps are the sets this effect is a member of, guarded by deps.mu.
	deps []*depSet

	running atomic.Bool
	stopped atomic.Bool
	runs    atomic.Uint64
}

// EffectOption configures an Effect.
type EffectOption func(*effectConfig)

type effectConfig struct {
	lazy      bool
	scheduler func(*Effect)
	onStop    func()
}

// Lazy creates the effect without running it. Call Run to start tracking.
func Lazy() EffectOption {
	return func(c *effectConfig) { c.lazy = true }
}

// WithScheduler hands re-runs to fn instead of running the effect
// immediately. fn is expected to call Run eventually.
func WithScheduler(fn func(*Effect)) EffectOption {
	return func(c *effectConfig) { c.scheduler = fn }
}

// OnStop registers fn to be called once when the effect is stopped.
func OnStop(fn func()) EffectOption {
	return func(c *effectConfig) { c.onStop = fn }
}

// NewEffect creates an effect running fn and, unless Lazy is given, runs it
// once immediately.
func NewEffect(fn func(), opts ...EffectOption) *Effect {
	var cfg effectConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Effect{
		id:        nextID(),
		fn:        fn,
		scheduler: cfg.scheduler,
		onStop:    cfg.onStop,
	}
	if !cfg.lazy {
		e.Run()
	}
	return e
}

// ID returns the unique id of the effect.
func (e *Effect) ID() uint64 {
	return e.id
}

// Run executes the effect with dependency tracking. A running effect is not
// re-entered. A stopped effect still runs its function, untracked.
func (e *Effect) Run() {
	if e.stopped.Load() {
		Untracked(e.fn)
		return
	}
	if !e.running.CompareAndSwap(false, true) {
		return
	}
	defer e.running.Store(false)

	deps.detach(e)

	restore := pushScope(e)
	defer restore()

	e.runs.Add(1)
	e.fn()
}

// notify is called by trigger when a dependency changed.
func (e *Effect) notify() {
	if e.scheduler != nil {
		e.scheduler(e)
		return
	}
	e.Run()
}

// Stop detaches the effect from all its dependencies. Later writes no longer
// re-run it. Stop is idempotent.
func (e *Effect) Stop() {
	if e.stopped.Swap(true) {
		return
	}
	deps.detach(e)
	if e.onStop != nil {
		e.onStop()
	}
}

// Stopped reports whether Stop has been called.
func (e *Effect) Stopped() bool {
	return e.stopped.Load()
}

// Running reports whether the effect is currently executing.
func (e *Effect) Running() bool {
	return e.running.Load()
}

// Runs returns how many tracked runs the effect has performed.
func (e *Effect) Runs() uint64 {
	return e.runs.Load()
}

// Dependencies returns the number of dependency sets the effect is
// currently a member of.
func (e *Effect) Dependencies() int {
	deps.mu.Lock()
	defer deps.mu.Unlock()
	return len(e.deps)
}
