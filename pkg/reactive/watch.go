package reactive

// Source is anything Watch can observe.
type Source[T any] interface {
	Value() T
}

// SourceFunc adapts a tracked expression to a Source.
type SourceFunc[T any] func() T

// Value evaluates the expression.
func (f SourceFunc[T]) Value() T { return f() }

type constSource[T any] struct{ v T }

func (c constSource[T]) Value() T { return c.v }

// Const returns a Source that never changes.
func Const[T any](v T) Source[T] {
	return constSource[T]{v: v}
}

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	immediate bool
	deep      bool
}

// Immediate invokes the callback once on setup with the zero value as old.
func Immediate() WatchOption {
	return func(c *watchConfig) { c.immediate = true }
}

// Deep tracks every field of a *Cell value and fires on any nested write,
// even though the cell identity is unchanged.
func Deep() WatchOption {
	return func(c *watchConfig) { c.deep = true }
}

// Watch calls cb(new, old) whenever the value of src changes. It returns
// the underlying effect; Stop it to unwatch.
func Watch[T any](src Source[T], cb func(newValue, oldValue T), opts ...WatchOption) *Effect {
	var cfg watchConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var (
		cur, old T
		e        *Effect
	)
	getter := func() {
		cur = src.Value()
		if cfg.deep {
			if c, ok := any(cur).(*Cell); ok {
				c.Snapshot()
			}
		}
	}

	job := func() {
		if e.Stopped() {
			return
		}
		e.Run()
		if cfg.deep || !sameValue(cur, old) {
			prev := old
			old = cur
			cb(cur, prev)
		}
	}

	e = NewEffect(getter, Lazy(), WithScheduler(func(*Effect) { job() }))

	e.Run()
	old = cur
	if cfg.immediate {
		var zero T
		cb(cur, zero)
	}
	return e
}
