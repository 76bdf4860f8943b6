package bridge

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/eghact/eghact/internal/telemetry"
	"github.com/eghact/eghact/pkg/vdom"
)

// Operation names used in stats, logs and metrics.
const (
	OpDiff    = "diff_trees"
	OpCompile = "compile_template"
	OpOrder   = "compute_effect_ordering"
)

// Backend implements the engine's accelerated operations. Backends are
// safe for concurrent use.
type Backend interface {
	// Name identifies the backend ("software" or "wasm").
	Name() string

	// DiffTrees returns the patches turning prev into next.
	DiffTrees(ctx context.Context, prev, next *vdom.VNode) []vdom.Patch

	// CompileTemplateFragment turns static markup into a tree.
	CompileTemplateFragment(ctx context.Context, markup string) (*vdom.VNode, error)

	// ComputeEffectOrdering returns the order in which pending effects run.
	ComputeEffectOrdering(ctx context.Context, ids []uint64) []uint64

	// StartTimer starts the named timer.
	StartTimer(name string)

	// EndTimer stops the named timer and returns the elapsed time. It
	// returns 0 when the timer was not started.
	EndTimer(name string) time.Duration

	// Stats returns a snapshot of call counters and timers.
	Stats() Stats

	// Close releases the backend's resources.
	Close(ctx context.Context) error
}

// Config selects the backend.
type Config struct {
	// Enabled turns on the accelerated module.
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`

	// ModulePath is the path of the WebAssembly module.
	ModulePath string `mapstructure:"module_path" json:"module_path" yaml:"module_path"`
}

// Stats is a snapshot of a backend's counters.
type Stats struct {
	Backend   string                `json:"backend"`
	Calls     map[string]uint64     `json:"calls"`
	Fallbacks map[string]uint64     `json:"fallbacks"`
	Timers    map[string]TimerStats `json:"timers"`
}

// TimerStats accumulates the runs of one named timer.
type TimerStats struct {
	Count uint64        `json:"count"`
	Total time.Duration `json:"total_ns"`
	Last  time.Duration `json:"last_ns"`
}

// Option configures a backend.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the collectors. Default: telemetry.Default().
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer sets the tracer for diff spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

func newOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = telemetry.Default()
	}
	if o.tracer == nil {
		o.tracer = telemetry.Tracer()
	}
	return o
}

// counters is the bookkeeping shared by both backends.
type counters struct {
	name    string
	logger  *slog.Logger
	metrics *telemetry.Metrics
	tracer  trace.Tracer

	mu        sync.Mutex
	calls     map[string]uint64
	fallbacks map[string]uint64
	starts    map[string]time.Time
	timers    map[string]TimerStats
}

func newCounters(name string, o options) *counters {
	return &counters{
		name:      name,
		logger:    o.logger.With("backend", name),
		metrics:   o.metrics,
		tracer:    o.tracer,
		calls:     make(map[string]uint64),
		fallbacks: make(map[string]uint64),
		starts:    make(map[string]time.Time),
		timers:    make(map[string]TimerStats),
	}
}

// Name returns the backend name.
func (c *counters) Name() string { return c.name }

func (c *counters) observe(op string, start time.Time) {
	d := time.Since(start)
	c.mu.Lock()
	c.calls[op]++
	c.mu.Unlock()
	c.metrics.RecordBridgeCall(c.name, op, d)
}

func (c *counters) fallback(op string) {
	c.mu.Lock()
	c.fallbacks[op]++
	c.mu.Unlock()
	c.metrics.RecordFallback(op)
}

// StartTimer starts or restarts the named timer.
func (c *counters) StartTimer(name string) {
	c.mu.Lock()
	c.starts[name] = time.Now()
	c.mu.Unlock()
}

// EndTimer stops the named timer. The elapsed time is also observed in the
// bridge call duration histogram under op "timer:<name>".
func (c *counters) EndTimer(name string) time.Duration {
	c.mu.Lock()
	start, ok := c.starts[name]
	if !ok {
		c.mu.Unlock()
		return 0
	}
	delete(c.starts, name)
	d := time.Since(start)
	ts := c.timers[name]
	ts.Count++
	ts.Total += d
	ts.Last = d
	c.timers[name] = ts
	c.mu.Unlock()

	c.metrics.RecordBridgeCall(c.name, "timer:"+name, d)
	return d
}

// Stats returns a copy of the counters.
func (c *counters) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{
		Backend:   c.name,
		Calls:     make(map[string]uint64, len(c.calls)),
		Fallbacks: make(map[string]uint64, len(c.fallbacks)),
		Timers:    make(map[string]TimerStats, len(c.timers)),
	}
	for k, v := range c.calls {
		s.Calls[k] = v
	}
	for k, v := range c.fallbacks {
		s.Fallbacks[k] = v
	}
	for k, v := range c.timers {
		s.Timers[k] = v
	}
	return s
}

// TimerNames returns the names of completed timers in sorted order.
func (s Stats) TimerNames() []string {
	names := make([]string, 0, len(s.Timers))
	for name := range s.Timers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Orderer adapts b for reactive.WithOrderer.
func Orderer(b Backend) func(ids []uint64) []uint64 {
	return func(ids []uint64) []uint64 {
		return b.ComputeEffectOrdering(context.Background(), ids)
	}
}
