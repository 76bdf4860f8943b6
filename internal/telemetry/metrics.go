package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/eghact/eghact/pkg/vdom"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "eghact").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the registry the collectors are registered with.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "eghact",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a set of engine collectors. A nil *Metrics records nothing.
type Metrics struct {
	rendersTotal       *prometheus.CounterVec
	renderDuration     *prometheus.HistogramVec
	patchesApplied     *prometheus.CounterVec
	mountedInstances   prometheus.Gauge
	lifecycleWarnings  *prometheus.CounterVec
	bridgeCalls        *prometheus.CounterVec
	bridgeFallbacks    *prometheus.CounterVec
	bridgeCallDuration *prometheus.HistogramVec
}

// New creates and registers a set of collectors.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of component render passes",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "phase"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render pass duration in seconds, diff and patch included",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"phase"}),

		patchesApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_applied_total",
			Help:        "Total number of patches applied to the render target",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		mountedInstances: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mounted_instances",
			Help:        "Number of mounted component instances",
			ConstLabels: config.ConstLabels,
		}),

		lifecycleWarnings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "lifecycle_warnings_total",
			Help:        "Ignored lifecycle calls by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		bridgeCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bridge_calls_total",
			Help:        "Acceleration bridge calls by backend and operation",
			ConstLabels: config.ConstLabels,
		}, []string{"backend", "op"}),

		bridgeFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bridge_fallbacks_total",
			Help:        "Accelerated calls served by the software backend after a failure",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		bridgeCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bridge_call_duration_seconds",
			Help:        "Acceleration bridge call duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"backend", "op"}),
	}
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// Default returns the collectors registered with the default registry,
// creating them on first use.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}

// RecordRender records one render pass.
func (m *Metrics) RecordRender(component, phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.rendersTotal.WithLabelValues(component, phase).Inc()
	m.renderDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// RecordPatches counts patches by kind, nested child patches included.
func (m *Metrics) RecordPatches(patches []vdom.Patch) {
	if m == nil {
		return
	}
	for _, p := range patches {
		m.patchesApplied.WithLabelValues(p.Kind.String()).Inc()
		for _, c := range p.Children {
			m.RecordPatches(c.Patches)
		}
	}
}

// InstanceMounted increments the mounted instance gauge.
func (m *Metrics) InstanceMounted() {
	if m == nil {
		return
	}
	m.mountedInstances.Inc()
}

// InstanceUnmounted decrements the mounted instance gauge.
func (m *Metrics) InstanceUnmounted() {
	if m == nil {
		return
	}
	m.mountedInstances.Dec()
}

// RecordWarning records an ignored lifecycle call.
func (m *Metrics) RecordWarning(code string) {
	if m == nil {
		return
	}
	m.lifecycleWarnings.WithLabelValues(code).Inc()
}

// RecordBridgeCall records one bridge call.
func (m *Metrics) RecordBridgeCall(backend, op string, d time.Duration) {
	if m == nil {
		return
	}
	m.bridgeCalls.WithLabelValues(backend, op).Inc()
	m.bridgeCallDuration.WithLabelValues(backend, op).Observe(d.Seconds())
}

// RecordFallback records a per-call fallback to the software backend.
func (m *Metrics) RecordFallback(op string) {
	if m == nil {
		return
	}
	m.bridgeFallbacks.WithLabelValues(op).Inc()
}
