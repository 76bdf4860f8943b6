package component

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/eghact/eghact/internal/telemetry"
	"github.com/eghact/eghact/pkg/dom"
	"github.com/eghact/eghact/pkg/reactive"
	"github.com/eghact/eghact/pkg/vdom"
)

// Differ computes the patches between two trees. The acceleration bridge
// backends implement it.
type Differ interface {
	DiffTrees(ctx context.Context, prev, next *vdom.VNode) []vdom.Patch
}

// DifferFunc adapts a plain diff function to Differ.
type DifferFunc func(prev, next *vdom.VNode) []vdom.Patch

// DiffTrees calls f.
func (f DifferFunc) DiffTrees(_ context.Context, prev, next *vdom.VNode) []vdom.Patch {
	return f(prev, next)
}

// PatchObserver is called after an instance applied a re-render's patches.
type PatchObserver func(inst *Instance, patches []vdom.Patch)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Instances log through it with component and
// instance attributes.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithDiffer sets the diff implementation. Default: vdom.Diff.
func WithDiffer(d Differ) Option {
	return func(m *Manager) { m.differ = d }
}

// WithScheduler hands render effect re-runs to fn, for example a
// reactive.Queue's Schedule, instead of running them synchronously.
func WithScheduler(fn func(*reactive.Effect)) Option {
	return func(m *Manager) { m.scheduler = fn }
}

// WithTracer sets the tracer for render spans.
func WithTracer(t trace.Tracer) Option {
	return func(m *Manager) { m.tracer = t }
}

// WithMetrics sets the collectors. Default: telemetry.Default().
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithDebug enables hook order validation.
func WithDebug(debug bool) Option {
	return func(m *Manager) { m.debug = debug }
}

// WithContext sets the parent context of render spans.
func WithContext(ctx context.Context) Option {
	return func(m *Manager) { m.ctx = ctx }
}

// WithProps sets the props of the root instance created by Bootstrap.
func WithProps(props vdom.Props) Option {
	return func(m *Manager) { m.rootProps = props }
}

// Manager creates, renders and tears down the instances of one app. It is
// the component mounter of its adapter.
type Manager struct {
	adapter   *dom.Adapter
	logger    *slog.Logger
	differ    Differ
	scheduler func(*reactive.Effect)
	tracer    trace.Tracer
	metrics   *telemetry.Metrics
	debug     bool
	ctx       context.Context
	rootProps vdom.Props

	// parents is the stack of instances currently materializing or patching
	// output; component nodes met meanwhile become their children.
	parents []*Instance

	mu           sync.RWMutex
	instances    map[uint64]*Instance
	observers    map[uint64]PatchObserver
	nextObserver uint64
}

// NewManager creates a manager and installs it as the adapter's mounter.
// A nil adapter is replaced by a new one sharing the manager's logger.
func NewManager(adapter *dom.Adapter, opts ...Option) *Manager {
	m := &Manager{
		logger:    slog.Default(),
		differ:    DifferFunc(vdom.Diff),
		ctx:       context.Background(),
		instances: make(map[uint64]*Instance),
		observers: make(map[uint64]PatchObserver),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.tracer == nil {
		m.tracer = telemetry.Tracer()
	}
	if m.metrics == nil {
		m.metrics = telemetry.Default()
	}
	if adapter == nil {
		adapter = dom.NewAdapter(dom.WithLogger(m.logger))
	}
	m.adapter = adapter
	adapter.SetMounter(m)
	return m
}

// Adapter returns the render target adapter.
func (m *Manager) Adapter() *dom.Adapter { return m.adapter }

// Debug reports whether hook order validation is on.
func (m *Manager) Debug() bool { return m.debug }

// New constructs an instance of def. It is not mounted.
func (m *Manager) New(def *Definition, props vdom.Props) *Instance {
	return newInstance(m, def, props)
}

// MountComponent implements dom.ComponentMounter. The new instance becomes
// a child of the instance whose output is being built, if any.
func (m *Manager) MountComponent(v *vdom.VNode) *dom.Node {
	def, ok := v.Comp.(*Definition)
	if !ok {
		m.logger.Warn("unsupported component type", "component", v.Tag, "type", fmt.Sprintf("%T", v.Comp))
		return nil
	}

	inst := newInstance(m, def, v.Props)
	if n := len(m.parents); n > 0 {
		parent := m.parents[n-1]
		inst.parent = parent
		parent.children = append(parent.children, inst)
	}

	host := dom.NewComponentHost(def.name, inst)
	inst.Mount(host)
	return host
}

func (m *Manager) pushParent(i *Instance) func() {
	m.parents = append(m.parents, i)
	return func() {
		m.parents = m.parents[:len(m.parents)-1]
	}
}

func (m *Manager) register(i *Instance) {
	m.mu.Lock()
	m.instances[i.id] = i
	m.mu.Unlock()
	m.metrics.InstanceMounted()
}

func (m *Manager) unregister(i *Instance) {
	m.mu.Lock()
	_, ok := m.instances[i.id]
	delete(m.instances, i.id)
	m.mu.Unlock()
	if ok {
		m.metrics.InstanceUnmounted()
	}
}

// Instance returns a mounted instance by id.
func (m *Manager) Instance(id uint64) *Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.instances[id]
}

// Instances returns the mounted instances in id order.
func (m *Manager) Instances() []*Instance {
	m.mu.RLock()
	out := make([]*Instance, 0, len(m.instances))
	for _, i := range m.instances {
		out = append(out, i)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(a, b int) bool { return out[a].id < out[b].id })
	return out
}

// Observe registers fn to be called after every re-render that was
// patched in. It returns a function removing the observer.
func (m *Manager) Observe(fn PatchObserver) func() {
	m.mu.Lock()
	m.nextObserver++
	id := m.nextObserver
	m.observers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

func (m *Manager) notify(i *Instance, patches []vdom.Patch) {
	m.mu.RLock()
	ids := make([]uint64, 0, len(m.observers))
	for id := range m.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	observers := make([]PatchObserver, len(ids))
	for n, id := range ids {
		observers[n] = m.observers[id]
	}
	m.mu.RUnlock()

	for _, fn := range observers {
		fn(i, patches)
	}
}
