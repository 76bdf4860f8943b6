package component

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/eghact/eghact/internal/errors"
	"github.com/eghact/eghact/internal/telemetry"
	"github.com/eghact/eghact/pkg/dom"
	"github.com/eghact/eghact/pkg/reactive"
	"github.com/eghact/eghact/pkg/vdom"
)

// Phase is the lifecycle state of an instance.
type Phase uint8

const (
	PhaseConstructed Phase = iota
	PhaseMounted
	PhaseUpdating
	PhaseUnmounted
)

// String returns the name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseConstructed:
		return "Constructed"
	case PhaseMounted:
		return "Mounted"
	case PhaseUpdating:
		return "Updating"
	case PhaseUnmounted:
		return "Unmounted"
	default:
		return "Unknown"
	}
}

var instanceIDs atomic.Uint64

// Instance is one placement of a Definition.
type Instance struct {
	id      uint64
	def     *Definition
	manager *Manager
	logger  *slog.Logger

	props vdom.Props

	// State is the instance's reactive state. Reads during render subscribe
	// the render effect.
	State *reactive.Cell

	refs map[string]any

	renderer Renderer
	parent   *Instance
	children []*Instance

	container *dom.Node
	handle    *dom.Node
	prev      *vdom.VNode

	render   *reactive.Effect
	effects  []*reactive.Effect
	cleanups []func()
	contexts map[uint64]struct{}

	phase   Phase
	renders int
	hooks   hookSlots
}

func newInstance(m *Manager, def *Definition, props vdom.Props) *Instance {
	inst := &Instance{
		id:       instanceIDs.Add(1),
		def:      def,
		manager:  m,
		props:    copyProps(props),
		State:    reactive.NewCell(map[string]any{}),
		refs:     make(map[string]any),
		contexts: make(map[uint64]struct{}),
	}
	inst.logger = m.logger.With("component", def.name, "instance", inst.id)

	if def.setup != nil {
		reactive.Untracked(func() {
			inst.renderer = def.setup(inst)
		})
	}
	if inst.renderer == nil {
		inst.renderer = RenderFunc(func() *vdom.VNode { return nil })
	}
	return inst
}

// ID returns the unique instance id.
func (i *Instance) ID() uint64 { return i.id }

// Name returns the definition name.
func (i *Instance) Name() string { return i.def.name }

// Definition returns the definition the instance was created from.
func (i *Instance) Definition() *Definition { return i.def }

// Phase returns the lifecycle state.
func (i *Instance) Phase() Phase { return i.phase }

// Props returns the current props. The map must not be modified.
func (i *Instance) Props() vdom.Props { return i.props }

// Parent returns the instance whose render placed this one, or nil.
func (i *Instance) Parent() *Instance { return i.parent }

// Children returns the mounted child instances.
func (i *Instance) Children() []*Instance {
	out := make([]*Instance, len(i.children))
	copy(out, i.children)
	return out
}

// Handle returns the live root node of the rendered output.
func (i *Instance) Handle() *dom.Node { return i.handle }

// Container returns the node the output is attached under.
func (i *Instance) Container() *dom.Node { return i.container }

// Tree returns the most recently rendered tree.
func (i *Instance) Tree() *vdom.VNode { return i.prev }

// Renders returns the number of completed render passes.
func (i *Instance) Renders() int { return i.renders }

// SetRef stores a named ref.
func (i *Instance) SetRef(name string, v any) { i.refs[name] = v }

// Ref returns a named ref.
func (i *Instance) Ref(name string) any { return i.refs[name] }

// Effect creates an effect owned by the instance. It is stopped on unmount.
func (i *Instance) Effect(fn func(), opts ...reactive.EffectOption) *reactive.Effect {
	e := reactive.NewEffect(fn, opts...)
	i.effects = append(i.effects, e)
	return e
}

// Own adopts an existing effect so it is stopped on unmount.
func (i *Instance) Own(e *reactive.Effect) {
	i.effects = append(i.effects, e)
}

// OnCleanup registers fn to run on unmount. Cleanups run in reverse order
// of registration.
func (i *Instance) OnCleanup(fn func()) {
	i.cleanups = append(i.cleanups, fn)
}

func (i *Instance) subject() string {
	return fmt.Sprintf("%s#%d", i.def.name, i.id)
}

func (i *Instance) warn(code string) {
	err := errors.New(code).WithSubject(i.subject())
	i.logger.Warn(err.Message, "code", code, "phase", i.phase.String())
	i.manager.metrics.RecordWarning(code)
}

// Mount calls OnMount, then creates the render effect, whose first run
// materializes the output under container.
func (i *Instance) Mount(container *dom.Node) {
	if i.phase != PhaseConstructed {
		i.warn(errors.CodeDoubleMount)
		return
	}
	i.container = container

	if m, ok := i.renderer.(Mounter); ok {
		reactive.Untracked(m.OnMount)
	}

	var opts []reactive.EffectOption
	if sched := i.manager.scheduler; sched != nil {
		opts = append(opts, reactive.WithScheduler(sched))
	}
	i.render = reactive.NewEffect(i.renderPass, opts...)
}

// Update forces a re-render, through the manager's scheduler when one is
// set.
func (i *Instance) Update() {
	if i.phase != PhaseMounted || i.render == nil {
		return
	}
	if sched := i.manager.scheduler; sched != nil {
		sched(i.render)
		return
	}
	i.render.Run()
}

// ReceiveProps merges prop changes and re-renders. It implements
// dom.ComponentHost.
func (i *Instance) ReceiveProps(changes []vdom.PropChange) {
	next := copyProps(i.props)
	for _, c := range changes {
		if c.Removed() {
			delete(next, c.Key)
			continue
		}
		next[c.Key] = c.Value
	}
	i.props = next
	i.Update()
}

func (i *Instance) renderPass() {
	if i.phase == PhaseUnmounted {
		return
	}
	m := i.manager
	start := time.Now()
	first := i.phase == PhaseConstructed
	phase := "update"
	if first {
		phase = "mount"
	}

	ctx, span := telemetry.StartSpan(m.ctx, m.tracer, "render",
		attribute.String("eghact.component", i.def.name),
		attribute.Int64("eghact.instance", int64(i.id)),
		attribute.String("eghact.phase", phase),
	)
	defer span.End()

	next := i.callRender()

	var patches []vdom.Patch
	reactive.Untracked(func() {
		restore := m.pushParent(i)
		defer restore()

		if first {
			i.attach(next)
			i.phase = PhaseMounted
			m.register(i)
		} else {
			i.phase = PhaseUpdating
			patches = m.differ.DiffTrees(ctx, i.prev, next)
			if i.handle == nil {
				i.attach(next)
			} else if len(patches) > 0 {
				i.handle = m.adapter.ApplyPatches(i.handle, patches)
			}
			i.phase = PhaseMounted
		}
		i.prev = next
		i.renders++
		i.runPendingEffects()

		if !first {
			m.metrics.RecordPatches(patches)
			m.notify(i, patches)
			if u, ok := i.renderer.(Updater); ok {
				u.OnUpdate()
			}
		}
	})

	m.metrics.RecordRender(i.def.name, phase, time.Since(start))
	span.SetAttributes(attribute.Int("eghact.patch_count", vdom.CountPatches(patches)))
	i.logger.Debug("rendered", "phase", phase, "patches", vdom.CountPatches(patches))
}

func (i *Instance) attach(next *vdom.VNode) {
	i.handle = i.manager.adapter.Materialize(next)
	if i.handle != nil && i.container != nil {
		i.container.AppendChild(i.handle)
	}
}

func (i *Instance) callRender() *vdom.VNode {
	restore := pushRendering(i)
	defer restore()

	i.beginHooks()
	next := i.renderer.Render()
	i.endHooks()
	return next
}

// Unmount tears the instance down: child instances first, then every owned
// effect is stopped, cleanups run in reverse order, OnDestroy is called,
// context subscriptions are dropped and the live handle is detached.
func (i *Instance) Unmount() {
	if i.phase != PhaseMounted && i.phase != PhaseUpdating {
		i.warn(errors.CodeDoubleUnmount)
		return
	}
	i.phase = PhaseUnmounted

	children := i.children
	i.children = nil
	for j := len(children) - 1; j >= 0; j-- {
		children[j].Unmount()
	}

	if i.render != nil {
		i.render.Stop()
	}
	for _, e := range i.effects {
		e.Stop()
	}
	i.effects = nil

	cleanups := i.cleanups
	i.cleanups = nil
	for j := len(cleanups) - 1; j >= 0; j-- {
		cleanups[j]()
	}

	if d, ok := i.renderer.(Destroyer); ok {
		d.OnDestroy()
	}

	unsubscribeAll(i)

	if i.handle != nil {
		i.handle.Remove()
		i.handle = nil
	}
	if i.parent != nil {
		i.parent.removeChild(i)
	}
	i.manager.unregister(i)
}

func (i *Instance) removeChild(c *Instance) {
	for j, x := range i.children {
		if x == c {
			i.children = append(i.children[:j], i.children[j+1:]...)
			return
		}
	}
}

func copyProps(props vdom.Props) vdom.Props {
	out := make(vdom.Props, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
