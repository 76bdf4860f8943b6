package component

import "github.com/eghact/eghact/pkg/vdom"

// Renderer produces the tree of an instance.
type Renderer interface {
	Render() *vdom.VNode
}

// Mounter is implemented by renderers that want a callback before the first
// render.
type Mounter interface {
	OnMount()
}

// Updater is implemented by renderers that want a callback after each
// re-render has been patched in.
type Updater interface {
	OnUpdate()
}

// Destroyer is implemented by renderers that want a callback during unmount.
type Destroyer interface {
	OnDestroy()
}

// RenderFunc adapts a plain function to Renderer.
type RenderFunc func() *vdom.VNode

// Render calls f.
func (f RenderFunc) Render() *vdom.VNode {
	return f()
}

// SetupFunc initializes a new instance and returns its renderer. It runs
// once per instance, untracked.
type SetupFunc func(inst *Instance) Renderer

// Definition describes a component. Tree nodes refer to it by pointer, so
// two placements of the same definition diff as the same component type.
type Definition struct {
	name  string
	setup SetupFunc
}

// Define creates a component definition.
func Define(name string, setup SetupFunc) *Definition {
	return &Definition{name: name, setup: setup}
}

// Closure adapts a stateless render function into a component. State lives
// in hook slots.
//
//	Counter := component.Closure("Counter", func(props vdom.Props) *vdom.VNode {
//	    n, setN := component.UseState(0)
//	    return vdom.H("button", vdom.Props{"onclick": func() { setN(n + 1) }}, n)
//	})
func Closure(name string, render func(props vdom.Props) *vdom.VNode) *Definition {
	return Define(name, func(inst *Instance) Renderer {
		return RenderFunc(func() *vdom.VNode {
			return render(inst.Props())
		})
	})
}

// ComponentName implements vdom.ComponentType.
func (d *Definition) ComponentName() string {
	return d.name
}

// Node returns a component node placing d with props.
func (d *Definition) Node(props vdom.Props) *vdom.VNode {
	return vdom.Comp(d, props)
}
