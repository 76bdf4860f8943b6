package dom

import (
	"log/slog"

	"github.com/eghact/eghact/pkg/vdom"
)

// ComponentMounter creates component instances for component nodes met
// during materialization.
type ComponentMounter interface {
	// MountComponent mounts an instance for node and returns its host.
	MountComponent(node *vdom.VNode) *Node
}

// Adapter materializes trees and applies patches to live nodes.
type Adapter struct {
	mounter ComponentMounter
	logger  *slog.Logger
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithMounter sets the component mounter. Without one, component nodes
// materialize to nothing.
func WithMounter(m ComponentMounter) AdapterOption {
	return func(a *Adapter) {
		a.mounter = m
	}
}

// WithLogger sets the adapter logger.
func WithLogger(l *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		a.logger = l
	}
}

// NewAdapter creates an adapter.
func NewAdapter(opts ...AdapterOption) *Adapter {
	a := &Adapter{logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetMounter replaces the component mounter.
func (a *Adapter) SetMounter(m ComponentMounter) {
	a.mounter = m
}

// Materialize builds a detached live subtree for v. It returns nil for nil
// trees and unknown kinds.
func (a *Adapter) Materialize(v *vdom.VNode) *Node {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case vdom.KindText:
		return NewText(v.Text)

	case vdom.KindElement:
		n := NewElement(v.Tag)
		for _, k := range v.Props.SortedKeys() {
			n.setProp(k, v.Props[k])
		}
		a.appendChildren(n, v.Children)
		return n

	case vdom.KindFragment:
		n := NewFragment()
		a.appendChildren(n, v.Children)
		return n

	case vdom.KindComponent:
		if a.mounter == nil {
			a.logger.Debug("no component mounter", "component", v.Tag)
			return nil
		}
		return a.mounter.MountComponent(v)
	}

	a.logger.Debug("unknown node kind", "kind", v.Kind)
	return nil
}

func (a *Adapter) appendChildren(n *Node, children []*vdom.VNode) {
	for _, c := range children {
		if child := a.Materialize(c); child != nil {
			n.AppendChild(child)
		}
	}
}

// ApplyPatches applies patches to h in order and returns the handle that
// now stands at h's position, which is nil after a Remove.
//
// Create appends a newly materialized child to h. Children patches address
// the child list as it was before any of them ran, and indices past its end
// address h itself so that their Create patches append.
func (a *Adapter) ApplyPatches(h *Node, patches []vdom.Patch) *Node {
	for _, p := range patches {
		if h == nil {
			a.logger.Debug("patch on removed node", "patch", p.Kind)
			return nil
		}
		switch p.Kind {
		case vdom.PatchCreate:
			if c := a.Materialize(p.Node); c != nil {
				h.AppendChild(c)
			}

		case vdom.PatchRemove:
			a.release(h)
			h.Remove()
			h = nil

		case vdom.PatchReplace:
			next := a.Materialize(p.Node)
			a.release(h)
			h.ReplaceWith(next)
			h = next

		case vdom.PatchText:
			h.SetText(p.Text)

		case vdom.PatchProps:
			a.applyProps(h, p.Props)

		case vdom.PatchChildren:
			snapshot := h.Children()
			for _, cp := range p.Children {
				if cp.Index < len(snapshot) {
					a.ApplyPatches(snapshot[cp.Index], cp.Patches)
					continue
				}
				a.ApplyPatches(h, cp.Patches)
			}

		default:
			a.logger.Debug("unknown patch kind", "patch", p.Kind)
		}
	}
	return h
}

func (a *Adapter) applyProps(h *Node, changes []vdom.PropChange) {
	if h.Type == ComponentNode {
		if h.host != nil {
			h.host.ReceiveProps(changes)
		}
		return
	}
	for _, c := range changes {
		h.setProp(c.Key, c.Value)
	}
}

// release unmounts the outermost component instances in the subtree. Each
// instance unmounts its own descendants.
func (a *Adapter) release(n *Node) {
	if n == nil {
		return
	}
	if n.Type == ComponentNode && n.host != nil {
		n.host.Unmount()
		return
	}
	for _, c := range n.Children() {
		a.release(c)
	}
}

// Release unmounts every component instance hosted in the subtree.
func (a *Adapter) Release(n *Node) {
	a.release(n)
}
