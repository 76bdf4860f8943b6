package dom

import (
	"sort"

	"github.com/eghact/eghact/pkg/vdom"
)

// NodeType is the type of a live node.
type NodeType uint8

const (
	ElementNode   NodeType = iota // <div>, <button>, etc.
	TextNode                      // Text content
	FragmentNode                  // Container without markup of its own
	ComponentNode                 // Host of a mounted component's output
)

// ComponentHost is the component instance behind a ComponentNode.
type ComponentHost interface {
	// ReceiveProps applies prop changes addressed to the component node.
	ReceiveProps(changes []vdom.PropChange)
	// Unmount tears the instance down when its host leaves the tree.
	Unmount()
}

// Node is a live node of the render target.
type Node struct {
	Type NodeType
	Tag  string

	text      string
	className string
	style     map[string]string
	fields    map[string]any
	attrs     map[string]string
	handlers  map[string]any

	host ComponentHost

	parent   *Node
	children []*Node
}

// NewElement creates a detached element node.
func NewElement(tag string) *Node {
	return &Node{Type: ElementNode, Tag: tag}
}

// NewText creates a detached text node.
func NewText(s string) *Node {
	return &Node{Type: TextNode, text: s}
}

// NewFragment creates a detached fragment container.
func NewFragment() *Node {
	return &Node{Type: FragmentNode}
}

// NewComponentHost creates a host node for a component instance.
func NewComponentHost(name string, host ComponentHost) *Node {
	return &Node{Type: ComponentNode, Tag: name, host: host}
}

// Host returns the component instance of a ComponentNode.
func (n *Node) Host() ComponentHost {
	return n.host
}

// SetHost binds the component instance of a ComponentNode.
func (n *Node) SetHost(h ComponentHost) {
	n.host = h
}

// Parent returns the parent node, or nil when detached.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Child returns the child at index i, or nil.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// AppendChild attaches c as the last child, detaching it from any previous
// parent.
func (n *Node) AppendChild(c *Node) {
	if c == nil {
		return
	}
	c.Remove()
	c.parent = n
	n.children = append(n.children, c)
}

// Remove detaches the node from its parent.
func (n *Node) Remove() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// ReplaceWith puts r at n's position and detaches n. A nil r removes n.
func (n *Node) ReplaceWith(r *Node) {
	if r == nil {
		n.Remove()
		return
	}
	p := n.parent
	if p == nil {
		return
	}
	r.Remove()
	for i, c := range p.children {
		if c == n {
			p.children[i] = r
			r.parent = p
			break
		}
	}
	n.parent = nil
}

// Text returns the content of a text node, or the concatenated text of
// descendants otherwise.
func (n *Node) Text() string {
	if n.Type == TextNode {
		return n.text
	}
	var s string
	for _, c := range n.children {
		s += c.Text()
	}
	return s
}

// SetText overwrites the content of a text node. On other nodes it replaces
// all children with one text node.
func (n *Node) SetText(s string) {
	if n.Type == TextNode {
		n.text = s
		return
	}
	for _, c := range n.Children() {
		c.Remove()
	}
	n.AppendChild(NewText(s))
}

// ClassName returns the class attribute value.
func (n *Node) ClassName() string {
	return n.className
}

// Style returns a style declaration.
func (n *Node) Style(name string) (string, bool) {
	v, ok := n.style[name]
	return v, ok
}

// StyleMap returns a copy of the style declarations.
func (n *Node) StyleMap() map[string]string {
	out := make(map[string]string, len(n.style))
	for k, v := range n.style {
		out[k] = v
	}
	return out
}

// Field returns a native field value.
func (n *Node) Field(name string) (any, bool) {
	v, ok := n.fields[name]
	return v, ok
}

// Attr returns a generic attribute.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// Handler returns the handler registered for an event type.
func (n *Node) Handler(eventType string) any {
	return n.handlers[eventType]
}

// HandlerTypes returns the event types with a registered handler, sorted.
func (n *Node) HandlerTypes() []string {
	out := make([]string, 0, len(n.handlers))
	for k := range n.handlers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Find returns the first node in depth-first order, n included, for which
// match returns true.
func (n *Node) Find(match func(*Node) bool) *Node {
	if match(n) {
		return n
	}
	for _, c := range n.children {
		if f := c.Find(match); f != nil {
			return f
		}
	}
	return nil
}

// FindByTag returns the first element with the given tag.
func (n *Node) FindByTag(tag string) *Node {
	return n.Find(func(x *Node) bool { return x.Type == ElementNode && x.Tag == tag })
}

// Walk calls fn for n and every descendant in depth-first order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}
