package vdom

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement   Kind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindComponent             // Reference to a component definition
	KindFragment              // Grouping without wrapper
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComponent:
		return "Component"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// VNode is one node of a rendered tree.
type VNode struct {
	Kind     Kind          // Node type
	Tag      string        // Element tag name, or the component name
	Props    Props         // Attributes, event handlers, style, component props
	Children []*VNode      // Child nodes
	Key      string        // Identity key, not consulted by Diff
	Text     string        // For KindText
	Comp     ComponentType // For KindComponent
}

// Props holds attributes, event handlers and component props.
type Props map[string]any

// ComponentType identifies a component definition. Implementations must be
// comparable; Diff treats two component nodes as the same type only when
// their definitions are equal.
type ComponentType interface {
	ComponentName() string
}

// IsEventHandler reports whether a prop key binds an event. The key is "on"
// (any case) followed by either a known DOM event name in any case
// ("onclick", "ONINPUT") or an upper-case letter ("onClick", "onSave").
// Other keys starting with "on", such as "one" or "online", are attributes.
func IsEventHandler(key string) bool {
	if len(key) <= 2 || !strings.EqualFold(key[:2], "on") {
		return false
	}
	if c := key[2]; c >= 'A' && c <= 'Z' {
		return true
	}
	return eventNames[strings.ToLower(key[2:])]
}

var eventNames = map[string]bool{
	"abort": true, "animationend": true, "animationiteration": true, "animationstart": true,
	"beforeinput": true, "blur": true, "cancel": true, "change": true, "click": true,
	"close": true, "contextmenu": true, "copy": true, "cut": true, "dblclick": true,
	"drag": true, "dragend": true, "dragenter": true, "dragleave": true, "dragover": true,
	"dragstart": true, "drop": true, "error": true, "focus": true, "focusin": true,
	"focusout": true, "input": true, "invalid": true, "keydown": true, "keypress": true,
	"keyup": true, "load": true, "mousedown": true, "mouseenter": true, "mouseleave": true,
	"mousemove": true, "mouseout": true, "mouseover": true, "mouseup": true, "offline": true,
	"online": true, "paste": true, "pointercancel": true, "pointerdown": true,
	"pointerenter": true, "pointerleave": true, "pointermove": true, "pointerout": true,
	"pointerover": true, "pointerup": true, "reset": true, "resize": true, "scroll": true,
	"select": true, "submit": true, "toggle": true, "touchcancel": true, "touchend": true,
	"touchmove": true, "touchstart": true, "transitionend": true, "wheel": true,
}

// EventName returns the lower-cased event type for an event prop key.
func EventName(key string) string {
	return strings.ToLower(key[2:])
}

// IsInteractive returns true if this node has event handlers.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if IsEventHandler(key) {
			return true
		}
	}
	return false
}

// SortedKeys returns the prop keys in lexical order.
func (p Props) SortedKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the tree. Prop values are copied shallowly.
func (v *VNode) Clone() *VNode {
	if v == nil {
		return nil
	}
	out := *v
	if v.Props != nil {
		out.Props = make(Props, len(v.Props))
		for k, val := range v.Props {
			out.Props[k] = val
		}
	}
	if v.Children != nil {
		out.Children = make([]*VNode, len(v.Children))
		for i, c := range v.Children {
			out.Children[i] = c.Clone()
		}
	}
	return &out
}

// Count returns the number of nodes in the tree.
func (v *VNode) Count() int {
	if v == nil {
		return 0
	}
	n := 1
	for _, c := range v.Children {
		n += c.Count()
	}
	return n
}

// String returns a compact description of the node for logs.
func (v *VNode) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case KindText:
		return fmt.Sprintf("%q", v.Text)
	case KindComponent:
		return "<" + v.Tag + "/>"
	case KindFragment:
		return fmt.Sprintf("<>%d</>", len(v.Children))
	default:
		if len(v.Children) == 0 {
			return "<" + v.Tag + "/>"
		}
		return fmt.Sprintf("<%s>%d</%s>", v.Tag, len(v.Children), v.Tag)
	}
}
