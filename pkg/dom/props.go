package dom

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eghact/eghact/pkg/vdom"
)

// nativeFields are element properties assigned directly rather than through
// the attribute table.
var nativeFields = map[string]bool{
	"id":          true,
	"value":       true,
	"checked":     true,
	"selected":    true,
	"disabled":    true,
	"hidden":      true,
	"title":       true,
	"name":        true,
	"type":        true,
	"placeholder": true,
	"href":        true,
	"src":         true,
	"alt":         true,
	"tabindex":    true,
	"readonly":    true,
	"required":    true,
	"multiple":    true,
	"autofocus":   true,
	"lang":        true,
	"dir":         true,
}

// IsNativeField reports whether key is assigned as a native field.
func IsNativeField(key string) bool {
	if strings.HasPrefix(key, "aria-") || strings.HasPrefix(key, "data-") {
		return false
	}
	return nativeFields[strings.ToLower(key)]
}

// setProp applies one property to an element. A nil value removes it.
func (n *Node) setProp(key string, value any) {
	switch {
	case key == "key":
		return
	case vdom.IsEventHandler(key):
		name := vdom.EventName(key)
		if value == nil {
			delete(n.handlers, name)
			return
		}
		if n.handlers == nil {
			n.handlers = make(map[string]any)
		}
		n.handlers[name] = value
	case key == "class" || key == "className":
		n.className = classString(value)
	case key == "style":
		n.setStyle(value)
	case IsNativeField(key):
		k := strings.ToLower(key)
		if value == nil {
			delete(n.fields, k)
			return
		}
		if n.fields == nil {
			n.fields = make(map[string]any)
		}
		n.fields[k] = value
	default:
		n.setAttr(key, value)
	}
}

func (n *Node) setAttr(key string, value any) {
	switch v := value.(type) {
	case nil:
		delete(n.attrs, key)
		return
	case bool:
		if !v {
			delete(n.attrs, key)
			return
		}
		n.ensureAttrs()
		n.attrs[key] = ""
	default:
		n.ensureAttrs()
		n.attrs[key] = fmt.Sprint(v)
	}
}

func (n *Node) ensureAttrs() {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
}

// setStyle merges map values into the declarations. Strings replace them.
func (n *Node) setStyle(value any) {
	switch v := value.(type) {
	case nil:
		n.style = nil
	case string:
		n.style = ParseStyle(v)
	case map[string]string:
		n.ensureStyle()
		for k, s := range v {
			n.style[k] = s
		}
	case map[string]any:
		n.ensureStyle()
		for k, s := range v {
			if s == nil {
				delete(n.style, k)
				continue
			}
			n.style[k] = fmt.Sprint(s)
		}
	default:
		n.style = ParseStyle(fmt.Sprint(v))
	}
}

func (n *Node) ensureStyle() {
	if n.style == nil {
		n.style = make(map[string]string)
	}
}

// ParseStyle parses "k: v; k2: v2" declarations.
func ParseStyle(s string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}

// StyleString renders declarations in sorted order.
func StyleString(style map[string]string) string {
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + style[k]
	}
	return strings.Join(parts, "; ")
}

func classString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, " ")
	case map[string]bool:
		var names []string
		for k, on := range v {
			if on {
				names = append(names, k)
			}
		}
		sort.Strings(names)
		return strings.Join(names, " ")
	default:
		return fmt.Sprint(v)
	}
}
