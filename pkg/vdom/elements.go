package vdom

import "strconv"

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// H constructs an element node. props is copied; nil values are dropped and
// a "key" prop is also recorded as the node's Key. Children are flattened
// (see AppendChildren).
func H(tag string, props Props, children ...any) *VNode {
	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: copyProps(props),
	}
	if k, ok := node.Props["key"]; ok {
		node.Key = keyString(k)
	}
	node.Children = AppendChildren(nil, children...)
	return node
}

// Text creates a text node.
func Text(s string) *VNode {
	return &VNode{Kind: KindText, Text: s}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	return &VNode{
		Kind:     KindFragment,
		Children: AppendChildren(nil, children...),
	}
}

// Comp creates a node referring to a component definition.
func Comp(def ComponentType, props Props) *VNode {
	node := &VNode{
		Kind:  KindComponent,
		Tag:   def.ComponentName(),
		Props: copyProps(props),
		Comp:  def,
	}
	if k, ok := node.Props["key"]; ok {
		node.Key = keyString(k)
	}
	return node
}

// AppendChildren flattens children into dst. Accepted values are *VNode,
// []*VNode, []any (nested to any depth), strings and numbers, which become
// text nodes. nil, booleans and other values are dropped.
func AppendChildren(dst []*VNode, children ...any) []*VNode {
	for _, child := range children {
		switch v := child.(type) {
		case nil:
		case *VNode:
			if v != nil {
				dst = append(dst, v)
			}
		case []*VNode:
			for _, n := range v {
				if n != nil {
					dst = append(dst, n)
				}
			}
		case []any:
			dst = AppendChildren(dst, v...)
		case string:
			dst = append(dst, Text(v))
		default:
			if s, ok := numberText(v); ok {
				dst = append(dst, Text(s))
			}
		}
	}
	return dst
}

func numberText(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}

func copyProps(props Props) Props {
	out := make(Props, len(props))
	for k, v := range props {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

func keyString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := numberText(v); ok {
		return s
	}
	return ""
}
