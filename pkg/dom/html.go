package dom

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/eghact/eghact/pkg/vdom"
)

// OuterHTML serializes the node and its subtree. Fragments and component
// hosts are transparent.
func (n *Node) OuterHTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

// InnerHTML serializes the node's children.
func (n *Node) InnerHTML() string {
	var b strings.Builder
	for _, c := range n.children {
		c.writeHTML(&b)
	}
	return b.String()
}

func (n *Node) writeHTML(b *strings.Builder) {
	switch n.Type {
	case TextNode:
		b.WriteString(html.EscapeString(n.text))
	case FragmentNode, ComponentNode:
		for _, c := range n.children {
			c.writeHTML(b)
		}
	case ElementNode:
		b.WriteByte('<')
		b.WriteString(n.Tag)
		for _, a := range n.attributes() {
			b.WriteByte(' ')
			b.WriteString(a.name)
			if a.present {
				continue
			}
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(a.value))
			b.WriteByte('"')
		}
		b.WriteByte('>')
		if vdom.IsVoidElement(n.Tag) {
			return
		}
		for _, c := range n.children {
			c.writeHTML(b)
		}
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteByte('>')
	}
}

type attribute struct {
	name    string
	value   string
	present bool
}

// attributes merges class, style, fields and generic attributes in name
// order.
func (n *Node) attributes() []attribute {
	var out []attribute
	if n.className != "" {
		out = append(out, attribute{name: "class", value: n.className})
	}
	if len(n.style) > 0 {
		out = append(out, attribute{name: "style", value: StyleString(n.style)})
	}
	for k, v := range n.fields {
		switch b := v.(type) {
		case bool:
			if b {
				out = append(out, attribute{name: k, present: true})
			}
		default:
			out = append(out, attribute{name: k, value: fmt.Sprint(v)})
		}
	}
	for k, v := range n.attrs {
		if v == "" {
			out = append(out, attribute{name: k, present: true})
			continue
		}
		out = append(out, attribute{name: k, value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
