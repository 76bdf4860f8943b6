package bridge

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/eghact/eghact/internal/errors"
	"github.com/eghact/eghact/pkg/vdom"
)

// booleanAttrs render by presence; an empty value compiles to true.
var booleanAttrs = map[string]bool{
	"allowfullscreen": true,
	"async":           true,
	"autofocus":       true,
	"autoplay":        true,
	"checked":         true,
	"controls":        true,
	"default":         true,
	"defer":           true,
	"disabled":        true,
	"hidden":          true,
	"loop":            true,
	"multiple":        true,
	"muted":           true,
	"novalidate":      true,
	"open":            true,
	"readonly":        true,
	"required":        true,
	"selected":        true,
}

// compileFragment parses markup in a body context. Comments and
// whitespace-only text are dropped and inline event attributes are ignored,
// since a static tree carries no handlers. A single top-level node is
// returned as is; several are wrapped in a fragment.
func compileFragment(markup string) (*vdom.VNode, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, errors.New(errors.CodeTemplateParseError).
			WithDetail("The fragment is empty.")
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, errors.New(errors.CodeTemplateParseError).Wrap(err)
	}

	var children []*vdom.VNode
	for _, n := range nodes {
		if v := convertNode(n); v != nil {
			children = append(children, v)
		}
	}
	switch len(children) {
	case 0:
		return nil, errors.New(errors.CodeTemplateParseError).
			WithDetail("The fragment contains no elements or text.")
	case 1:
		return children[0], nil
	default:
		return vdom.Fragment(children), nil
	}
}

func convertNode(n *html.Node) *vdom.VNode {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return vdom.Text(n.Data)

	case html.ElementNode:
		props := make(vdom.Props, len(n.Attr))
		for _, a := range n.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + key
			}
			if vdom.IsEventHandler(key) {
				continue
			}
			if a.Val == "" && booleanAttrs[key] {
				props[key] = true
				continue
			}
			props[key] = a.Val
		}

		var children []*vdom.VNode
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if v := convertNode(c); v != nil {
				children = append(children, v)
			}
		}
		return vdom.H(n.Data, props, children)
	}
	return nil
}
