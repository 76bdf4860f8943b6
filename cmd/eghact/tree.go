package main

import (
	"fmt"
	"os"
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/eghact/eghact/internal/errors"
	"github.com/eghact/eghact/pkg/vdom"
)

// treeSpec is the YAML form of a tree node. A node has either a tag or a
// text; a bare string stands for a text node. A document holding a list is
// a fragment.
//
//	tag: ul
//	props: {class: menu}
//	children:
//	  - tag: li
//	    key: a
//	    children: [Home]
type treeSpec struct {
	Tag      string         `mapstructure:"tag" yaml:"tag,omitempty"`
	Text     *string        `mapstructure:"text" yaml:"text,omitempty"`
	Key      string         `mapstructure:"key" yaml:"key,omitempty"`
	Props    map[string]any `mapstructure:"props" yaml:"props,omitempty"`
	Children []treeSpec     `mapstructure:"children" yaml:"children,omitempty"`
}

var treeSpecType = reflect.TypeOf(treeSpec{})

// textHook decodes a bare string as a text node.
func textHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.String && to == treeSpecType {
		return map[string]any{"text": data}, nil
	}
	return data, nil
}

func loadTree(path string) (*vdom.VNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeTreeFileInvalid).WithSubject(path).Wrap(err)
	}
	return parseTree(data, path)
}

func parseTree(data []byte, name string) (*vdom.VNode, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.New(errors.CodeTreeFileInvalid).WithSubject(name).Wrap(err)
	}
	if raw == nil {
		return nil, errors.New(errors.CodeTreeFileInvalid).
			WithSubject(name).
			WithDetail("The tree file is empty.")
	}

	var specs []treeSpec
	var target any = &specs
	if _, ok := raw.([]any); !ok {
		specs = make([]treeSpec, 1)
		target = &specs[0]
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.DecodeHookFuncType(textHook),
		ErrorUnused: true,
		Result:      target,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.New(errors.CodeTreeFileInvalid).WithSubject(name).Wrap(err)
	}

	nodes := make([]*vdom.VNode, 0, len(specs))
	for i, s := range specs {
		n, err := s.build(fmt.Sprintf("[%d]", i))
		if err != nil {
			return nil, errors.New(errors.CodeTreeFileInvalid).WithSubject(name).Wrap(err)
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return vdom.Fragment(nodes), nil
}

func (s treeSpec) build(at string) (*vdom.VNode, error) {
	switch {
	case s.Text != nil && s.Tag == "":
		if len(s.Children) > 0 || len(s.Props) > 0 {
			return nil, fmt.Errorf("text node at %s cannot have props or children", at)
		}
		return vdom.Text(*s.Text), nil

	case s.Tag != "" && s.Text == nil:
		props := make(vdom.Props, len(s.Props)+1)
		for k, v := range s.Props {
			props[k] = v
		}
		if s.Key != "" {
			props["key"] = s.Key
		}
		children := make([]*vdom.VNode, 0, len(s.Children))
		for i, c := range s.Children {
			child, err := c.build(fmt.Sprintf("%s.children[%d]", at, i))
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return vdom.H(s.Tag, props, children), nil

	default:
		return nil, fmt.Errorf("node at %s needs either a tag or a text", at)
	}
}

// specOf converts a static tree back to its YAML form. Fragments become
// lists; component nodes are written by name.
func specOf(n *vdom.VNode) any {
	if n == nil {
		return nil
	}
	if n.Kind == vdom.KindFragment {
		out := make([]any, 0, len(n.Children))
		for _, c := range n.Children {
			out = append(out, specOf(c))
		}
		return out
	}
	return nodeSpec(n)
}

func nodeSpec(n *vdom.VNode) treeSpec {
	if n.Kind == vdom.KindText {
		text := n.Text
		return treeSpec{Text: &text}
	}
	s := treeSpec{Tag: n.Tag, Key: n.Key}
	keys := make([]string, 0, len(n.Props))
	for k := range n.Props {
		if k != "key" && !vdom.IsEventHandler(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		s.Props = make(map[string]any, len(keys))
		for _, k := range keys {
			s.Props[k] = n.Props[k]
		}
	}
	for _, c := range n.Children {
		if c.Kind == vdom.KindFragment {
			for _, gc := range c.Children {
				s.Children = append(s.Children, nodeSpec(gc))
			}
			continue
		}
		s.Children = append(s.Children, nodeSpec(c))
	}
	return s
}
