package vtest

import (
	"math/rand"
	"strconv"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"

	"github.com/eghact/eghact/pkg/vdom"
)

var (
	tags    = []string{"div", "span", "p", "ul", "li", "button"}
	classes = []string{"a", "b", "card", "active"}
	words   = []string{"x", "y", "hello", "world", ""}
)

// RandomTree builds an element tree of at most the given depth from r.
// Trees contain elements, text and fragments with class, id, style, boolean
// and data- attributes.
func RandomTree(r *rand.Rand, depth int) *vdom.VNode {
	props := vdom.Props{}
	if r.Intn(2) == 0 {
		props["class"] = classes[r.Intn(len(classes))]
	}
	if r.Intn(3) == 0 {
		props["id"] = "n" + strconv.Itoa(r.Intn(5))
	}
	if r.Intn(4) == 0 {
		props["style"] = map[string]string{"color": classes[r.Intn(len(classes))]}
	}
	if r.Intn(4) == 0 {
		props["hidden"] = true
	}
	if r.Intn(4) == 0 {
		props["data-n"] = strconv.Itoa(r.Intn(3))
	}

	var children []any
	if depth > 0 {
		for i := r.Intn(4); i > 0; i-- {
			children = append(children, randomChild(r, depth-1))
		}
	}
	return vdom.H(tags[r.Intn(len(tags))], props, children...)
}

func randomChild(r *rand.Rand, depth int) *vdom.VNode {
	switch r.Intn(5) {
	case 0, 1:
		return vdom.Text(words[r.Intn(len(words))])
	case 2:
		if depth > 0 {
			return vdom.Fragment(RandomTree(r, depth-1), vdom.Text(words[r.Intn(len(words))]))
		}
		return vdom.Text("leaf")
	default:
		return RandomTree(r, depth)
	}
}

// Mutate returns a modified deep copy of tree. The input is not changed.
func Mutate(r *rand.Rand, tree *vdom.VNode) *vdom.VNode {
	out := tree.Clone()
	mutate(r, out, 3)
	return out
}

func mutate(r *rand.Rand, n *vdom.VNode, depth int) {
	if n.Kind == vdom.KindText {
		if r.Intn(2) == 0 {
			n.Text = words[r.Intn(len(words))]
		}
		return
	}
	if n.Kind == vdom.KindElement {
		switch r.Intn(4) {
		case 0:
			n.Props["class"] = classes[r.Intn(len(classes))]
		case 1:
			delete(n.Props, "class")
			delete(n.Props, "hidden")
		case 2:
			n.Props["title"] = words[r.Intn(len(words))]
		}
	}
	switch r.Intn(4) {
	case 0:
		n.Children = append(n.Children, RandomTree(r, 1))
	case 1:
		if len(n.Children) > 0 {
			n.Children = n.Children[:len(n.Children)-1]
		}
	case 2:
		if len(n.Children) > 0 {
			i := r.Intn(len(n.Children))
			n.Children[i] = randomChild(r, 1)
		}
	}
	if depth == 0 {
		return
	}
	for _, c := range n.Children {
		if r.Intn(2) == 0 {
			mutate(r, c, depth-1)
		}
	}
}

// GenTree generates random trees of at most the given depth.
func GenTree(depth int) gopter.Gen {
	return gen.Int64().Map(func(seed int64) *vdom.VNode {
		return RandomTree(rand.New(rand.NewSource(seed)), depth)
	})
}

// GenTreePair generates a tree and a mutated copy of it.
func GenTreePair(depth int) gopter.Gen {
	return gen.Int64().Map(func(seed int64) [2]*vdom.VNode {
		r := rand.New(rand.NewSource(seed))
		old := RandomTree(r, depth)
		return [2]*vdom.VNode{old, Mutate(r, old)}
	})
}
