package vdom

import (
	"reflect"
	"testing"
)

func TestDiffBothNil(t *testing.T) {
	if patches := Diff(nil, nil); len(patches) != 0 {
		t.Errorf("Expected 0 patches, got %d", len(patches))
	}
}

func TestDiffNodeCreated(t *testing.T) {
	next := H("div", nil)
	patches := Diff(nil, next)

	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %d", len(patches))
	}
	if patches[0].Kind != PatchCreate || patches[0].Node != next {
		t.Errorf("got %v, want Create(next)", patches[0])
	}
}

func TestDiffNodeRemoved(t *testing.T) {
	patches := Diff(H("div", nil), nil)

	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %d", len(patches))
	}
	if patches[0].Kind != PatchRemove {
		t.Errorf("Kind = %v, want Remove", patches[0].Kind)
	}
}

func TestDiffTagChange(t *testing.T) {
	next := H("span", nil)
	patches := Diff(H("div", nil), next)

	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %d", len(patches))
	}
	if patches[0].Kind != PatchReplace || patches[0].Node != next {
		t.Errorf("got %v, want Replace(<span/>)", patches[0])
	}
}

func TestDiffKindMismatchReplaces(t *testing.T) {
	tests := []struct {
		name       string
		prev, next *VNode
	}{
		{"text to element", Text("x"), H("x", nil)},
		{"element to text", H("p", nil), Text("p")},
		{"element to fragment", H("div", nil), Fragment()},
		{"different component", Comp(&testDef{"A"}, nil), Comp(&testDef{"A"}, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patches := Diff(tt.prev, tt.next)
			if len(patches) != 1 || patches[0].Kind != PatchReplace {
				t.Errorf("got %s, want [Replace]", FormatPatches(patches))
			}
		})
	}
}

func TestDiffTextChange(t *testing.T) {
	patches := Diff(Text("Hello"), Text("World"))

	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %d", len(patches))
	}
	if patches[0].Kind != PatchText || patches[0].Text != "World" {
		t.Errorf("got %v, want Text(World)", patches[0])
	}

	if patches := Diff(Text("same"), Text("same")); len(patches) != 0 {
		t.Errorf("equal text produced %s", FormatPatches(patches))
	}
}

func TestDiffClassAndText(t *testing.T) {
	prev := H("div", Props{"class": "a"}, "x")
	next := H("div", Props{"class": "b"}, "y")

	want := []Patch{
		{Kind: PatchProps, Props: []PropChange{{Key: "class", Value: "b"}}},
		{Kind: PatchChildren, Children: []ChildPatch{
			{Index: 0, Patches: []Patch{{Kind: PatchText, Text: "y"}}},
		}},
	}
	if got := Diff(prev, next); !reflect.DeepEqual(got, want) {
		t.Errorf("Diff = %s, want %s", FormatPatches(got), FormatPatches(want))
	}
}

func TestDiffProps(t *testing.T) {
	prev := H("input", Props{"type": "text", "value": "a", "disabled": true, "key": "1"})
	next := H("input", Props{"type": "text", "value": "b", "placeholder": "p", "key": "2"})

	patches := Diff(prev, next)
	if len(patches) != 1 || patches[0].Kind != PatchProps {
		t.Fatalf("got %s, want a single Props patch", FormatPatches(patches))
	}

	want := []PropChange{
		{Key: "disabled"},
		{Key: "placeholder", Value: "p"},
		{Key: "value", Value: "b"},
	}
	if !reflect.DeepEqual(patches[0].Props, want) {
		t.Errorf("Props = %v, want %v", patches[0].Props, want)
	}
	if !patches[0].Props[0].Removed() {
		t.Error("disabled should be reported as removed")
	}
}

func TestDiffIgnoresKey(t *testing.T) {
	if patches := Diff(H("li", Props{"key": "a"}), H("li", Props{"key": "b"})); len(patches) != 0 {
		t.Errorf("key change produced %s", FormatPatches(patches))
	}
}

func TestDiffEventHandlers(t *testing.T) {
	handler := func() {}
	other := func() { _ = 1 }

	same := Diff(H("button", Props{"onclick": handler}), H("button", Props{"onclick": handler}))
	if len(same) != 0 {
		t.Errorf("same handler produced %s", FormatPatches(same))
	}

	changed := Diff(H("button", Props{"onclick": handler}), H("button", Props{"onclick": other}))
	if len(changed) != 1 || changed[0].Kind != PatchProps {
		t.Fatalf("changed handler produced %s", FormatPatches(changed))
	}

	// Each render builds a new closure over its own state.
	makeHandler := func(n int) func() { return func() { _ = n } }
	rerendered := Diff(H("button", Props{"onclick": makeHandler(1)}), H("button", Props{"onclick": makeHandler(1)}))
	if len(rerendered) != 1 {
		t.Errorf("fresh closure produced %s, want a Props patch", FormatPatches(rerendered))
	}
}

func TestFuncIdentity(t *testing.T) {
	f := func() {}
	a, ok := FuncIdentity(f)
	if !ok || a == 0 {
		t.Fatalf("FuncIdentity(f) = %d, %v", a, ok)
	}
	g := f
	if b, _ := FuncIdentity(g); b != a {
		t.Errorf("copies of a func value have different identities")
	}
	if _, ok := FuncIdentity("x"); ok {
		t.Error("strings have no func identity")
	}
}

func TestDiffStyleMap(t *testing.T) {
	prev := H("div", Props{"style": map[string]string{"color": "red"}})
	same := H("div", Props{"style": map[string]string{"color": "red"}})
	next := H("div", Props{"style": map[string]string{"color": "blue"}})

	if patches := Diff(prev, same); len(patches) != 0 {
		t.Errorf("equal style maps produced %s", FormatPatches(patches))
	}
	if patches := Diff(prev, next); len(patches) != 1 {
		t.Errorf("changed style produced %s", FormatPatches(patches))
	}
}

func TestDiffChildrenPositional(t *testing.T) {
	prev := H("ul", nil,
		H("li", Props{"key": "a"}, "a"),
		H("li", Props{"key": "b"}, "b"),
	)
	next := H("ul", nil,
		H("li", Props{"key": "z"}, "z"),
		H("li", Props{"key": "a"}, "a"),
		H("li", Props{"key": "b"}, "b"),
	)

	patches := Diff(prev, next)
	if len(patches) != 1 || patches[0].Kind != PatchChildren {
		t.Fatalf("got %s", FormatPatches(patches))
	}

	children := patches[0].Children
	if len(children) != 3 {
		t.Fatalf("inserting at the head should touch every position, got %d child patches", len(children))
	}
	for i := 0; i < 2; i++ {
		if children[i].Index != i || children[i].Patches[0].Kind != PatchChildren {
			t.Errorf("child %d: got %s, want a nested text patch", i, FormatPatches(children[i].Patches))
		}
	}
	if children[2].Index != 2 || children[2].Patches[0].Kind != PatchCreate {
		t.Errorf("child 2: got %s, want Create", FormatPatches(children[2].Patches))
	}
}

func TestDiffChildRemoved(t *testing.T) {
	prev := H("div", nil, "a", "b", "c")
	next := H("div", nil, "a")

	patches := Diff(prev, next)
	if len(patches) != 1 || len(patches[0].Children) != 2 {
		t.Fatalf("got %s", FormatPatches(patches))
	}
	for i, cp := range patches[0].Children {
		if cp.Index != i+1 || cp.Patches[0].Kind != PatchRemove {
			t.Errorf("child patch %d = %d:%s, want Remove", i, cp.Index, FormatPatches(cp.Patches))
		}
	}
}

func TestDiffComponents(t *testing.T) {
	def := &testDef{"Counter"}

	if patches := Diff(Comp(def, Props{"n": 1}), Comp(def, Props{"n": 1})); len(patches) != 0 {
		t.Errorf("equal component nodes produced %s", FormatPatches(patches))
	}

	patches := Diff(Comp(def, Props{"n": 1}), Comp(def, Props{"n": 2}))
	if len(patches) != 1 || patches[0].Kind != PatchProps {
		t.Fatalf("got %s, want Props", FormatPatches(patches))
	}
}

func TestDiffDoesNotMutateInputs(t *testing.T) {
	prev := H("div", Props{"class": "a"}, "x", H("b", nil))
	next := H("div", Props{"id": "n"}, "y")
	prevCopy, nextCopy := prev.Clone(), next.Clone()

	Diff(prev, next)

	if !reflect.DeepEqual(prev, prevCopy) || !reflect.DeepEqual(next, nextCopy) {
		t.Error("Diff mutated its inputs")
	}
}

func TestEqual(t *testing.T) {
	a := H("div", Props{"class": "a"}, "x")
	if !Equal(a, a.Clone()) {
		t.Error("tree should equal its clone")
	}
	if Equal(a, H("div", Props{"class": "b"}, "x")) {
		t.Error("trees with different props should not be equal")
	}
}

func TestPatchString(t *testing.T) {
	patches := Diff(
		H("div", Props{"class": "a", "hidden": true}, "x"),
		H("div", Props{"class": "b"}, "y", H("span", nil)),
	)
	want := `[Props(class=b, -hidden) Children(0:[Text("y")], 1:[Create(<span/>)])]`
	if got := FormatPatches(patches); got != want {
		t.Errorf("FormatPatches = %s, want %s", got, want)
	}
	if CountPatches(patches) != 4 {
		t.Errorf("CountPatches = %d, want 4", CountPatches(patches))
	}
}
