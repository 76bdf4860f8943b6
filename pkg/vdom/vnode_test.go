package vdom

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindComponent, "Component"},
		{KindFragment, "Fragment"},
		{Kind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestClone(t *testing.T) {
	orig := H("div", Props{"class": "a"}, H("span", nil, "x"))
	c := orig.Clone()

	c.Props["class"] = "b"
	c.Children[0].Children[0].Text = "y"

	if orig.Props["class"] != "a" || orig.Children[0].Children[0].Text != "x" {
		t.Error("Clone shares state with the original")
	}
	if (*VNode)(nil).Clone() != nil {
		t.Error("Clone(nil) should be nil")
	}
}

func TestCount(t *testing.T) {
	n := H("div", nil, H("p", nil, "a", "b"), "c")
	if got := n.Count(); got != 5 {
		t.Errorf("Count() = %d, want 5", got)
	}
}

func TestIsInteractive(t *testing.T) {
	if H("div", nil).IsInteractive() {
		t.Error("plain div reported interactive")
	}
	if !H("button", Props{"onClick": func() {}}).IsInteractive() {
		t.Error("button with handler not interactive")
	}
	if Text("x").IsInteractive() {
		t.Error("text reported interactive")
	}
}

func TestSortedKeys(t *testing.T) {
	keys := Props{"b": 1, "a": 2, "c": 3}.SortedKeys()
	if len(keys) != 3 || keys[0] != "a" || keys[2] != "c" {
		t.Errorf("SortedKeys() = %v", keys)
	}
}
