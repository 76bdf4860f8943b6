package vdom

import (
	"reflect"
	"sort"
	"unsafe"
)

// Diff compares two trees and returns the patches transforming prev into
// next. It returns nil when the trees are structurally equivalent.
func Diff(prev, next *VNode) []Patch {
	switch {
	case prev == nil && next == nil:
		return nil
	case prev == nil:
		return []Patch{{Kind: PatchCreate, Node: next}}
	case next == nil:
		return []Patch{{Kind: PatchRemove}}
	case !sameType(prev, next):
		return []Patch{{Kind: PatchReplace, Node: next}}
	case prev.Kind == KindText:
		if prev.Text != next.Text {
			return []Patch{{Kind: PatchText, Text: next.Text}}
		}
		return nil
	}

	var patches []Patch
	if changes := diffProps(prev.Props, next.Props); len(changes) > 0 {
		patches = append(patches, Patch{Kind: PatchProps, Props: changes})
	}
	if children := diffChildren(prev.Children, next.Children); len(children) > 0 {
		patches = append(patches, Patch{Kind: PatchChildren, Children: children})
	}
	return patches
}

// Equal reports whether two trees are structurally equivalent.
func Equal(a, b *VNode) bool {
	return len(Diff(a, b)) == 0
}

// sameType reports whether two nodes share kind and tag and, for component
// nodes, definition.
func sameType(a, b *VNode) bool {
	if a.Kind != b.Kind || a.Tag != b.Tag {
		return false
	}
	if a.Kind == KindComponent {
		return a.Comp == b.Comp
	}
	return true
}

// diffProps returns the changes between two prop maps in key order. The
// identity key is not compared.
func diffProps(prev, next Props) []PropChange {
	var changes []PropChange

	for _, key := range mergedKeys(prev, next) {
		if key == "key" {
			continue
		}
		pv, inPrev := prev[key]
		nv, inNext := next[key]
		switch {
		case inPrev && !inNext:
			changes = append(changes, PropChange{Key: key})
		case !inPrev && inNext:
			changes = append(changes, PropChange{Key: key, Value: nv})
		case !propsEqual(pv, nv):
			changes = append(changes, PropChange{Key: key, Value: nv})
		}
	}
	return changes
}

func mergedKeys(a, b Props) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// diffChildren compares children position by position up to the longer
// list's length.
func diffChildren(prev, next []*VNode) []ChildPatch {
	n := len(prev)
	if len(next) > n {
		n = len(next)
	}

	var out []ChildPatch
	for i := 0; i < n; i++ {
		var p, q *VNode
		if i < len(prev) {
			p = prev[i]
		}
		if i < len(next) {
			q = next[i]
		}
		if patches := Diff(p, q); len(patches) > 0 {
			out = append(out, ChildPatch{Index: i, Patches: patches})
		}
	}
	return out
}

// propsEqual compares two prop values. Functions compare by identity, see
// FuncIdentity.
func propsEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	if isFunc(a) || isFunc(b) {
		fa, _ := FuncIdentity(a)
		fb, _ := FuncIdentity(b)
		return isFunc(a) && isFunc(b) &&
			reflect.TypeOf(a) == reflect.TypeOf(b) && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}

// FuncIdentity returns the identity of a function value: the address of its
// closure record. Copies of one value share it, while every evaluation of a
// capturing func literal yields a new one. ok is false for non-functions.
func FuncIdentity(v any) (id uintptr, ok bool) {
	if !isFunc(v) {
		return 0, false
	}
	type eface struct {
		typ  unsafe.Pointer
		data unsafe.Pointer
	}
	return uintptr((*eface)(unsafe.Pointer(&v)).data), true
}
