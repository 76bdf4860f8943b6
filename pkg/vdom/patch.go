package vdom

import (
	"fmt"
	"strings"
)

// PatchKind is the type of patch operation.
type PatchKind uint8

const (
	PatchCreate   PatchKind = 0x01 // Materialize and append a new node
	PatchRemove   PatchKind = 0x02 // Detach the node
	PatchReplace  PatchKind = 0x03 // Swap the node for a new one
	PatchText     PatchKind = 0x04 // Overwrite text content
	PatchProps    PatchKind = 0x05 // Apply property changes
	PatchChildren PatchKind = 0x06 // Recurse into children by index
)

// String returns the string representation of the PatchKind.
func (k PatchKind) String() string {
	switch k {
	case PatchCreate:
		return "Create"
	case PatchRemove:
		return "Remove"
	case PatchReplace:
		return "Replace"
	case PatchText:
		return "Text"
	case PatchProps:
		return "Props"
	case PatchChildren:
		return "Children"
	default:
		return "Unknown"
	}
}

// Patch is one edit produced by Diff.
type Patch struct {
	Kind     PatchKind
	Node     *VNode       // Create, Replace
	Text     string       // Text
	Props    []PropChange // Props
	Children []ChildPatch // Children
}

// PropChange sets a property. A nil Value removes it.
type PropChange struct {
	Key   string
	Value any
}

// Removed reports whether the change removes the property.
func (c PropChange) Removed() bool {
	return c.Value == nil
}

// ChildPatch addresses nested patches to the child at Index.
type ChildPatch struct {
	Index   int
	Patches []Patch
}

// String renders the patch for logs and CLI output.
func (p Patch) String() string {
	switch p.Kind {
	case PatchCreate, PatchReplace:
		return fmt.Sprintf("%s(%s)", p.Kind, p.Node)
	case PatchRemove:
		return "Remove"
	case PatchText:
		return fmt.Sprintf("Text(%q)", p.Text)
	case PatchProps:
		parts := make([]string, len(p.Props))
		for i, c := range p.Props {
			if c.Removed() {
				parts[i] = "-" + c.Key
			} else {
				parts[i] = fmt.Sprintf("%s=%v", c.Key, displayValue(c.Value))
			}
		}
		return "Props(" + strings.Join(parts, ", ") + ")"
	case PatchChildren:
		parts := make([]string, len(p.Children))
		for i, c := range p.Children {
			parts[i] = fmt.Sprintf("%d:%s", c.Index, FormatPatches(c.Patches))
		}
		return "Children(" + strings.Join(parts, ", ") + ")"
	default:
		return p.Kind.String()
	}
}

// FormatPatches renders a patch list as "[p1 p2 ...]".
func FormatPatches(patches []Patch) string {
	parts := make([]string, len(patches))
	for i, p := range patches {
		parts[i] = p.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// CountPatches returns the number of patches including nested ones.
func CountPatches(patches []Patch) int {
	n := 0
	for _, p := range patches {
		n++
		for _, c := range p.Children {
			n += CountPatches(c.Patches)
		}
	}
	return n
}

func displayValue(v any) any {
	if isFunc(v) {
		return "func"
	}
	return v
}
