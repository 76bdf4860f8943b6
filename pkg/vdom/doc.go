// Package vdom provides the virtual tree model and diff engine for Eghact.
//
// A VNode describes one node of rendered output: an element, a text node, a
// reference to a component definition, or a fragment grouping children
// without a wrapper. Trees returned by a render pass are treated as
// immutable; Diff never mutates its inputs.
//
// # Construction
//
// H builds element nodes. Children may be nested slices of any depth; nil
// entries are dropped and strings and numbers become text nodes:
//
//	vdom.H("ul", vdom.Props{"class": "list"},
//	    vdom.H("li", nil, "first"),
//	    items,          // []*vdom.VNode
//	    42,             // text "42"
//	)
//
// # Diffing
//
// Diff compares two trees and returns an ordered list of patches:
//
//   - old nil, new present: Create
//   - old present, new nil: Remove
//   - different tag, kind or component: Replace
//   - two text nodes: Text when the value differs
//   - otherwise: a Props patch for the changed properties followed by a
//     Children patch comparing children position by position
//
// Children are compared by position only. Keys are carried on nodes but not
// consulted, so inserting into the middle of a list patches every shifted
// sibling.
package vdom
