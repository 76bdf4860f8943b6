// Package vtest provides testing helpers for Eghact trees and render targets.
//
// # Random trees
//
// RandomTree builds a pseudo-random tree from a seed, and GenTree wraps it as
// a gopter generator for property tests:
//
//	properties.Property("diff is idempotent", prop.ForAll(
//	    func(tree *vdom.VNode) bool {
//	        return len(vdom.Diff(tree, tree.Clone())) == 0
//	    },
//	    vtest.GenTree(4),
//	))
//
// Mutate derives a second tree from the first so property tests exercise
// every patch kind.
//
// # Render assertions
//
// Assertions accept anything with an OuterHTML method, such as a live
// dom.Node:
//
//	vtest.ExpectContains(t, doc.Root(), "Welcome")
//	vtest.ExpectAttribute(t, doc.Root(), "class", "btn-primary")
package vtest
