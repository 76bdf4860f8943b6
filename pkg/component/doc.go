// Package component ties reactive state, the diff engine and the render
// target together.
//
// A Definition is created with Define or Closure. Each placement of a
// definition in a tree gets its own Instance with props, a reactive State
// cell, named refs and exactly one render effect. The render effect re-runs
// whenever something it read changes, diffs the new tree against the
// previous one and patches the live handle.
//
// Instance lifecycle:
//
//	Constructed -> Mounted -> (Updating <-> Mounted) -> Unmounted
//
// Mounting twice or unmounting twice is logged as a warning and ignored.
//
// # Hooks
//
// UseState, UseEffect, UseRef, UseComputed and UseContext address
// per-instance slots by call order. They must run in the same order on every
// render of an instance. With debug mode on, a change in order panics with
// code E002.
//
// # Bootstrapping
//
//	app := component.Bootstrap(Root, container)
//	app.Mount()
//	defer app.Unmount()
package component
