// Package dom is the in-memory render target for Eghact trees.
//
// An Adapter materializes vdom trees into live Nodes and applies patch lists
// to them. A Document owns the root node and the delegated event listeners.
//
// # Property rules
//
// Props are applied in this order of precedence:
//
//  1. Keys starting with "on" register or remove a handler in the node's
//     handler table.
//  2. "class" and "style" map to the class name and style declarations.
//     Style accepts a map or a "k: v; k2: v2" string.
//  3. Native fields (value, checked, id, ...) are assigned directly, except
//     for keys in the aria- and data- namespaces.
//  4. Anything else is a generic attribute: true sets a presence-only
//     attribute, false or nil removes it, other values are set verbatim.
//
// A style map in a Props patch is merged into the existing declarations.
// Declarations missing from the new map are kept until the style prop
// itself is removed.
//
// # Events
//
// Document.Delegate installs one listener per event type at the root.
// Document.Dispatch walks from the target towards the root, excluding the
// root itself, calling each node's handler for the event type until one
// calls StopPropagation.
package dom
