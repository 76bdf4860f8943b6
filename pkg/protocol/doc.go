// Package protocol implements the binary encodings used by Eghact to move
// trees and patch lists across process and module boundaries.
//
// The same encodings are used for values written into the accelerated
// backend's linear memory and for the devtools patch feed.
//
// # Encoding
//
//   - Varint: compact unsigned integers (protobuf-style)
//   - ZigZag: signed integers encoded as unsigned varints
//   - Length-prefixed: strings and byte slices prefixed with a varint length
//   - Frames: a 4-byte little-endian length followed by the payload, used
//     for buffers placed in guest memory
//
// # Trees
//
//	[Kind: byte | 0xFF nil][Tag][Key][Text][Props: count, (key, value)*][Children: count, node*]
//
// Props are written in key order. Values are tagged: nil, string, bool,
// int, float, string map, function reference and opaque text. A function
// reference is the handler's code pointer, so two encodings of the same
// handler compare equal without the handler crossing the boundary.
//
// # Patches
//
//	[count][Kind: byte][payload]...
//
// Create and Replace carry either an inline tree or a reference marker
// meaning "the node at this position in the new tree". Props values may
// likewise be references to the new node's prop. DecodePatchesFor resolves
// references against the tree that was diffed.
//
// # Limits
//
// Decoders bound allocation size, collection counts and nesting depth, so
// malformed input yields an error rather than a crash.
package protocol
