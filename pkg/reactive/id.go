package reactive

import "sync/atomic"

// idCounter is the source of ids for cells, refs, computed values and effects.
var idCounter uint64

// nextID returns a unique, monotonically increasing id.
func nextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}
