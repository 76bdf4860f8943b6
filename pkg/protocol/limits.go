package protocol

import "errors"

// Depth limits bound recursion when decoding nested structures.
const (
	// MaxTreeDepth limits the nesting depth of decoded trees.
	MaxTreeDepth = 256

	// MaxPatchDepth limits the nesting depth of Children patches.
	MaxPatchDepth = 256
)

// ErrMaxDepthExceeded is returned when a decoded structure nests deeper
// than the configured limit.
var ErrMaxDepthExceeded = errors.New("protocol: maximum nesting depth exceeded")

// checkDepth reports an error once current exceeds max.
func checkDepth(current, max int) error {
	if current > max {
		return ErrMaxDepthExceeded
	}
	return nil
}
