// Package routine identifies the calling goroutine so per-goroutine stacks
// can be kept in a sync.Map.
package routine

import "runtime"

// ID parses the current goroutine id from the runtime stack header
// ("goroutine <id> [...").
func ID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
