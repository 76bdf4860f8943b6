package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_CoalescesReruns(t *testing.T) {
	q := NewQueue()
	state := NewCell(map[string]any{"a": 0, "b": 0})

	e := NewEffect(func() {
		state.Get("a")
		state.Get("b")
	}, WithScheduler(q.Schedule))

	state.Set("a", 1)
	state.Set("b", 1)
	state.Set("a", 2)

	assert.Equal(t, 1, q.Len())
	assert.Equal(t, uint64(1), e.Runs())

	assert.Equal(t, 1, q.Flush())
	assert.Equal(t, uint64(2), e.Runs())
	assert.Equal(t, 0, q.Flush())
}

func TestQueue_Orderer(t *testing.T) {
	reverse := func(ids []uint64) []uint64 {
		out := make([]uint64, 0, len(ids))
		for i := len(ids) - 1; i >= 0; i-- {
			out = append(out, ids[i])
		}
		return out[:len(out)-1]
	}
	q := NewQueue(WithOrderer(reverse))
	r := NewRef(0)

	var order []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		first := true
		NewEffect(func() {
			r.Value()
			if !first {
				order = append(order, name)
			}
			first = false
		}, WithScheduler(q.Schedule))
	}

	r.Set(1)
	q.Flush()
	assert.Equal(t, []string{"c", "b", "a"}, order, "ids dropped by the orderer still run last")
}

func TestQueue_SkipsStoppedEffects(t *testing.T) {
	q := NewQueue()
	r := NewRef(0)
	e := NewEffect(func() { r.Value() }, WithScheduler(q.Schedule))

	r.Set(1)
	e.Stop()
	assert.Equal(t, 0, q.Flush())
}

func TestQueue_RunsEffectsScheduledDuringFlush(t *testing.T) {
	q := NewQueue()
	a := NewRef(0)
	b := NewRef(0)

	NewEffect(func() { b.Set(a.Value() * 10) }, WithScheduler(q.Schedule))
	var seen []int
	NewEffect(func() { seen = append(seen, b.Value()) }, WithScheduler(q.Schedule))

	a.Set(1)
	assert.Equal(t, 2, q.Flush())
	assert.Equal(t, []int{0, 10}, seen)
}
