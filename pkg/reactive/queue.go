package reactive

import "sync"

// Queue collects scheduled effects and runs each of them once per Flush.
// Use q.Schedule with WithScheduler to coalesce re-runs.
type Queue struct {
	mu      sync.Mutex
	pending []*Effect
	queued  map[uint64]bool
	order   func(ids []uint64) []uint64

	flushing bool
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithOrderer sets a function that reorders the ids of pending effects
// before a flush. Ids it drops are still run, after the ordered ones.
func WithOrderer(fn func(ids []uint64) []uint64) QueueOption {
	return func(q *Queue) { q.order = fn }
}

// NewQueue creates an empty queue.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{queued: make(map[uint64]bool)}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Schedule enqueues e unless it is already pending.
func (q *Queue) Schedule(e *Effect) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.queued[e.id] {
		return
	}
	q.queued[e.id] = true
	q.pending = append(q.pending, e)
}

// Len returns the number of pending effects.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush runs pending effects until none remain and returns how many runs
// were performed. Effects scheduled during a flush run in a later round of
// the same call. Nested calls return 0.
func (q *Queue) Flush() int {
	q.mu.Lock()
	if q.flushing {
		q.mu.Unlock()
		return 0
	}
	q.flushing = true
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.flushing = false
		q.mu.Unlock()
	}()

	ran := 0
	for {
		batch := q.drain()
		if len(batch) == 0 {
			return ran
		}
		for _, e := range batch {
			if e.Stopped() {
				continue
			}
			e.Run()
			ran++
		}
	}
}

// drain takes the pending effects in run order.
func (q *Queue) drain() []*Effect {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.queued = make(map[uint64]bool)
	order := q.order
	q.mu.Unlock()

	if order == nil || len(batch) < 2 {
		return batch
	}

	byID := make(map[uint64]*Effect, len(batch))
	ids := make([]uint64, len(batch))
	for i, e := range batch {
		byID[e.id] = e
		ids[i] = e.id
	}

	out := make([]*Effect, 0, len(batch))
	for _, id := range order(ids) {
		if e, ok := byID[id]; ok {
			out = append(out, e)
			delete(byID, id)
		}
	}
	for _, e := range batch {
		if _, ok := byID[e.id]; ok {
			out = append(out, e)
		}
	}
	return out
}
