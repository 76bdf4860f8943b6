package reactive

import (
	"sync"
	"weak"
)

// subTable holds the subscriber sets of one handle, keyed by field. It is
// owned by its handle: the graph only keeps a weak pointer, so a handle
// captured by the effects reading it is collected together with them.
type subTable struct {
	id     uint64
	fields map[string]*depSet
}

func newSubTable(id uint64) *subTable {
	return &subTable{id: id, fields: make(map[string]*depSet)}
}

// depSet is the ordered set of effects subscribed to one (handle, field) pair.
type depSet struct {
	table  *subTable
	field  string
	subs   []*Effect
	member map[*Effect]struct{}
}

func (d *depSet) add(e *Effect) bool {
	if _, ok := d.member[e]; ok {
		return false
	}
	d.member[e] = struct{}{}
	d.subs = append(d.subs, e)
	return true
}

func (d *depSet) remove(e *Effect) {
	if _, ok := d.member[e]; !ok {
		return
	}
	delete(d.member, e)
	for i, s := range d.subs {
		if s == e {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			break
		}
	}
}

// graph indexes the live subscriber tables by handle id for inspection.
// The mutex also guards every table and effect dependency list. Effects
// never run while it is held.
type graph struct {
	mu      sync.Mutex
	handles map[uint64]weak.Pointer[subTable]
}

var deps = &graph{handles: make(map[uint64]weak.Pointer[subTable])}

// track records a read of a handle field against the active effect.
func track(t *subTable, field string) {
	e := activeEffect()
	if e == nil || e.stopped.Load() {
		return
	}
	deps.subscribe(e, t, field)
}

func (g *graph) subscribe(e *Effect, t *subTable, field string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	set := t.fields[field]
	if set == nil {
		set = &depSet{table: t, field: field, member: make(map[*Effect]struct{})}
		t.fields[field] = set
	}
	if set.add(e) {
		e.deps = append(e.deps, set)
	}
	if _, ok := g.handles[t.id]; !ok {
		g.handles[t.id] = weak.Make(t)
	}
}

// detach removes e from every set it belongs to and clears its dependency
// list.
func (g *graph) detach(e *Effect) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, set := range e.deps {
		set.remove(e)
		if len(set.subs) == 0 {
			g.prune(set)
		}
	}
	e.deps = e.deps[:0]
}

// prune drops an empty set, and the handle's index entry when no fields
// remain. Caller holds g.mu.
func (g *graph) prune(set *depSet) {
	t := set.table
	if t.fields[set.field] != set {
		return
	}
	delete(t.fields, set.field)
	if len(t.fields) == 0 {
		delete(g.handles, t.id)
	}
}

// lookup returns the live table of a handle. Caller holds g.mu.
func (g *graph) lookup(handle uint64) *subTable {
	wp, ok := g.handles[handle]
	if !ok {
		return nil
	}
	return wp.Value()
}

// subscribers returns a copy of the effects subscribed to a handle field,
// computed-backed effects first.
func (g *graph) subscribers(t *subTable, field string) []*Effect {
	g.mu.Lock()
	defer g.mu.Unlock()

	set := t.fields[field]
	if set == nil || len(set.subs) == 0 {
		return nil
	}
	out := make([]*Effect, 0, len(set.subs))
	for _, e := range set.subs {
		if e.computed {
			out = append(out, e)
		}
	}
	for _, e := range set.subs {
		if !e.computed {
			out = append(out, e)
		}
	}
	return out
}

// forget drops the index entry of a handle that is no longer reachable.
func (g *graph) forget(handle uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.handles, handle)
}

// trigger notifies the subscribers of a handle field after a write.
//
// Effects that are running anywhere on the stack are skipped, not only the
// innermost one: a nested effect writing a field its outer effect read does
// not re-run the outer effect. The write is visible to the outer effect's
// next run.
func trigger(t *subTable, field string) {
	subs := deps.subscribers(t, field)
	if len(subs) == 0 {
		return
	}
	active := activeEffect()
	for _, e := range subs {
		if e == active || e.running.Load() || e.stopped.Load() {
			continue
		}
		e.notify()
	}
}

// GraphStats describes the size of the dependency graph.
type GraphStats struct {
	Handles       int
	Fields        int
	Subscriptions int
}

// Stats returns a snapshot of the dependency graph size. Handles that were
// collected are not counted.
func Stats() GraphStats {
	deps.mu.Lock()
	defer deps.mu.Unlock()

	var s GraphStats
	for id := range deps.handles {
		t := deps.lookup(id)
		if t == nil {
			continue
		}
		s.Handles++
		s.Fields += len(t.fields)
		for _, set := range t.fields {
			s.Subscriptions += len(set.subs)
		}
	}
	return s
}

// Subscribers returns the number of effects subscribed to a field of a
// handle.
func Subscribers(handle uint64, field string) int {
	deps.mu.Lock()
	defer deps.mu.Unlock()
	if t := deps.lookup(handle); t != nil {
		if set := t.fields[field]; set != nil {
			return len(set.subs)
		}
	}
	return 0
}
