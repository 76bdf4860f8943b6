package reactive

import (
	"reflect"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"weak"

	"github.com/mitchellh/mapstructure"
)

// Fields tracked for structural reads of a cell.
const (
	// KeysField is notified when an object cell gains or loses a key.
	KeysField = "$keys"
	// LengthField is notified when an array cell changes length.
	LengthField = "length"
)

// Cell is a reactive handle over a map[string]any (object) or []any (array).
// Reads inside an effect are tracked per field; writes that change a value
// notify the subscribers of that field. Nested maps and slices are wrapped
// on read and cached, so repeated reads return the same *Cell.
type Cell struct {
	id      uint64
	subs    *subTable
	mu      sync.RWMutex
	isArray bool
	obj     map[string]any
	arr     []any

	// children caches wrapped nested values by field.
	children map[string]*Cell
}

// wrapCache maps a wrapped map's identity to its cell.
var (
	wrapCacheMu sync.Mutex
	wrapCache   = make(map[uintptr]weak.Pointer[Cell])
)

type cellCleanup struct {
	id  uint64
	key uintptr
	wp  weak.Pointer[Cell]
}

func releaseCell(c cellCleanup) {
	deps.forget(c.id)
	if c.key == 0 {
		return
	}
	wrapCacheMu.Lock()
	if cur, ok := wrapCache[c.key]; ok && cur == c.wp {
		delete(wrapCache, c.key)
	}
	wrapCacheMu.Unlock()
}

func newCell(obj map[string]any, arr []any, isArray bool, key uintptr) *Cell {
	id := nextID()
	c := &Cell{
		id:       id,
		subs:     newSubTable(id),
		isArray:  isArray,
		obj:      obj,
		arr:      arr,
		children: make(map[string]*Cell),
	}
	wp := weak.Make(c)
	runtime.AddCleanup(c, releaseCell, cellCleanup{id: c.id, key: key, wp: wp})
	if key != 0 {
		wrapCache[key] = wp
	}
	return c
}

// Wrap makes a structured value observable. A map[string]any or []any
// becomes a *Cell, a *Cell is returned as is, and any other value is
// returned unchanged. Wrapping the same map twice yields the same cell.
func Wrap(value any) any {
	switch v := value.(type) {
	case *Cell:
		return v
	case map[string]any:
		return NewCell(v)
	case []any:
		return NewArray(v)
	default:
		return value
	}
}

// NewCell wraps an object. A nil map is replaced by an empty one.
func NewCell(obj map[string]any) *Cell {
	if obj == nil {
		obj = make(map[string]any)
	}
	key := reflect.ValueOf(obj).Pointer()

	wrapCacheMu.Lock()
	defer wrapCacheMu.Unlock()
	if wp, ok := wrapCache[key]; ok {
		if c := wp.Value(); c != nil {
			return c
		}
	}
	return newCell(obj, nil, false, key)
}

// NewArray wraps a slice. Arrays are not identity cached since slices
// sharing a backing array are indistinguishable.
func NewArray(arr []any) *Cell {
	return newCell(nil, arr, true, 0)
}

// ID returns the handle id used in the dependency graph.
func (c *Cell) ID() uint64 {
	return c.id
}

// IsArray reports whether the cell wraps a slice.
func (c *Cell) IsArray() bool {
	return c.isArray
}

// Get returns the value of a field, tracking the read. Nested maps and
// slices are returned as cached *Cell values.
func (c *Cell) Get(key string) any {
	track(c.subs, key)
	return c.load(key)
}

// Peek returns the value of a field without tracking.
func (c *Cell) Peek(key string) any {
	return c.load(key)
}

func (c *Cell) load(key string) any {
	c.mu.RLock()
	var v any
	if c.isArray {
		if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < len(c.arr) {
			v = c.arr[i]
		}
	} else {
		v = c.obj[key]
	}
	child := c.children[key]
	c.mu.RUnlock()

	if child != nil {
		return child
	}
	switch v.(type) {
	case map[string]any, []any:
	default:
		return v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if child = c.children[key]; child == nil {
		child = Wrap(v).(*Cell)
		c.children[key] = child
	}
	return child
}

// Has reports whether an object cell has key, tracking the key set.
func (c *Cell) Has(key string) bool {
	track(c.subs, KeysField)
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.obj[key]
	return ok
}

// Set writes a field and notifies its subscribers when the value changed.
// Adding a new key also notifies KeysField.
func (c *Cell) Set(key string, value any) {
	if c.isArray {
		i, err := strconv.Atoi(key)
		if err != nil {
			return
		}
		c.SetIndex(i, value)
		return
	}

	c.mu.Lock()
	old, existed := c.obj[key]
	if existed && c.unchanged(key, old, value) {
		c.mu.Unlock()
		return
	}
	c.obj[key] = value
	c.setChild(key, value)
	c.mu.Unlock()

	trigger(c.subs, key)
	if !existed {
		trigger(c.subs, KeysField)
	}
}

// Delete removes a key from an object cell.
func (c *Cell) Delete(key string) {
	c.mu.Lock()
	if _, ok := c.obj[key]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.obj, key)
	delete(c.children, key)
	c.mu.Unlock()

	trigger(c.subs, key)
	trigger(c.subs, KeysField)
}

// Keys returns the sorted keys of an object cell, or the indices of an
// array cell, tracking the key set.
func (c *Cell) Keys() []string {
	if c.isArray {
		n := c.Len()
		keys := make([]string, n)
		for i := range keys {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	}

	track(c.subs, KeysField)
	c.mu.RLock()
	keys := make([]string, 0, len(c.obj))
	for k := range c.obj {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys or elements, tracking the structure.
func (c *Cell) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.isArray {
		track(c.subs, LengthField)
		return len(c.arr)
	}
	track(c.subs, KeysField)
	return len(c.obj)
}

// Index returns an array element, tracking the read.
func (c *Cell) Index(i int) any {
	return c.Get(strconv.Itoa(i))
}

// SetIndex writes an array element. Writing one past the end appends.
func (c *Cell) SetIndex(i int, value any) {
	key := strconv.Itoa(i)

	c.mu.Lock()
	if i < 0 || i > len(c.arr) {
		c.mu.Unlock()
		return
	}
	grew := i == len(c.arr)
	if !grew && c.unchanged(key, c.arr[i], value) {
		c.mu.Unlock()
		return
	}
	if grew {
		c.arr = append(c.arr, value)
	} else {
		c.arr[i] = value
	}
	c.setChild(key, value)
	c.mu.Unlock()

	trigger(c.subs, key)
	if grew {
		trigger(c.subs, LengthField)
	}
}

// Append adds elements to an array cell.
func (c *Cell) Append(values ...any) {
	if len(values) == 0 {
		return
	}
	c.mu.Lock()
	start := len(c.arr)
	for i, v := range values {
		c.arr = append(c.arr, v)
		c.setChild(strconv.Itoa(start+i), v)
	}
	c.mu.Unlock()

	for i := range values {
		trigger(c.subs, strconv.Itoa(start+i))
	}
	trigger(c.subs, LengthField)
}

// unchanged reports whether writing value over the stored raw value is a
// no-op, either as the raw value or as its cached cell. Caller holds c.mu.
func (c *Cell) unchanged(key string, raw, value any) bool {
	if sameValue(raw, value) {
		return true
	}
	child := c.children[key]
	return child != nil && sameValue(child, value)
}

// setChild records value as the cached child when it is a cell. Caller
// holds c.mu.
func (c *Cell) setChild(key string, value any) {
	if child, ok := value.(*Cell); ok {
		c.children[key] = child
		return
	}
	delete(c.children, key)
}

// Snapshot returns a deep plain copy of the cell's contents, tracking every
// field read along the way.
func (c *Cell) Snapshot() any {
	if c.isArray {
		n := c.Len()
		out := make([]any, n)
		for i := 0; i < n; i++ {
			out[i] = plain(c.Index(i))
		}
		return out
	}
	keys := c.Keys()
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		out[k] = plain(c.Get(k))
	}
	return out
}

func plain(v any) any {
	if child, ok := v.(*Cell); ok {
		return child.Snapshot()
	}
	return v
}

// Decode copies the cell's contents into out (a pointer to a struct, map or
// slice) using mapstructure field matching.
func (c *Cell) Decode(out any) error {
	return mapstructure.Decode(c.Snapshot(), out)
}
