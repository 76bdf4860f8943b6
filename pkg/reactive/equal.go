package reactive

import (
	"math"
	"reflect"
	"unsafe"
)

// sameValue reports whether a write of b over a is a no-op. Maps, slices,
// functions and pointers compare by identity, comparable values with ==,
// and NaN equals NaN. Functions are the same when they share a closure
// record.
func sameValue(a, b any) bool {
	switch av := a.(type) {
	case *Cell:
		bv, ok := b.(*Cell)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && (av == bv || (math.IsNaN(av) && math.IsNaN(bv)))
	case float32:
		bv, ok := b.(float32)
		return ok && (av == bv || (av != av && bv != bv))
	}

	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Func:
		return funcData(a) == funcData(b)
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	if ra.Type().Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// funcData returns the closure record address of a func held in v.
func funcData(v any) unsafe.Pointer {
	type eface struct {
		typ  unsafe.Pointer
		data unsafe.Pointer
	}
	return (*eface)(unsafe.Pointer(&v)).data
}

// Identical reports whether a and b are the same value under the rules
// writes use to detect changes. Hook dependency lists compare with it.
func Identical(a, b any) bool {
	return sameValue(a, b)
}
