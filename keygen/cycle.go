package keygen

import "reflect"

// identity is what makes two reference values "the same object": the same
// dynamic type pointing at the same memory. Slices also carry their length
// so that a shorter window over the same backing array is a different value.
type identity struct {
	typ reflect.Type
	ptr uintptr
	n   int
}

func identityOf(v reflect.Value) (identity, bool) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return identity{typ: v.Type(), ptr: v.Pointer()}, true
	case reflect.Slice:
		return identity{typ: v.Type(), ptr: v.Pointer(), n: v.Len()}, true
	default:
		return identity{}, false
	}
}

// CycleRegistry tracks the reference values currently being visited by one
// traversal. Entries follow stack discipline: a value is registered right
// before its contents are visited and unregistered right after.
//
// Values are keyed by identity, not equality: two distinct maps with equal
// contents never look like a cycle.
//
// A nil *CycleRegistry is valid and records nothing; Register always
// reports true. Callers that pick it accept unbounded recursion on cyclic
// input.
type CycleRegistry struct {
	active map[identity]struct{}
}

// NewCycleRegistry returns an empty registry.
func NewCycleRegistry() *CycleRegistry {
	return &CycleRegistry{active: make(map[identity]struct{})}
}

// Register marks v as being visited. It returns false if v is already being
// visited, in which case the caller must not descend into it again. Values
// without identity (structs, arrays, scalars) are always accepted.
func (r *CycleRegistry) Register(v reflect.Value) bool {
	if r == nil {
		return true
	}
	id, ok := identityOf(v)
	if !ok {
		return true
	}
	if _, seen := r.active[id]; seen {
		return false
	}
	r.active[id] = struct{}{}
	return true
}

// Unregister removes v. Removing an absent value is a no-op.
func (r *CycleRegistry) Unregister(v reflect.Value) {
	if r == nil {
		return
	}
	if id, ok := identityOf(v); ok {
		delete(r.active, id)
	}
}

// Len returns the number of values currently registered.
func (r *CycleRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.active)
}
