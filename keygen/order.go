package keygen

import (
	"cmp"
	"reflect"
	"strings"
)

// maxCompareDepth bounds how far pointer keys are followed; deeper pointers
// fall back to address order.
const maxCompareDepth = 32

// compareValues orders map keys so that maps with the same contents are
// always visited in the same order. Keys of one map share a static type;
// interface keys are ordered by dynamic type name first. Pointer keys are
// ordered by what they point to, so the order does not depend on where the
// allocator placed them.
func compareValues(a, b reflect.Value) int {
	return compareDepth(a, b, 0)
}

func compareDepth(a, b reflect.Value, depth int) int {
	if a.Kind() != b.Kind() {
		return cmp.Compare(a.Kind(), b.Kind())
	}
	switch a.Kind() {
	case reflect.Bool:
		switch {
		case a.Bool() == b.Bool():
			return 0
		case !a.Bool():
			return -1
		default:
			return 1
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return cmp.Compare(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())
	case reflect.Complex64, reflect.Complex128:
		ac, bc := a.Complex(), b.Complex()
		if c := cmp.Compare(real(ac), real(bc)); c != 0 {
			return c
		}
		return cmp.Compare(imag(ac), imag(bc))
	case reflect.String:
		return strings.Compare(a.String(), b.String())
	case reflect.Pointer:
		switch {
		case a.Pointer() == b.Pointer():
			return 0
		case a.IsNil():
			return -1
		case b.IsNil():
			return 1
		case depth < maxCompareDepth:
			if c := compareDepth(a.Elem(), b.Elem(), depth+1); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.Pointer(), b.Pointer())
	case reflect.Chan, reflect.UnsafePointer:
		return cmp.Compare(a.Pointer(), b.Pointer())
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if c := compareDepth(a.Field(i), b.Field(i), depth); c != 0 {
				return c
			}
		}
		return 0
	case reflect.Array:
		for i := 0; i < a.Len(); i++ {
			if c := compareDepth(a.Index(i), b.Index(i), depth); c != 0 {
				return c
			}
		}
		return 0
	case reflect.Interface:
		switch {
		case a.IsNil() && b.IsNil():
			return 0
		case a.IsNil():
			return -1
		case b.IsNil():
			return 1
		}
		ae, be := a.Elem(), b.Elem()
		if ae.Type() != be.Type() {
			return strings.Compare(typeName(ae.Type()), typeName(be.Type()))
		}
		return compareDepth(ae, be, depth)
	default:
		return 0
	}
}
