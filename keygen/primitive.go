package keygen

import "reflect"

// PrimitiveKind classifies the element type of a slice or array whose
// elements are visited without per-element dispatch.
type PrimitiveKind int

const (
	PrimitiveBool PrimitiveKind = iota + 1
	PrimitiveInt
	PrimitiveUint
	PrimitiveFloat32
	PrimitiveFloat64
	PrimitiveComplex64
	PrimitiveComplex128
	PrimitiveString
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveBool:
		return "bool"
	case PrimitiveInt:
		return "int"
	case PrimitiveUint:
		return "uint"
	case PrimitiveFloat32:
		return "float32"
	case PrimitiveFloat64:
		return "float64"
	case PrimitiveComplex64:
		return "complex64"
	case PrimitiveComplex128:
		return "complex128"
	case PrimitiveString:
		return "string"
	default:
		return "unknown"
	}
}

// primitiveKindOf reports the primitive kind of elem. Named element types
// that look like enums are excluded so they keep their member names.
func primitiveKindOf(elem reflect.Type) (PrimitiveKind, bool) {
	if isEnum(elem) || HasHash(elem) {
		return 0, false
	}
	switch elem.Kind() {
	case reflect.Bool:
		return PrimitiveBool, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return PrimitiveInt, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return PrimitiveUint, true
	case reflect.Float32:
		return PrimitiveFloat32, true
	case reflect.Float64:
		return PrimitiveFloat64, true
	case reflect.Complex64:
		return PrimitiveComplex64, true
	case reflect.Complex128:
		return PrimitiveComplex128, true
	case reflect.String:
		if HasDisplay(elem) {
			return 0, false
		}
		return PrimitiveString, true
	default:
		return 0, false
	}
}

// fastSlice returns the typed slice behind v when it is one of the concrete
// types with a dedicated loop, or nil.
func fastSlice(v reflect.Value) any {
	if v.Kind() != reflect.Slice || !v.CanInterface() {
		return nil
	}
	switch s := v.Interface().(type) {
	case []bool, []int, []int64, []byte, []uint64, []float32, []float64, []string:
		return s
	default:
		return nil
	}
}

type signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

type unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}
