package keygen

import (
	"math"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// hashEncoder folds every leaf into a single int64, acc = acc*31 + c.
// Container boundaries add nothing; nesting only shows through the order in
// which contributions arrive, so [[1], 2] and [1, [2]] collide. With only
// 64 bits of key space, distinct arguments can collide too, and nothing
// here detects it.
type hashEncoder struct {
	acc int64
}

func newHashEncoder() Encoder {
	return &hashEncoder{acc: 1}
}

func (e *hashEncoder) add(c int64) { e.acc = e.acc*31 + c }

func (e *hashEncoder) Begin(int) {}
func (e *hashEncoder) End()      {}
func (e *hashEncoder) Null()     { e.add(0) }
func (e *hashEncoder) Cycle()    { e.add(0) }

func (e *hashEncoder) Type(t reflect.Type) {
	e.add(hashString(typeName(t)))
}

func (e *hashEncoder) Enum(typeName, member string) {
	e.add(hashString(typeName)*31 + hashString(member))
}

func (e *hashEncoder) Trusts(t reflect.Type) bool {
	return HasHash(t)
}

func (e *hashEncoder) Scalar(v reflect.Value) error {
	c, err := scalarHash(EncoderHash, v)
	if err != nil {
		return err
	}
	e.add(c)
	return nil
}

func (e *hashEncoder) Primitives(v reflect.Value, kind PrimitiveKind) {
	var h int64
	switch s := fastSlice(v).(type) {
	case []bool:
		h = 1
		for _, b := range s {
			h = 31*h + hashBool(b)
		}
	case []int:
		h = foldSigned(s)
	case []int64:
		h = foldSigned(s)
	case []byte:
		h = foldUnsigned(s)
	case []uint64:
		h = foldUnsigned(s)
	case []float32:
		h = 1
		for _, f := range s {
			h = 31*h + hashFloat32(f)
		}
	case []float64:
		h = 1
		for _, f := range s {
			h = 31*h + hashFloat64(f)
		}
	case []string:
		h = 1
		for _, str := range s {
			h = 31*h + hashString(str)
		}
	default:
		h = 1
		for i := 0; i < v.Len(); i++ {
			h = 31*h + primitiveHash(v.Index(i), kind)
		}
	}
	e.add(h)
}

func (e *hashEncoder) Key() Key {
	return HashKey(e.acc)
}

func foldSigned[T signed](s []T) int64 {
	h := int64(1)
	for _, x := range s {
		h = 31*h + int64(x)
	}
	return h
}

func foldUnsigned[T unsigned](s []T) int64 {
	h := int64(1)
	for _, x := range s {
		h = 31*h + int64(x)
	}
	return h
}

func primitiveHash(v reflect.Value, kind PrimitiveKind) int64 {
	switch kind {
	case PrimitiveBool:
		return hashBool(v.Bool())
	case PrimitiveInt:
		return v.Int()
	case PrimitiveUint:
		return int64(v.Uint())
	case PrimitiveFloat32:
		return hashFloat32(float32(v.Float()))
	case PrimitiveFloat64:
		return hashFloat64(v.Float())
	case PrimitiveComplex64, PrimitiveComplex128:
		return hashComplex(v.Complex())
	case PrimitiveString:
		return hashString(v.String())
	default:
		return 0
	}
}

// scalarHash is the contribution of one leaf. Every contribution is a pure
// function of the value, so keys stay the same from one process to the
// next.
func scalarHash(kind EncoderKind, v reflect.Value) (int64, error) {
	if v.CanInterface() {
		if h, ok := v.Interface().(Hasher); ok && HasHash(v.Type()) {
			return int64(h.Hash()), nil
		}
	}
	switch v.Kind() {
	case reflect.Bool:
		return hashBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int64(v.Uint()), nil
	case reflect.Float32:
		return hashFloat32(float32(v.Float())), nil
	case reflect.Float64:
		return hashFloat64(v.Float()), nil
	case reflect.Complex64, reflect.Complex128:
		return hashComplex(v.Complex()), nil
	case reflect.String:
		return hashString(v.String()), nil
	case reflect.Struct:
		return 0, unsupported(kind, v, "struct declares no Hash method and reflection is disabled")
	default:
		return 0, unsupported(kind, v, "no stable hash for kind "+v.Kind().String())
	}
}

func hashBool(b bool) int64 {
	if b {
		return 1231
	}
	return 1237
}

func hashFloat64(f float64) int64 {
	if f == 0 {
		f = 0 // -0 == +0
	}
	return int64(math.Float64bits(f))
}

func hashFloat32(f float32) int64 {
	if f == 0 {
		f = 0
	}
	return int64(math.Float32bits(f))
}

func hashComplex(c complex128) int64 {
	return 31*hashFloat64(real(c)) + hashFloat64(imag(c))
}

func hashString(s string) int64 {
	return int64(xxhash.Sum64String(s))
}
