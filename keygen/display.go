package keygen

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

const (
	displaySeparator = ", "
	displayNull      = "null"
	displayCycle     = "..."
)

// displayEncoder renders the arguments as text: containers in brackets,
// elements separated by ", ". The separator is held back until the next
// sibling arrives, which is the same as writing it after every element and
// trimming it again when the container closes.
type displayEncoder struct {
	buf     strings.Builder
	depth   int
	pending bool
}

func newDisplayEncoder() Encoder {
	return &displayEncoder{}
}

func (e *displayEncoder) Begin(int) {
	e.separate()
	e.buf.WriteByte('[')
	e.depth++
	e.pending = false
}

func (e *displayEncoder) End() {
	e.buf.WriteByte(']')
	e.depth--
	e.pending = e.depth > 0
}

func (e *displayEncoder) separate() {
	if e.pending {
		e.buf.WriteString(displaySeparator)
	}
}

func (e *displayEncoder) Null()  { e.write(displayNull) }
func (e *displayEncoder) Cycle() { e.write(displayCycle) }

func (e *displayEncoder) Type(t reflect.Type) {
	e.write(typeName(t))
}

func (e *displayEncoder) Enum(typeName, member string) {
	e.write(qualifiedEnum(typeName, member))
}

func (e *displayEncoder) Trusts(t reflect.Type) bool {
	return HasDisplay(t)
}

func (e *displayEncoder) Scalar(v reflect.Value) error {
	if v.CanInterface() && HasDisplay(v.Type()) {
		if s, ok := v.Interface().(fmt.Stringer); ok {
			e.write(s.String())
			return nil
		}
	}
	switch v.Kind() {
	case reflect.Bool:
		e.write(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.write(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.write(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32:
		e.write(strconv.FormatFloat(v.Float(), 'g', -1, 32))
	case reflect.Float64:
		e.write(strconv.FormatFloat(v.Float(), 'g', -1, 64))
	case reflect.Complex64:
		e.write(strconv.FormatComplex(v.Complex(), 'g', -1, 64))
	case reflect.Complex128:
		e.write(strconv.FormatComplex(v.Complex(), 'g', -1, 128))
	case reflect.String:
		e.write(v.String())
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return unsupported(EncoderString, v, "no stable display form for kind "+v.Kind().String())
	default:
		if !v.CanInterface() {
			return unsupported(EncoderString, v, "value is not accessible")
		}
		e.write(fmt.Sprint(v.Interface()))
	}
	return nil
}

func (e *displayEncoder) Primitives(v reflect.Value, kind PrimitiveKind) {
	e.Begin(v.Len())
	switch s := fastSlice(v).(type) {
	case []string:
		for _, str := range s {
			e.write(str)
		}
	case []int:
		for _, n := range s {
			e.write(strconv.Itoa(n))
		}
	case []float64:
		for _, f := range s {
			e.write(strconv.FormatFloat(f, 'g', -1, 64))
		}
	default:
		for i := 0; i < v.Len(); i++ {
			// Primitive kinds never fail.
			_ = e.Scalar(v.Index(i))
		}
	}
	e.End()
}

func (e *displayEncoder) write(s string) {
	e.separate()
	e.buf.WriteString(s)
	e.pending = true
}

func (e *displayEncoder) Key() Key {
	return StringKey(e.buf.String())
}
