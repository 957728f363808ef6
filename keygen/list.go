package keygen

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// List is the structural key: an immutable ordered sequence whose elements
// are the raw argument values, nested Lists for containers, reflect.Type
// values, EnumMember values and nil.
//
// Two Lists are Equal when they have the same length and their elements are
// pairwise equal: nested Lists recursively, types that declare Equal(T) bool
// through that method, everything else with ==. Hash agrees with Equal.
type List struct {
	elems []any
}

// NewList returns a List holding a copy of elems. Nested []any values are
// not converted; build nested keys with NewList as well.
func NewList(elems ...any) List {
	return List{elems: append([]any(nil), elems...)}
}

func (List) key() {}

// Len returns the number of elements.
func (l List) Len() int { return len(l.elems) }

// At returns element i.
func (l List) At(i int) any { return l.elems[i] }

// Values returns a copy of the elements.
func (l List) Values() []any { return append([]any(nil), l.elems...) }

// Equal reports whether l and o are structurally equal.
func (l List) Equal(o List) bool {
	if len(l.elems) != len(o.elems) {
		return false
	}
	for i := range l.elems {
		if !elemEqual(l.elems[i], o.elems[i]) {
			return false
		}
	}
	return true
}

// Hash returns a hash consistent with Equal. It is only meaningful within
// one process: pointer and channel elements hash by address.
func (l List) Hash() uint64 {
	h := uint64(1)
	for _, e := range l.elems {
		h = 31*h + elemHash(e)
	}
	return h
}

// String renders the list with Go-syntax scalars, so that 1 and "1" stay
// distinct when the rendering is used as a store key.
func (l List) String() string {
	var b strings.Builder
	l.render(&b)
	return b.String()
}

func (l List) render(b *strings.Builder) {
	b.WriteByte('[')
	for i, e := range l.elems {
		if i > 0 {
			b.WriteString(", ")
		}
		switch x := e.(type) {
		case nil:
			b.WriteString(displayNull)
		case List:
			x.render(b)
		case reflect.Type:
			b.WriteString(typeName(x))
		case EnumMember:
			b.WriteString(x.String())
		case string:
			b.WriteString(strconv.Quote(x))
		case int:
			b.WriteString(strconv.Itoa(x))
		case bool:
			b.WriteString(strconv.FormatBool(x))
		default:
			fmt.Fprintf(b, "%T(%#v)", x, x)
		}
	}
	b.WriteByte(']')
}

func elemEqual(a, b any) bool {
	if al, ok := a.(List); ok {
		bl, ok := b.(List)
		return ok && al.Equal(bl)
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Type() != bv.Type() {
		return false
	}
	if HasEquals(av.Type()) {
		eq := av.MethodByName("Equal")
		if arg := eq.Type().In(0); bv.Type() != arg {
			bv = bv.Elem()
		}
		return eq.Call([]reflect.Value{bv})[0].Bool()
	}
	if !av.Comparable() || !bv.Comparable() {
		return false
	}
	return a == b
}

func elemHash(e any) uint64 {
	switch x := e.(type) {
	case nil:
		return 0
	case List:
		return x.Hash()
	case reflect.Type:
		return xxhash.Sum64String(typeName(x))
	case Hasher:
		if HasHash(reflect.TypeOf(e)) {
			return x.Hash()
		}
	}
	v := reflect.ValueOf(e)
	if HasEquals(v.Type()) {
		// Equal may identify values that == does not; the type is the
		// only thing both are sure to share.
		return xxhash.Sum64String(typeName(v.Type()))
	}
	return comparableHash(v)
}

// comparableHash hashes v consistently with ==.
func comparableHash(v reflect.Value) uint64 {
	switch v.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return uint64(v.Pointer())
	case reflect.Interface:
		if v.IsNil() {
			return 0
		}
		return comparableHash(v.Elem())
	case reflect.Struct:
		h := uint64(1)
		for i := 0; i < v.NumField(); i++ {
			h = 31*h + comparableHash(v.Field(i))
		}
		return h
	case reflect.Array:
		h := uint64(1)
		for i := 0; i < v.Len(); i++ {
			h = 31*h + comparableHash(v.Index(i))
		}
		return h
	default:
		c, err := scalarHash(EncoderList, v)
		if err != nil {
			return 0
		}
		return uint64(c)
	}
}

// listBuilder is an open sequence. It is appended to its parent as a
// placeholder and swapped for the finished List when it closes.
type listBuilder struct {
	elems []any
}

// listEncoder echoes the argument graph as nested Lists.
type listEncoder struct {
	stack []*listBuilder
	root  List
}

func newListEncoder() Encoder {
	return &listEncoder{}
}

func (e *listEncoder) Begin(size int) {
	if size < 0 {
		size = 0
	}
	b := &listBuilder{elems: make([]any, 0, size)}
	if n := len(e.stack); n > 0 {
		e.stack[n-1].elems = append(e.stack[n-1].elems, b)
	}
	e.stack = append(e.stack, b)
}

func (e *listEncoder) End() {
	n := len(e.stack)
	done := List{elems: e.stack[n-1].elems}
	e.stack = e.stack[:n-1]
	if n == 1 {
		e.root = done
		return
	}
	parent := e.stack[n-2]
	parent.elems[len(parent.elems)-1] = done
}

func (e *listEncoder) add(x any) {
	if n := len(e.stack); n > 0 {
		e.stack[n-1].elems = append(e.stack[n-1].elems, x)
		return
	}
	e.root = List{elems: []any{x}}
}

func (e *listEncoder) Null()               { e.add(nil) }
func (e *listEncoder) Cycle()              { e.add(nil) }
func (e *listEncoder) Type(t reflect.Type) { e.add(t) }

func (e *listEncoder) Enum(typeName, member string) {
	e.add(EnumMember{Type: typeName, Name: member})
}

// Trusts keeps pointers out of the list unless Equal gives them value
// semantics; a bare pointer would compare by address.
func (e *listEncoder) Trusts(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer && !HasEquals(t) {
		return false
	}
	return HasHash(t) && (HasEquals(t) || t.Comparable())
}

func (e *listEncoder) Scalar(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Func:
		return unsupported(EncoderList, v, "functions are not comparable")
	case reflect.UnsafePointer:
		return unsupported(EncoderList, v, "unsafe pointers cannot be keyed")
	}
	if !HasEquals(v.Type()) && !v.Comparable() {
		return unsupported(EncoderList, v, "value is neither comparable nor declares Equal")
	}
	x, ok := rebuild(v)
	if !ok {
		return unsupported(EncoderList, v, "value is not accessible")
	}
	e.add(x)
	return nil
}

func (e *listEncoder) Primitives(v reflect.Value, kind PrimitiveKind) {
	e.Begin(v.Len())
	top := e.stack[len(e.stack)-1]
	switch s := fastSlice(v).(type) {
	case []int:
		for _, n := range s {
			top.elems = append(top.elems, n)
		}
	case []string:
		for _, str := range s {
			top.elems = append(top.elems, str)
		}
	case []byte:
		for _, c := range s {
			top.elems = append(top.elems, c)
		}
	default:
		for i := 0; i < v.Len(); i++ {
			x, _ := rebuild(v.Index(i))
			top.elems = append(top.elems, x)
		}
	}
	e.End()
}

func (e *listEncoder) Key() Key {
	return e.root
}
