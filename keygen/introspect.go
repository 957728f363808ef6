package keygen

import (
	"reflect"
	"strings"
	"sync"
	"unsafe"
)

// Hasher is implemented by types that supply a hash of their own value that
// is stable across processes. Values whose type declares it are keyed by it
// instead of being walked field by field.
type Hasher interface {
	Hash() uint64
}

// TagName is the struct tag consulted when walking fields. A field tagged
// `keygen:"-"` is transient and never contributes to a key.
const TagName = "keygen"

var (
	typeOfType   = reflect.TypeFor[reflect.Type]()
	typeOfUint64 = reflect.TypeFor[uint64]()
	typeOfString = reflect.TypeFor[string]()
	typeOfBool   = reflect.TypeFor[bool]()
)

// traits records which identity operations a type declares.
type traits struct {
	hash    bool
	equal   bool
	display bool
	fields  [][]int
}

var traitCache sync.Map // reflect.Type -> *traits

func traitsOf(t reflect.Type) *traits {
	if cached, ok := traitCache.Load(t); ok {
		return cached.(*traits)
	}
	tr := &traits{
		hash: declares(t, "Hash", func(m reflect.Type) bool {
			return m.NumIn() == 1 && m.NumOut() == 1 && m.Out(0) == typeOfUint64
		}),
		equal: declares(t, "Equal", func(m reflect.Type) bool {
			if m.NumIn() != 2 || m.NumOut() != 1 || m.Out(0) != typeOfBool {
				return false
			}
			arg := m.In(1)
			return arg == t || (t.Kind() == reflect.Pointer && arg == t.Elem())
		}),
		display: declares(t, "String", func(m reflect.Type) bool {
			return m.NumIn() == 1 && m.NumOut() == 1 && m.Out(0) == typeOfString
		}),
	}
	if t.Kind() == reflect.Struct {
		tr.fields = walkFields(t, nil)
	}
	actual, _ := traitCache.LoadOrStore(t, tr)
	return actual.(*traits)
}

// HasHash reports whether t itself declares Hash() uint64.
func HasHash(t reflect.Type) bool {
	return traitsOf(t).hash
}

// HasEquals reports whether t itself declares Equal(t) bool, the go-cmp
// convention.
func HasEquals(t reflect.Type) bool {
	return traitsOf(t).equal
}

// HasDisplay reports whether t itself declares String() string.
func HasDisplay(t reflect.Type) bool {
	return traitsOf(t).display
}

// declares reports whether name is in t's method set with a signature that
// fits, and was not merely promoted from an embedded field. A type that
// both embeds and redeclares the method is reported as not declaring it, so
// it is walked instead of trusted.
func declares(t reflect.Type, name string, fits func(reflect.Type) bool) bool {
	if t.Kind() == reflect.Interface {
		return false
	}
	m, ok := t.MethodByName(name)
	if !ok || !fits(m.Type) {
		return false
	}
	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return true
	}
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.Anonymous {
			continue
		}
		if _, promoted := f.Type.MethodByName(name); promoted {
			return false
		}
		if f.Type.Kind() != reflect.Pointer {
			if _, promoted := reflect.PointerTo(f.Type).MethodByName(name); promoted {
				return false
			}
		}
	}
	return true
}

// walkFields lists the index paths of every keyed field of t in declaration
// order. Embedded structs are flattened in place; blank and transient
// fields are skipped.
func walkFields(t reflect.Type, prefix []int) [][]int {
	var out [][]int
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Name == "_" || f.Tag.Get(TagName) == "-" {
			continue
		}
		path := append(append(make([]int, 0, len(prefix)+1), prefix...), i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			out = append(out, walkFields(f.Type, path)...)
			continue
		}
		out = append(out, path)
	}
	return out
}

// isEnum reports whether t follows the stringer convention for enumerated
// constants: a named integer type with its own String method.
func isEnum(t reflect.Type) bool {
	if t.Name() == "" {
		return false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return HasDisplay(t)
	default:
		return false
	}
}

// typeName returns the fully qualified name of t. Unnamed types fall back to
// their literal spelling.
func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// exported strips the read-only flag a value picks up when it is reached
// through an unexported struct field, so its methods can be called and its
// contents handed to encoders. Values are only ever read.
func exported(v reflect.Value) reflect.Value {
	if !v.IsValid() || v.CanInterface() || !v.CanAddr() {
		return v
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}

// addressable returns an addressable copy of v when v is not addressable, so
// that its fields can later be passed through exported.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() || !v.CanInterface() {
		return v
	}
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}

// rebuild returns v as an interface value. Basic kinds that cannot be
// exported are reconstructed from their contents.
func rebuild(v reflect.Value) (any, bool) {
	if v.CanInterface() {
		return v.Interface(), true
	}
	c := reflect.New(v.Type()).Elem()
	switch v.Kind() {
	case reflect.Bool:
		c.SetBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		c.SetInt(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		c.SetUint(v.Uint())
	case reflect.Float32, reflect.Float64:
		c.SetFloat(v.Float())
	case reflect.Complex64, reflect.Complex128:
		c.SetComplex(v.Complex())
	case reflect.String:
		c.SetString(v.String())
	default:
		return nil, false
	}
	return c.Interface(), true
}

func qualifiedEnum(typ, member string) string {
	var b strings.Builder
	b.Grow(len(typ) + len(member) + 1)
	b.WriteString(typ)
	b.WriteByte('.')
	b.WriteString(member)
	return b.String()
}
