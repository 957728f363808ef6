package keygen

import (
	"reflect"
	"strconv"
)

// Encoder turns one traversal into a Key. The traversal calls Begin and End
// around every container, and exactly one of Null, Cycle, Type, Enum,
// Scalar or Primitives for every other value it reaches.
//
// Contract:
//   - Ownership: an Encoder belongs to a single GenerateKey call and is
//     discarded afterwards; it is never shared between goroutines.
//   - Errors: Scalar returns a *TypeError for values it cannot key; the
//     traversal aborts and no Key is produced.
type Encoder interface {
	// Begin opens a container of size elements (-1 when unknown).
	Begin(size int)

	// End closes the innermost open container.
	End()

	// Null records a nil value.
	Null()

	// Cycle records a back reference to a value that is still being visited.
	Cycle()

	// Type records a reflect.Type argument.
	Type(t reflect.Type)

	// Enum records an enumerated constant by type name and member name.
	Enum(typeName, member string)

	// Scalar records a leaf value.
	Scalar(v reflect.Value) error

	// Primitives records a slice or array of primitive elements.
	Primitives(v reflect.Value, kind PrimitiveKind)

	// Trusts reports whether values of type t can be handed to Scalar
	// as they are, rather than being walked field by field.
	Trusts(t reflect.Type) bool

	// Key returns the finished key.
	Key() Key
}

// EncoderKind names one of the built-in encoders.
type EncoderKind string

const (
	EncoderHash   EncoderKind = "hash"
	EncoderString EncoderKind = "string"
	EncoderList   EncoderKind = "list"
	EncoderDigest EncoderKind = "digest"
)

// Key is the result of GenerateKey. It is one of HashKey, StringKey, List or
// DigestKey. String renders the key for stores that index by text.
type Key interface {
	String() string
	key()
}

// HashKey is produced by the hash encoder.
type HashKey int64

func (k HashKey) String() string { return strconv.FormatInt(int64(k), 10) }
func (HashKey) key()             {}

// StringKey is produced by the string encoder.
type StringKey string

func (k StringKey) String() string { return string(k) }
func (StringKey) key()             {}

// DigestKey is produced by the digest encoder: the raw digest encoded as
// unpadded base64url.
type DigestKey string

func (k DigestKey) String() string { return string(k) }
func (DigestKey) key()             {}

// EnumMember is how the list encoder records an enumerated constant.
type EnumMember struct {
	Type string
	Name string
}

func (e EnumMember) String() string { return qualifiedEnum(e.Type, e.Name) }

// Entry is a single key/value pair. Maps are visited as a sequence of
// entries; an Entry passed directly is visited the same way.
type Entry struct {
	Key   any
	Value any
}
