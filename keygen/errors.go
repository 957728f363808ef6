package keygen

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for key generation.
var (
	// ErrUnsupportedType indicates a value the active encoder cannot key.
	ErrUnsupportedType = errors.New("keygen: unsupported argument type")

	// ErrUnknownEncoder indicates Config.Encoder names no encoder.
	ErrUnknownEncoder = errors.New("keygen: unknown encoder")

	// ErrUnknownAlgorithm indicates Config.Algorithm names no registered digest.
	ErrUnknownAlgorithm = errors.New("keygen: unknown digest algorithm")

	// ErrAlgorithmExists indicates a digest algorithm is already registered.
	ErrAlgorithmExists = errors.New("keygen: digest algorithm already registered")

	// ErrMethodNotFound indicates MethodOf could not resolve a method.
	ErrMethodNotFound = errors.New("keygen: method not found")

	// ErrNotFunc indicates FuncOf was given something other than a function.
	ErrNotFunc = errors.New("keygen: value is not a function")

	// ErrDepthExceeded indicates the traversal crossed Config.MaxDepth.
	ErrDepthExceeded = errors.New("keygen: maximum traversal depth exceeded")

	// ErrInvalidDepth indicates a negative Config.MaxDepth.
	ErrInvalidDepth = errors.New("keygen: max depth must not be negative")
)

// TypeError reports a value whose type does not meet an encoder's contract.
// It is raised at the point the value is reached during traversal.
type TypeError struct {
	Type    reflect.Type
	Encoder EncoderKind
	Reason  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("keygen: %s encoder cannot key %s: %s", e.Encoder, typeName(e.Type), e.Reason)
}

// Unwrap makes errors.Is(err, ErrUnsupportedType) hold.
func (e *TypeError) Unwrap() error {
	return ErrUnsupportedType
}

func unsupported(kind EncoderKind, v reflect.Value, reason string) error {
	return &TypeError{Type: v.Type(), Encoder: kind, Reason: reason}
}
