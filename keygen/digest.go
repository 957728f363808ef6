package keygen

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"hash"
	"io"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/jonwraymond/callcache/observe"
)

// DefaultAlgorithm is the digest used when Config.Algorithm is empty.
const DefaultAlgorithm = "SHA-1"

// HashFactory constructs a fresh digest.
type HashFactory func() hash.Hash

var algorithms = struct {
	mu        sync.RWMutex
	factories map[string]HashFactory
}{
	factories: map[string]HashFactory{
		"MD5":        md5.New,
		"SHA1":       sha1.New,
		"SHA224":     sha256.New224,
		"SHA256":     sha256.New,
		"SHA384":     sha512.New384,
		"SHA512":     sha512.New,
		"SHA3256":    sha3.New256,
		"SHA3512":    sha3.New512,
		"BLAKE2B256": func() hash.Hash { h, _ := blake2b.New256(nil); return h },
		"BLAKE2B512": func() hash.Hash { h, _ := blake2b.New512(nil); return h },
	},
}

// normalizeAlgorithm folds "sha-256", "SHA256" and "Sha-256" together.
func normalizeAlgorithm(name string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", ""))
}

// RegisterAlgorithm makes a digest available to Config.Algorithm under name.
func RegisterAlgorithm(name string, factory HashFactory) error {
	key := normalizeAlgorithm(name)
	if key == "" || factory == nil {
		return fmt.Errorf("%w: invalid registration %q", ErrUnknownAlgorithm, name)
	}

	algorithms.mu.Lock()
	defer algorithms.mu.Unlock()

	if _, exists := algorithms.factories[key]; exists {
		return fmt.Errorf("%w: %q", ErrAlgorithmExists, name)
	}
	algorithms.factories[key] = factory
	return nil
}

// Algorithms returns the normalized names of all registered digests.
func Algorithms() []string {
	algorithms.mu.RLock()
	defer algorithms.mu.RUnlock()

	names := make([]string, 0, len(algorithms.factories))
	for name := range algorithms.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupAlgorithm(name string) (HashFactory, error) {
	algorithms.mu.RLock()
	factory, ok := algorithms.factories[normalizeAlgorithm(name)]
	algorithms.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return factory, nil
}

// digestSource hands out a private digest per call. It keeps one pristine
// prototype and clones it; if the digest cannot be cloned it says so once
// and constructs a fresh one on every later call instead.
type digestSource struct {
	name    string
	factory HashFactory
	proto   hash.Hash
	noClone atomic.Bool
	logger  observe.Logger
}

func newDigestSource(name string, logger observe.Logger) (*digestSource, error) {
	factory, err := lookupAlgorithm(name)
	if err != nil {
		return nil, err
	}
	proto := factory()
	if proto == nil {
		return nil, fmt.Errorf("%w: %q constructed a nil digest", ErrUnknownAlgorithm, name)
	}
	return &digestSource{
		name:    name,
		factory: factory,
		proto:   proto,
		logger:  logger,
	}, nil
}

func (s *digestSource) get() hash.Hash {
	if !s.noClone.Load() {
		if c, ok := s.proto.(hash.Cloner); ok {
			if h, err := c.Clone(); err == nil {
				return h
			}
		}
		if s.noClone.CompareAndSwap(false, true) {
			s.logger.Warn(context.Background(), "digest cannot be cloned, constructing per call",
				observe.Field{Key: "algorithm", Value: s.name})
		}
	}
	return s.factory()
}

// digestEncoder streams fixed-width binary encodings of every leaf into a
// digest. Containers add nothing; like the hash encoder, structure shows only
// through ordering.
type digestEncoder struct {
	h   hash.Hash
	buf [8]byte
}

func newDigestEncoder(src *digestSource) Encoder {
	return &digestEncoder{h: src.get()}
}

func (e *digestEncoder) Begin(int) {}
func (e *digestEncoder) End()      {}
func (e *digestEncoder) Null()     { e.writeByte(0) }
func (e *digestEncoder) Cycle()    { e.writeByte(0) }

func (e *digestEncoder) Type(t reflect.Type) {
	e.writeString(typeName(t))
}

func (e *digestEncoder) Enum(typeName, member string) {
	e.writeString(typeName)
	e.writeString(member)
}

func (e *digestEncoder) Trusts(t reflect.Type) bool {
	return HasHash(t)
}

func (e *digestEncoder) Scalar(v reflect.Value) error {
	if v.CanInterface() {
		if h, ok := v.Interface().(Hasher); ok && HasHash(v.Type()) {
			e.writeUint64(h.Hash())
			return nil
		}
	}
	switch v.Kind() {
	case reflect.Bool:
		e.writeBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.writeUint64(uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.writeUint64(v.Uint())
	case reflect.Float32:
		e.writeFloat32(float32(v.Float()))
	case reflect.Float64:
		e.writeFloat64(v.Float())
	case reflect.Complex64:
		c := v.Complex()
		e.writeFloat32(float32(real(c)))
		e.writeFloat32(float32(imag(c)))
	case reflect.Complex128:
		c := v.Complex()
		e.writeFloat64(real(c))
		e.writeFloat64(imag(c))
	case reflect.String:
		e.writeString(v.String())
	case reflect.Struct:
		return unsupported(EncoderDigest, v, "struct declares no Hash method and reflection is disabled")
	default:
		return unsupported(EncoderDigest, v, "no stable encoding for kind "+v.Kind().String())
	}
	return nil
}

func (e *digestEncoder) Primitives(v reflect.Value, kind PrimitiveKind) {
	switch s := fastSlice(v).(type) {
	case []byte:
		// Bytes widen to eight like every other unsigned element.
		for _, c := range s {
			e.writeUint64(uint64(c))
		}
	case []int:
		for _, n := range s {
			e.writeUint64(uint64(n))
		}
	case []int64:
		for _, n := range s {
			e.writeUint64(uint64(n))
		}
	case []float64:
		for _, f := range s {
			e.writeFloat64(f)
		}
	case []string:
		for _, str := range s {
			e.writeString(str)
		}
	default:
		for i := 0; i < v.Len(); i++ {
			// Primitive kinds never fail.
			_ = e.Scalar(v.Index(i))
		}
	}
}

func (e *digestEncoder) Key() Key {
	return DigestKey(base64.RawURLEncoding.EncodeToString(e.h.Sum(nil)))
}

func (e *digestEncoder) writeByte(b byte) {
	e.buf[0] = b
	e.h.Write(e.buf[:1])
}

func (e *digestEncoder) writeBool(b bool) {
	if b {
		e.writeByte(1)
		return
	}
	e.writeByte(0)
}

func (e *digestEncoder) writeUint64(u uint64) {
	binary.BigEndian.PutUint64(e.buf[:], u)
	e.h.Write(e.buf[:])
}

func (e *digestEncoder) writeFloat32(f float32) {
	if f == 0 {
		f = 0
	}
	binary.BigEndian.PutUint32(e.buf[:4], math.Float32bits(f))
	e.h.Write(e.buf[:4])
}

func (e *digestEncoder) writeFloat64(f float64) {
	if f == 0 {
		f = 0
	}
	e.writeUint64(math.Float64bits(f))
}

// writeString writes the UTF-8 bytes prefixed by their length, so that
// ("ab", "c") and ("a", "bc") digest differently.
func (e *digestEncoder) writeString(s string) {
	binary.BigEndian.PutUint32(e.buf[:4], uint32(len(s)))
	e.h.Write(e.buf[:4])
	io.WriteString(e.h, s)
}
