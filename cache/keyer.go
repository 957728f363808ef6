package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/jonwraymond/callcache/keygen"
)

// DefaultKeyAlgorithm is the digest DefaultKeyer uses when given no
// generator.
const DefaultKeyAlgorithm = "SHA-256"

// Keyer maps a method invocation to a storable cache key.
//
// Contract:
// - Determinism: equal invocations must produce the same key, regardless
// of map iteration order.
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: a key that fails ValidateKey must never be returned.
type Keyer interface {
	// Key derives the key for calling m with args.
	Key(m keygen.Method, args []any) (string, error)
}

// DefaultKeyer renders keygen keys as "cache:<method>:<key>".
type DefaultKeyer struct {
	gen *keygen.Generator
}

// NewDefaultKeyer wraps gen. A nil gen selects a SHA-256 digest generator,
// whose keys are stable across processes and safe to share through Redis.
func NewDefaultKeyer(gen *keygen.Generator) *DefaultKeyer {
	if gen == nil {
		var err error
		gen, err = keygen.NewDigestGenerator(DefaultKeyAlgorithm)
		if err != nil {
			panic(err) // registered at init
		}
	}
	return &DefaultKeyer{gen: gen}
}

// Generator returns the wrapped generator.
func (k *DefaultKeyer) Generator() *keygen.Generator {
	return k.gen
}

// Key derives the key for calling m with args. Renderings that would not
// pass ValidateKey, such as long or multi-line string keys, are collapsed to
// "cache:<method>:#<hex>" where hex is a SHA-256 prefix of the rendering.
func (k *DefaultKeyer) Key(m keygen.Method, args []any) (string, error) {
	key, err := k.gen.GenerateKey(m, args...)
	if err != nil {
		return "", fmt.Errorf("cache: derive key for %s: %w", m, err)
	}

	label := m.String()
	out := "cache:" + label + ":" + key.String()
	if ValidateKey(out) == nil {
		return out, nil
	}

	sum := sha256.Sum256([]byte(key.String()))
	out = "cache:" + label + ":#" + hex.EncodeToString(sum[:16])
	if err := ValidateKey(out); err != nil {
		return "", fmt.Errorf("cache: key for %s: %w", m, err)
	}
	return out, nil
}

var _ Keyer = (*DefaultKeyer)(nil)
