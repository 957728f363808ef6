package keygen

import (
	"fmt"
	"reflect"

	"github.com/jonwraymond/callcache/observe"
)

// Config selects the encoder and traversal behavior of a Generator. It is
// fixed for the Generator's lifetime; build a new Generator to change it.
type Config struct {
	// Encoder is one of EncoderHash, EncoderString, EncoderList,
	// EncoderDigest.
	Encoder EncoderKind

	// IncludeMethod and IncludeParameterTypes form the signature policy.
	IncludeMethod         bool
	IncludeParameterTypes bool

	// CheckCycles enables the cycle registry. Without it a cyclic argument
	// graph recurses until the stack is exhausted.
	CheckCycles bool

	// Reflect walks structs field by field when their type does not declare
	// what the encoder needs. Without it such structs are handed to the
	// encoder as they are, which may reject them.
	Reflect bool

	// Algorithm names the digest for EncoderDigest. Default: SHA-1.
	Algorithm string

	// MaxDepth bounds the nesting depth of a traversal, 0 means unbounded.
	// Exceeding it fails the call with ErrDepthExceeded.
	MaxDepth int
}

// DefaultConfig returns the hash encoder with the full signature policy,
// cycle checking and reflection enabled.
func DefaultConfig() Config {
	return Config{
		Encoder:               EncoderHash,
		IncludeMethod:         true,
		IncludeParameterTypes: true,
		CheckCycles:           true,
		Reflect:               true,
		Algorithm:             DefaultAlgorithm,
	}
}

// Validate checks the configuration without building anything.
func (c Config) Validate() error {
	switch c.Encoder {
	case EncoderHash, EncoderString, EncoderList:
	case EncoderDigest:
		alg := c.Algorithm
		if alg == "" {
			alg = DefaultAlgorithm
		}
		if _, err := lookupAlgorithm(alg); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEncoder, c.Encoder)
	}
	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}
	return nil
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for diagnostics. Default: no-op.
func WithLogger(l observe.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// Generator derives Keys from method invocations.
//
// Contract:
//   - Concurrency: safe for concurrent use; each call builds its own
//     registry and encoder and nothing is locked.
//   - Errors: GenerateKey returns a Key or an error, never a partial Key.
type Generator struct {
	cfg    Config
	sig    Signature
	logger observe.Logger
	digest *digestSource
	newEnc func() Encoder
}

// New builds a Generator. An unknown encoder or digest algorithm fails here
// rather than on the first call.
func New(cfg Config, opts ...Option) (*Generator, error) {
	if cfg.Encoder == EncoderDigest && cfg.Algorithm == "" {
		cfg.Algorithm = DefaultAlgorithm
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{
		cfg: cfg,
		sig: Signature{
			IncludeMethod:         cfg.IncludeMethod,
			IncludeParameterTypes: cfg.IncludeParameterTypes,
		},
		logger: observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}

	switch cfg.Encoder {
	case EncoderHash:
		g.newEnc = newHashEncoder
	case EncoderString:
		g.newEnc = newDisplayEncoder
	case EncoderList:
		g.newEnc = newListEncoder
	case EncoderDigest:
		src, err := newDigestSource(cfg.Algorithm, g.logger)
		if err != nil {
			return nil, err
		}
		g.digest = src
		g.newEnc = func() Encoder { return newDigestEncoder(src) }
	}
	return g, nil
}

// NewHashGenerator returns a Generator using the hash encoder and the default
// policy.
func NewHashGenerator() *Generator {
	return mustNew(DefaultConfig())
}

// NewStringGenerator returns a Generator using the string encoder and the
// default policy.
func NewStringGenerator() *Generator {
	cfg := DefaultConfig()
	cfg.Encoder = EncoderString
	return mustNew(cfg)
}

// NewListGenerator returns a Generator using the list encoder and the default
// policy.
func NewListGenerator() *Generator {
	cfg := DefaultConfig()
	cfg.Encoder = EncoderList
	return mustNew(cfg)
}

// NewDigestGenerator returns a Generator using the digest encoder with the
// named algorithm ("" for SHA-1).
func NewDigestGenerator(algorithm string) (*Generator, error) {
	cfg := DefaultConfig()
	cfg.Encoder = EncoderDigest
	cfg.Algorithm = algorithm
	return New(cfg)
}

func mustNew(cfg Config) *Generator {
	g, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return g
}

// Config returns the configuration the Generator was built with.
func (g *Generator) Config() Config {
	return g.cfg
}

// GenerateKey derives the key for calling m with args. Equal arguments (and,
// when the signature is included, the same method) always produce equal
// keys for a given Generator.
func (g *Generator) GenerateKey(m Method, args ...any) (Key, error) {
	enc := g.newEnc()
	w := walker{
		enc:      enc,
		reflect:  g.cfg.Reflect,
		maxDepth: g.cfg.MaxDepth,
	}
	if g.cfg.CheckCycles {
		w.reg = NewCycleRegistry()
	}
	if err := w.visit(reflect.ValueOf(g.sig.input(m, args)), 0); err != nil {
		return nil, err
	}
	return enc.Key(), nil
}
