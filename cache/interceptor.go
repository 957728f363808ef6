package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/callcache/keygen"
	"github.com/jonwraymond/callcache/observe"
)

// Func computes the serialized result of one invocation.
type Func func(ctx context.Context) ([]byte, error)

// InterceptorOption configures an Interceptor.
type InterceptorOption func(*Interceptor)

// WithInstruments sets the tracer, metrics and logger. Nil members stay
// no-ops.
func WithInstruments(inst observe.Instruments) InterceptorOption {
	return func(ic *Interceptor) {
		ic.inst = inst.Complete()
	}
}

// WithTTL overrides the policy's DefaultTTL for this interceptor. The
// policy's MaxTTL still applies.
func WithTTL(ttl time.Duration) InterceptorOption {
	return func(ic *Interceptor) {
		ic.ttl = ttl
	}
}

// Interceptor memoizes invocations in a Cache.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: errors from fn are returned unchanged and never stored; key
// derivation and store failures degrade to an uncached call.
// - Context: a self-populating call runs fn once per key without the
// callers' cancellation; a caller whose ctx ends returns ctx.Err().
type Interceptor struct {
	cache  Cache
	keyer  Keyer
	policy Policy
	ttl    time.Duration
	inst   observe.Instruments
	group  singleflight.Group
}

// NewInterceptor builds an Interceptor over c and k.
func NewInterceptor(c Cache, k Keyer, policy Policy, opts ...InterceptorOption) (*Interceptor, error) {
	if c == nil {
		return nil, ErrNilCache
	}
	if k == nil {
		return nil, ErrNilKeyer
	}
	ic := &Interceptor{
		cache:  c,
		keyer:  k,
		policy: policy,
		inst:   observe.NopInstruments(),
	}
	for _, opt := range opts {
		opt(ic)
	}
	return ic, nil
}

func metaOf(m keygen.Method, k Keyer) observe.MethodMeta {
	meta := observe.MethodMeta{Name: m.Name}
	if m.Receiver != nil {
		meta.Type = m.Receiver.Name()
		if meta.Type == "" {
			meta.Type = m.Receiver.String()
		}
	}
	if dk, ok := k.(*DefaultKeyer); ok {
		meta.Encoder = string(dk.Generator().Config().Encoder)
	}
	return meta
}

// Invoke returns the stored result for calling m with args, or runs fn and
// stores what it returns.
func (ic *Interceptor) Invoke(ctx context.Context, m keygen.Method, args []any, fn Func) (result []byte, err error) {
	meta := metaOf(m, ic.keyer)
	ctx, span := ic.inst.Tracer.StartSpan(ctx, meta)
	hit := false
	defer func() { ic.inst.Tracer.EndSpan(span, hit, err) }()

	if !ic.policy.ShouldCache() {
		return ic.call(ctx, meta, fn)
	}

	start := time.Now()
	key, kerr := ic.keyer.Key(m, args)
	ic.inst.Metrics.RecordKeyGeneration(ctx, meta, time.Since(start), kerr)
	if kerr != nil {
		ic.inst.Logger.WithMethod(meta).Warn(ctx, "cache: key derivation failed, calling uncached",
			observe.Field{Key: "error", Value: kerr.Error()})
		return ic.call(ctx, meta, fn)
	}

	if v, ok := ic.cache.Get(ctx, key); ok {
		hit = true
		ic.inst.Metrics.RecordLookup(ctx, meta, true)
		return v, nil
	}
	ic.inst.Metrics.RecordLookup(ctx, meta, false)

	if !ic.policy.SelfPopulating {
		return ic.populate(ctx, meta, key, fn)
	}

	// The shared call outlives any one caller: it keeps ctx's values but not
	// its cancellation, and each caller stops waiting on its own ctx.
	ch := ic.group.DoChan(key, func() (any, error) {
		shared := context.WithoutCancel(ctx)
		// A call that finished while this one waited for the group may
		// already have stored the result.
		if v, ok := ic.cache.Get(shared, key); ok {
			return v, nil
		}
		return ic.populate(shared, meta, key, fn)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (ic *Interceptor) populate(ctx context.Context, meta observe.MethodMeta, key string, fn Func) ([]byte, error) {
	v, err := ic.call(ctx, meta, fn)
	if err != nil {
		return v, err
	}
	if serr := ic.cache.Set(ctx, key, v, ic.policy.EffectiveTTL(ic.ttl)); serr != nil {
		ic.inst.Metrics.RecordError(ctx, meta, "store")
		ic.inst.Logger.WithMethod(meta).Warn(ctx, "cache: store failed",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: serr.Error()})
	}
	return v, nil
}

func (ic *Interceptor) call(ctx context.Context, meta observe.MethodMeta, fn Func) ([]byte, error) {
	v, err := fn(ctx)
	if err != nil {
		ic.inst.Metrics.RecordError(ctx, meta, "call")
	}
	return v, err
}

// Invalidate removes the stored result for calling m with args.
func (ic *Interceptor) Invalidate(ctx context.Context, m keygen.Method, args []any) error {
	key, err := ic.keyer.Key(m, args)
	if err != nil {
		return err
	}
	return ic.cache.Delete(ctx, key)
}

// Call is Invoke for typed results, stored as JSON. T must round-trip
// through encoding/json.
func Call[T any](ctx context.Context, ic *Interceptor, m keygen.Method, args []any, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	data, err := ic.Invoke(ctx, m, args, func(ctx context.Context) ([]byte, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, fmt.Errorf("cache: decode result of %s: %w", m, err)
	}
	return out, nil
}
