package cache

import "time"

// Policy configures caching behavior.
type Policy struct {
	// DefaultTTL is how long results are kept. Zero disables caching.
	DefaultTTL time.Duration

	// MaxTTL caps any TTL, including overrides. Zero means no cap.
	MaxTTL time.Duration

	// SelfPopulating collapses concurrent misses on the same key into one
	// call whose result every waiter shares.
	SelfPopulating bool
}

// DefaultPolicy returns a 5 minute TTL capped at 1 hour, self-populating.
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL:     5 * time.Minute,
		MaxTTL:         time.Hour,
		SelfPopulating: true,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache reports whether this policy caches anything.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns override, or DefaultTTL when override is not
// positive, clamped to MaxTTL.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}
