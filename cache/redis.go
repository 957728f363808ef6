package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces keys written by RedisCache.
const DefaultRedisPrefix = "callcache:"

// RedisConfig holds connection settings for NewRedisCache.
type RedisConfig struct {
	Addr      string // host:port
	Password  string
	DB        int
	KeyPrefix string // Default: DefaultRedisPrefix

	// OpTimeout bounds every store round trip. 0 leaves the caller's
	// deadline alone.
	OpTimeout time.Duration

	// Breaker, when set, skips the server while it keeps failing.
	Breaker *Breaker
}

// RedisOption configures a RedisCache built from an existing client.
type RedisOption func(*RedisCache)

// WithOpTimeout bounds every store round trip.
func WithOpTimeout(d time.Duration) RedisOption {
	return func(c *RedisCache) { c.timeout = d }
}

// WithBreaker guards the server with b.
func WithBreaker(b *Breaker) RedisOption {
	return func(c *RedisCache) { c.breaker = b }
}

// RedisCache is a Cache shared between processes through Redis. Entry
// expiry is delegated to Redis.
type RedisCache struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
	breaker *Breaker
}

// NewRedisCache connects lazily to the server described by cfg.
func NewRedisCache(cfg RedisConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisCacheFromClient(client, cfg.KeyPrefix,
		WithOpTimeout(cfg.OpTimeout), WithBreaker(cfg.Breaker))
}

// NewRedisCacheFromClient wraps an existing client. Close closes client.
func NewRedisCacheFromClient(client redis.UniversalClient, prefix string, opts ...RedisOption) *RedisCache {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	c := &RedisCache{client: client, prefix: prefix}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

func (c *RedisCache) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// failed decides whether err counts against the breaker. A missing key and
// the caller giving up say nothing about the server.
func failed(err error) bool {
	return err != nil && !errors.Is(err, redis.Nil) && !errors.Is(err, context.Canceled)
}

// Get returns the value stored under key. Any Redis error, including
// redis.Nil, reads as a miss, and so does an open breaker.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.breaker.allow() {
		return nil, false
	}
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	c.breaker.record(failed(err))
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores value for ttl. A ttl <= 0 stores nothing.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}
	if !c.breaker.allow() {
		return ErrCircuitOpen
	}
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	err := c.client.Set(ctx, c.key(key), value, ttl).Err()
	c.breaker.record(failed(err))
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if !c.breaker.allow() {
		return ErrCircuitOpen
	}
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	err := c.client.Del(ctx, c.key(key)).Err()
	c.breaker.record(failed(err))
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)
