package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestBreaker(cfg BreakerConfig) (*Breaker, *fakeClock) {
	clock := newFakeClock()
	b := NewBreaker(cfg)
	b.now = clock.Now
	return b, clock
}

func TestNewBreaker_Defaults(t *testing.T) {
	b := NewBreaker(BreakerConfig{})

	if b.State() != BreakerClosed {
		t.Errorf("initial state = %v, want closed", b.State())
	}
	if b.config.MaxFailures != 5 {
		t.Errorf("MaxFailures = %d, want 5", b.config.MaxFailures)
	}
	if b.config.ResetTimeout != 30*time.Second {
		t.Errorf("ResetTimeout = %v, want 30s", b.config.ResetTimeout)
	}
	if b.config.HalfOpenMaxRequests != 1 {
		t.Errorf("HalfOpenMaxRequests = %d, want 1", b.config.HalfOpenMaxRequests)
	}
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{MaxFailures: 3, ResetTimeout: time.Second})

	for i := range 2 {
		if !b.allow() {
			t.Fatalf("allow() = false after %d failures", i)
		}
		b.record(true)
	}
	// A success in between starts the count again.
	b.allow()
	b.record(false)
	for range 2 {
		b.allow()
		b.record(true)
	}
	if b.State() != BreakerClosed {
		t.Fatalf("state = %v, want closed", b.State())
	}

	b.allow()
	b.record(true)
	if b.State() != BreakerOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
	if b.allow() {
		t.Error("allow() = true while open")
	}
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	var transitions []string
	b, clock := newTestBreaker(BreakerConfig{
		MaxFailures:  1,
		ResetTimeout: time.Minute,
		OnStateChange: func(from, to BreakerState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	b.allow()
	b.record(true)
	clock.Advance(time.Minute)

	if b.State() != BreakerHalfOpen {
		t.Fatalf("state = %v, want half-open", b.State())
	}
	if !b.allow() {
		t.Fatal("first probe rejected")
	}
	if b.allow() {
		t.Error("second probe allowed")
	}

	b.record(false)
	if b.State() != BreakerClosed {
		t.Errorf("state after successful probe = %v, want closed", b.State())
	}

	want := []string{"closed->open", "open->half-open", "half-open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	b, clock := newTestBreaker(BreakerConfig{MaxFailures: 1, ResetTimeout: time.Minute})

	b.allow()
	b.record(true)
	clock.Advance(time.Minute)

	b.allow()
	b.record(true)
	if b.State() != BreakerOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	// The reset timeout restarts from the failed probe.
	clock.Advance(30 * time.Second)
	if b.State() != BreakerOpen {
		t.Errorf("state = %v, want open", b.State())
	}
}

func TestBreaker_Reset(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{MaxFailures: 1})
	b.allow()
	b.record(true)

	b.Reset()
	if b.State() != BreakerClosed || !b.allow() {
		t.Error("Reset() did not close the breaker")
	}
}

func TestBreaker_Nil(t *testing.T) {
	var b *Breaker
	if !b.allow() {
		t.Error("nil breaker must allow")
	}
	b.record(true)
}

func TestRedisCache_BreakerSkipsDeadServer(t *testing.T) {
	b, clock := newTestBreaker(BreakerConfig{MaxFailures: 2, ResetTimeout: time.Minute})
	c, mr := setupRedis(t, "")
	c.breaker = b
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	c.Get(ctx, "k")
	c.Get(ctx, "k")
	if b.State() != BreakerOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Set() error = %v, want ErrCircuitOpen", err)
	}
	if err := c.Delete(ctx, "k"); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Delete() error = %v, want ErrCircuitOpen", err)
	}

	if err := mr.StartAddr(addr); err != nil {
		t.Fatalf("restart miniredis: %v", err)
	}
	clock.Advance(time.Minute)
	if err := c.Set(ctx, "k", []byte("v2"), time.Minute); err != nil {
		t.Fatalf("probe Set() error = %v", err)
	}
	if b.State() != BreakerClosed {
		t.Errorf("state after probe = %v, want closed", b.State())
	}
}

func TestRedisCache_MissIsNotAFailure(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{MaxFailures: 1})
	c, _ := setupRedis(t, "")
	c.breaker = b

	for range 3 {
		if _, ok := c.Get(context.Background(), "absent"); ok {
			t.Fatal("Get() hit on an empty server")
		}
	}
	if b.State() != BreakerClosed {
		t.Errorf("state = %v, want closed", b.State())
	}
}

func TestRedisCache_OpTimeout(t *testing.T) {
	c, _ := setupRedis(t, "")
	c.timeout = time.Second
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, ok := c.Get(ctx, "k"); !ok || string(got) != "v" {
		t.Errorf("Get() = (%q, %v), want (v, true)", got, ok)
	}
}
