package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func BenchmarkMemoryCache_Get_Hit(b *testing.B) {
	c := NewMemoryCache()
	ctx := context.Background()
	_ = c.Set(ctx, "key", []byte("value"), time.Hour)

	for b.Loop() {
		_, _ = c.Get(ctx, "key")
	}
}

func BenchmarkMemoryCache_Set_Bounded(b *testing.B) {
	c := NewMemoryCache(WithMaxEntries(256))
	ctx := context.Background()
	keys := make([]string, 1024)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
	}

	i := 0
	for b.Loop() {
		_ = c.Set(ctx, keys[i%len(keys)], []byte("value"), time.Hour)
		i++
	}
}

func BenchmarkDefaultKeyer_Key(b *testing.B) {
	k := NewDefaultKeyer(nil)
	m := mustMethod(b, "Search")
	args := []any{"query", map[string]int{"a": 1, "b": 2, "c": 3}}

	b.ReportAllocs()
	for b.Loop() {
		if _, err := k.Key(m, args); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkInterceptor_Invoke_Hit(b *testing.B) {
	ic, err := NewInterceptor(NewMemoryCache(), NewDefaultKeyer(nil), DefaultPolicy())
	if err != nil {
		b.Fatal(err)
	}
	m := mustMethod(b, "Find")
	args := []any{"42"}
	fn := func(context.Context) ([]byte, error) { return []byte("v"), nil }
	ctx := context.Background()
	_, _ = ic.Invoke(ctx, m, args, fn)

	b.ReportAllocs()
	for b.Loop() {
		_, _ = ic.Invoke(ctx, m, args, fn)
	}
}
