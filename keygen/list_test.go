package keygen

import (
	"reflect"
	"testing"
)

func TestList_String(t *testing.T) {
	tests := []struct {
		name string
		list List
		want string
	}{
		{name: "empty", list: NewList(), want: "[]"},
		{name: "mixed", list: NewList(1, "a", nil, NewList(true)), want: `[1, "a", null, [true]]`},
		{name: "quoted strings keep numbers apart", list: NewList("1"), want: `["1"]`},
		{name: "type", list: NewList(reflect.TypeFor[int]()), want: "[int]"},
		{name: "enum", list: NewList(EnumMember{Type: "pkg.Color", Name: "Red"}), want: "[pkg.Color.Red]"},
		{name: "other scalars", list: NewList(int64(3), 2.5), want: "[int64(3), float64(2.5)]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.list.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestList_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b List
		want bool
	}{
		{name: "empty", a: NewList(), b: NewList(), want: true},
		{name: "scalars", a: NewList(1, "a"), b: NewList(1, "a"), want: true},
		{name: "length", a: NewList(1), b: NewList(1, 2)},
		{name: "order", a: NewList(1, 2), b: NewList(2, 1)},
		{name: "int vs int64", a: NewList(1), b: NewList(int64(1))},
		{name: "nested", a: NewList(NewList(1)), b: NewList(NewList(1)), want: true},
		{name: "nested differs", a: NewList(NewList(1)), b: NewList(NewList(2))},
		{name: "list vs scalar", a: NewList(NewList()), b: NewList(nil)},
		{name: "null", a: NewList(nil), b: NewList(nil), want: true},
		{name: "null vs zero", a: NewList(nil), b: NewList(0)},
		{name: "types", a: NewList(reflect.TypeFor[int]()), b: NewList(reflect.TypeFor[int]()), want: true},
		{name: "Equal method", a: NewList(version{1, 2}), b: NewList(version{1, 2}), want: true},
		{name: "Equal method differs", a: NewList(version{1, 2}), b: NewList(version{1, 3})},
		{name: "pointer Equal method", a: NewList(&versionPtr{1}), b: NewList(&versionPtr{1}), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Equal(tt.a); got != tt.want {
				t.Errorf("Equal() reversed = %v, want %v", got, tt.want)
			}
			if tt.want && tt.a.Hash() != tt.b.Hash() {
				t.Errorf("equal lists hash differently: %d vs %d", tt.a.Hash(), tt.b.Hash())
			}
		})
	}
}

func TestList_Accessors(t *testing.T) {
	src := []any{1, "a"}
	l := NewList(src...)
	src[0] = 99

	if l.Len() != 2 || l.At(0) != 1 || l.At(1) != "a" {
		t.Errorf("NewList did not copy its input: %v", l)
	}

	vals := l.Values()
	vals[1] = "mutated"
	if l.At(1) != "a" {
		t.Error("Values() exposed the backing array")
	}
}

func TestListEncoder_Shapes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Encoder = EncoderList
	cfg.IncludeMethod = false
	g := mustGen(t, cfg)

	got := keyOf(t, g, Method{}, []int{1, 2}, map[string]bool{"k": true}, Red, nil).(List)
	want := NewList(
		NewList(1, 2),
		NewList(NewList("k", true)),
		EnumMember{Type: typeName(reflect.TypeFor[Color]()), Name: "Red"},
		nil,
	)
	if !got.Equal(want) {
		t.Errorf("key = %v, want %v", got, want)
	}
}

func TestListEncoder_RejectsIncomparable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Encoder = EncoderList
	cfg.Reflect = false
	g := mustGen(t, cfg)

	// Without reflection a struct holding a slice is handed over whole.
	type holder struct{ S []int }
	if _, err := g.GenerateKey(methodOf(t, "F"), holder{S: []int{1}}); err == nil {
		t.Error("GenerateKey() accepted an incomparable struct")
	}
	if _, err := g.GenerateKey(methodOf(t, "F"), point{1, 2}); err != nil {
		t.Errorf("GenerateKey() rejected a comparable struct: %v", err)
	}
}
