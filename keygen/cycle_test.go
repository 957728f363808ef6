package keygen

import (
	"reflect"
	"testing"
)

func TestCycleRegistry_RegisterUnregister(t *testing.T) {
	r := NewCycleRegistry()
	m := map[string]int{"a": 1}
	v := reflect.ValueOf(m)

	if !r.Register(v) {
		t.Fatal("first Register() = false")
	}
	if r.Register(v) {
		t.Error("second Register() of the same map = true")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}

	r.Unregister(v)
	if r.Len() != 0 {
		t.Errorf("Len() after Unregister = %d, want 0", r.Len())
	}
	if !r.Register(v) {
		t.Error("Register() after Unregister = false")
	}
}

func TestCycleRegistry_IdentityNotEquality(t *testing.T) {
	r := NewCycleRegistry()
	a := map[string]int{"a": 1}
	b := map[string]int{"a": 1}

	if !r.Register(reflect.ValueOf(a)) || !r.Register(reflect.ValueOf(b)) {
		t.Error("equal but distinct maps must both register")
	}
}

func TestCycleRegistry_SliceWindows(t *testing.T) {
	r := NewCycleRegistry()
	s := []any{1, 2, 3}

	if !r.Register(reflect.ValueOf(s)) {
		t.Fatal("Register(s) = false")
	}
	if !r.Register(reflect.ValueOf(s[:2])) {
		t.Error("a shorter window over the same array is a different value")
	}
	if r.Register(reflect.ValueOf(s[:3])) {
		t.Error("a full window over the same array is the same value")
	}
}

func TestCycleRegistry_ValuesWithoutIdentity(t *testing.T) {
	r := NewCycleRegistry()
	for _, v := range []any{point{1, 2}, [2]int{1, 2}, 5, "s"} {
		rv := reflect.ValueOf(v)
		if !r.Register(rv) || !r.Register(rv) {
			t.Errorf("Register(%T) rejected a value without identity", v)
		}
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestCycleRegistry_UnregisterAbsent(t *testing.T) {
	r := NewCycleRegistry()
	r.Unregister(reflect.ValueOf(&point{}))
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestCycleRegistry_Nil(t *testing.T) {
	var r *CycleRegistry
	v := reflect.ValueOf(&point{})
	if !r.Register(v) || !r.Register(v) {
		t.Error("nil registry must accept everything")
	}
	r.Unregister(v)
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}
