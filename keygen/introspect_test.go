package keygen

import (
	"reflect"
	"testing"
	"time"
)

type version struct {
	Major, Minor int
}

func (v version) Equal(o version) bool { return v == o }

type versionPtr struct {
	Major int
}

func (v *versionPtr) Equal(o versionPtr) bool { return v.Major == o.Major }

// tracked embeds userID and so gets Hash by promotion only.
type tracked struct {
	userID
	Note string
}

// retracked embeds userID but declares Hash itself.
type retracked struct {
	userID
}

func (r retracked) Hash() uint64 { return 0 }

type label string

func (l label) String() string { return "#" + string(l) }

type Level uint8

func (l Level) String() string { return "L" }

func TestTraits(t *testing.T) {
	tests := []struct {
		name        string
		typ         reflect.Type
		wantHash    bool
		wantEquals  bool
		wantDisplay bool
	}{
		{name: "plain struct", typ: reflect.TypeFor[point]()},
		{name: "hasher", typ: reflect.TypeFor[userID](), wantHash: true},
		{name: "equal", typ: reflect.TypeFor[version](), wantEquals: true},
		{name: "pointer equal", typ: reflect.TypeFor[*versionPtr](), wantEquals: true},
		{name: "stringer", typ: reflect.TypeFor[money](), wantDisplay: true},
		{name: "enum", typ: reflect.TypeFor[Color](), wantDisplay: true},
		{name: "time", typ: reflect.TypeFor[time.Time](), wantEquals: true, wantDisplay: true},
		{name: "promoted hash", typ: reflect.TypeFor[tracked]()},
		{name: "redeclared hash", typ: reflect.TypeFor[retracked]()},
		{name: "interface", typ: reflect.TypeFor[Hasher]()},
		{name: "int", typ: reflect.TypeFor[int]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasHash(tt.typ); got != tt.wantHash {
				t.Errorf("HasHash() = %v, want %v", got, tt.wantHash)
			}
			if got := HasEquals(tt.typ); got != tt.wantEquals {
				t.Errorf("HasEquals() = %v, want %v", got, tt.wantEquals)
			}
			if got := HasDisplay(tt.typ); got != tt.wantDisplay {
				t.Errorf("HasDisplay() = %v, want %v", got, tt.wantDisplay)
			}
		})
	}
}

func TestIsEnum(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want bool
	}{
		{typ: reflect.TypeFor[Color](), want: true},
		{typ: reflect.TypeFor[Level](), want: true},
		{typ: reflect.TypeFor[time.Month](), want: true},
		{typ: reflect.TypeFor[label]()},
		{typ: reflect.TypeFor[int]()},
		{typ: reflect.TypeFor[PrimitiveKind](), want: true},
		{typ: reflect.TypeFor[money]()},
	}
	for _, tt := range tests {
		if got := isEnum(tt.typ); got != tt.want {
			t.Errorf("isEnum(%v) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestWalkFields(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want [][]int
	}{
		{name: "flat", typ: reflect.TypeFor[point](), want: [][]int{{0}, {1}}},
		{name: "embedded", typ: reflect.TypeFor[derived](), want: [][]int{{0, 0}, {1}}},
		{name: "transient and blank", typ: reflect.TypeFor[session](), want: [][]int{{0}}},
		{name: "embedded hasher", typ: reflect.TypeFor[tracked](), want: [][]int{{0, 0}, {0, 1}, {1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := walkFields(tt.typ, nil); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("walkFields() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{typ: nil, want: "nil"},
		{typ: reflect.TypeFor[int](), want: "int"},
		{typ: reflect.TypeFor[time.Duration](), want: "time.Duration"},
		{typ: reflect.TypeFor[point](), want: "github.com/jonwraymond/callcache/keygen.point"},
		{typ: reflect.TypeFor[[]string](), want: "[]string"},
		{typ: reflect.TypeFor[*point](), want: "*keygen.point"},
	}
	for _, tt := range tests {
		if got := typeName(tt.typ); got != tt.want {
			t.Errorf("typeName(%v) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestExported(t *testing.T) {
	v := addressable(reflect.ValueOf(private{name: "p"}))
	f := v.Field(0)
	if f.CanInterface() {
		t.Fatal("unexported field is already interfaceable")
	}
	if got := exported(f); !got.CanInterface() || got.Interface() != "p" {
		t.Errorf("exported() = %v", got)
	}
}

func TestRebuild(t *testing.T) {
	v := reflect.ValueOf(private{name: "p"}).Field(0)
	if v.CanAddr() {
		t.Fatal("field of an unaddressable struct is addressable")
	}
	x, ok := rebuild(v)
	if !ok || x != "p" {
		t.Errorf("rebuild() = %v, %v", x, ok)
	}

	if _, ok := rebuild(reflect.ValueOf(private{tags: []string{"t"}}).Field(1)); ok {
		t.Error("rebuild() of an inaccessible slice succeeded")
	}
}
