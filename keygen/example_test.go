package keygen_test

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/jonwraymond/callcache/keygen"
)

type Inventory struct{}

func (Inventory) Lookup(sku string, warehouses []int) (int, error) { return 0, nil }

func argsOnly(kind keygen.EncoderKind, algorithm string) *keygen.Generator {
	cfg := keygen.DefaultConfig()
	cfg.Encoder = kind
	cfg.Algorithm = algorithm
	cfg.IncludeMethod = false
	g, err := keygen.New(cfg)
	if err != nil {
		panic(err)
	}
	return g
}

func ExampleGenerator_GenerateKey() {
	g := argsOnly(keygen.EncoderString, "")

	k, err := g.GenerateKey(keygen.Method{}, "sku-1", []int{3, 1}, map[string]int{"b": 2, "a": 1})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(k)
	// Output:
	// [sku-1, [3, 1], [[a, 1], [b, 2]]]
}

func ExampleNewHashGenerator() {
	g := argsOnly(keygen.EncoderHash, "")

	k, _ := g.GenerateKey(keygen.Method{}, 1, 2)
	fmt.Println(k)
	// Output:
	// 994
}

func ExampleNewDigestGenerator() {
	g := argsOnly(keygen.EncoderDigest, "sha-256")

	k, _ := g.GenerateKey(keygen.Method{}, "a")
	fmt.Println(k)
	// Output:
	// cv9rApSdrZUAbDQ-PbMVAJDTr7Sfa725L9wXYHmXqFw
}

func ExampleNewListGenerator() {
	g := argsOnly(keygen.EncoderList, "")

	// A slice that contains itself: the back reference becomes null.
	loop := []any{nil}
	loop[0] = loop

	k, _ := g.GenerateKey(keygen.Method{}, loop, "x")
	fmt.Println(k)
	// Output:
	// [[null], "x"]
}

func ExampleMethodOf() {
	m, err := keygen.MethodOf(reflect.TypeFor[Inventory](), "Lookup")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(m)
	fmt.Println(m.Params)
	fmt.Println(m.Return())
	// Output:
	// github.com/jonwraymond/callcache/keygen_test.Inventory.Lookup
	// [string []int]
	// [int error]
}

func ExampleTypeError() {
	g := keygen.NewListGenerator()
	m, _ := keygen.MethodOf(reflect.TypeFor[Inventory](), "Lookup")

	_, err := g.GenerateKey(m, func() {})
	var te *keygen.TypeError
	fmt.Println(errors.As(err, &te), errors.Is(err, keygen.ErrUnsupportedType))
	// Output:
	// true true
}
