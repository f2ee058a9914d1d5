package value_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/frankiebaffa/arcana/pkg/value"
)

func TestTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    value.Value
		want bool
	}{
		{"null", value.Null(), false},
		{"bool-false", value.Bool(false), false},
		{"bool-true", value.Bool(true), true},
		{"number-zero", value.Number(0), false},
		{"number-nonzero", value.Number(-1), true},
		{"string-empty", value.String(""), true},
		{"array-empty", value.Array(), true},
		{"object-empty", value.EmptyObject(), false},
		{"object-nonempty", value.EmptyObject().WithField("k", value.Null()), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.Truthy(); got != c.want {
				t.Errorf("Truthy() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestEmpty(t *testing.T) {
	cases := []struct {
		name string
		v    value.Value
		want bool
	}{
		{"null", value.Null(), true},
		{"string-empty", value.String(""), true},
		{"string-nonempty", value.String("x"), false},
		{"array-empty", value.Array(), true},
		{"array-nonempty", value.Array(value.Null()), false},
		{"object-empty", value.EmptyObject(), true},
		{"number", value.Number(0), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.Empty(); got != c.want {
				t.Errorf("Empty() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	src := []byte(`{"b":1,"a":[1,2,"x"],"c":{"z":true,"y":null}}`)
	v, err := value.ParseJSON(src)
	if err != nil {
		t.Fatal(err)
	}
	out, err := v.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	v2, err := value.ParseJSON(out)
	if err != nil {
		t.Fatal(err)
	}
	if !v.EqualTo(v2) {
		t.Errorf("round trip changed value: %s != %s", v, v2)
	}
	if got, want := v.Keys(), []string{"b", "a", "c"}; !cmp.Equal(got, want) {
		t.Errorf("key order = %v, want %v", got, want)
	}
}

func TestPathGetSet(t *testing.T) {
	root := value.EmptyObject()
	root = value.Set(root, value.ParsePath("a.b.c"), value.Number(1))

	got, ok := value.Get(root, value.ParsePath("a.b.c"))
	if !ok || got.AsNumber() != 1 {
		t.Fatalf("Get(a.b.c) = %v, %v", got, ok)
	}

	if _, ok := value.Get(root, value.ParsePath("a.x.c")); ok {
		t.Errorf("Get on missing intermediate segment should be not-found")
	}
}

func TestPathArrayIndex(t *testing.T) {
	root := value.EmptyObject()
	root = value.Set(root, value.ParsePath("xs"), value.Array(value.String("a"), value.String("b")))
	got, ok := value.Get(root, value.ParsePath("xs.1"))
	if !ok || got.AsString() != "b" {
		t.Fatalf("Get(xs.1) = %v, %v", got, ok)
	}
}

func TestUnset(t *testing.T) {
	root := value.EmptyObject().WithField("k", value.String("v"))
	root, ok := value.Unset(root, value.ParsePath("k"))
	if !ok {
		t.Fatal("Unset reported not found")
	}
	if _, ok := value.Get(root, value.ParsePath("k")); ok {
		t.Error("k still present after unset")
	}
}

func TestPushPop(t *testing.T) {
	root := value.EmptyObject()
	root = value.Push(root, value.ParsePath("xs"), value.Number(1))
	root = value.Push(root, value.ParsePath("xs"), value.Number(2))

	root, popped, ok := value.Pop(root, value.ParsePath("xs"))
	if !ok || popped.AsNumber() != 2 {
		t.Fatalf("Pop = %v, %v", popped, ok)
	}
	xs, _ := value.Get(root, value.ParsePath("xs"))
	if xs.Len() != 1 {
		t.Errorf("len(xs) = %d, want 1", xs.Len())
	}
}

func TestCompareTypeMismatch(t *testing.T) {
	if ord := value.Compare(value.Number(1), value.String("1")); ord != value.Uncomparable {
		t.Errorf("Compare(number, string) = %v, want Uncomparable", ord)
	}
	if ord := value.Compare(value.String("a"), value.String("b")); ord != value.Less {
		t.Errorf("Compare(a, b) = %v, want Less", ord)
	}
}
