package templatepro

import (
	"testing"
	"time"
)

func TestFromAnyScalars(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		kind ValueKind
	}{
		{"nil", nil, ValEmpty},
		{"string", "x", ValString},
		{"bool", true, ValBoolean},
		{"int", 7, ValInteger},
		{"int64", int64(7), ValInteger},
		{"float", 1.5, ValFloat},
		{"time", time.Now(), ValDateTime},
	}
	for _, c := range cases {
		if got := FromAny(c.in).Kind; got != c.kind {
			t.Fatalf("%s: got %v, want %v", c.name, got, c.kind)
		}
	}
}

func TestFromAnyNullableWrappers(t *testing.T) {
	var absent *int
	if got := FromAny(absent); got.Kind != ValEmpty {
		t.Fatalf("nil pointer should unwrap to Empty, got %v", got.Kind)
	}
	present := 9
	got := FromAny(&present)
	if got.Kind != ValInteger || got.Int != 9 {
		t.Fatalf("pointer should unwrap to its scalar, got %v", got)
	}
}

func TestFromAnyCollections(t *testing.T) {
	v := FromAny([]string{"a", "b"})
	if v.Kind != ValList || v.List.Len() != 2 {
		t.Fatalf("slice should wrap as a list, got %v", v)
	}
	v = FromAny([]int{1, 2, 3})
	if v.Kind != ValList || v.List.At(2).Int != 3 {
		t.Fatalf("int slice should wrap as a list, got %v", v)
	}
	v = FromAny(map[string]interface{}{"a": 1})
	if v.Kind != ValObject {
		t.Fatalf("string map should wrap as an object, got %v", v.Kind)
	}
}

func TestTruthiness(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"empty", EmptyValue(), false},
		{"true", BoolValue(true), true},
		{"false", BoolValue(false), false},
		{"zero int", IntValue(0), false},
		{"nonzero int", IntValue(3), true},
		{"empty string", StringValue(""), false},
		{"false string", StringValue("FaLsE"), false},
		{"zero string", StringValue("0"), false},
		{"word", StringValue("no"), true},
		{"list", ListValue(stringList{"a"}), false},
	}
	for _, c := range cases {
		if got := c.v.Truthy(); got != c.want {
			t.Fatalf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestIterability(t *testing.T) {
	if !ListValue(stringList{}).IsIterable() {
		t.Fatal("lists are iterable")
	}
	if !RowsValue(&SliceRows{}).IsIterable() {
		t.Fatal("row sources are iterable")
	}
	if StringValue("abc").IsIterable() {
		t.Fatal("strings are not iterable")
	}
	if EmptyValue().IsIterable() {
		t.Fatal("empty is not iterable")
	}
}

func TestRowSourceCursor(t *testing.T) {
	rows := RowsValue(&SliceRows{
		Cols: []string{"n"},
		Data: []map[string]interface{}{{"n": 1}, {"n": 2}},
	})
	second := rows.elem(1)
	got, ok := descend(second, pathSegment{name: "n", index: -1})
	if !ok || got.Int != 2 {
		t.Fatalf("cursor row access failed: %v %v", got, ok)
	}
}
