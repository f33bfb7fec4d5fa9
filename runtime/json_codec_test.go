package cbor

import (
	"math"
	"testing"
)

func TestDecodeJSONInteger(t *testing.T) {
	item, rest := DecodeJSON("42")
	if rest != "" || item.DataType() != Integer || item.AsInteger() != 42 {
		t.Fatalf("got %v %s, rest %q", item.AsInteger(), item.DataType(), rest)
	}
	if item.DecodeStatus() != Translatable {
		t.Fatalf("status = %s, want TRANSLATABLE", item.DecodeStatus())
	}
}

func TestDecodeJSONFloat(t *testing.T) {
	item, rest := DecodeJSON("3.5e1")
	if rest != "" || item.DataType() != FloatDouble || item.AsFloat() != 35 {
		t.Fatalf("got %v %s, rest %q", item.AsFloat(), item.DataType(), rest)
	}
}

func TestDecodeJSONCommentsAreSkipped(t *testing.T) {
	item, rest := DecodeJSON("// comment\n/* block */ 7")
	if rest != "" || item.AsInteger() != 7 {
		t.Fatalf("got %v, rest %q", item.AsInteger(), rest)
	}
}

func TestDecodeJSONStringEscapes(t *testing.T) {
	item, rest := DecodeJSON(`"a\nbA"`)
	if rest != "" || item.AsText() != "a\nbA" {
		t.Fatalf("got %q, rest %q", item.AsText(), rest)
	}
}

func TestDecodeJSONObjectDuplicateKeyFirstWins(t *testing.T) {
	item, rest := DecodeJSON(`{"a": 1, "a": 2}`)
	if rest != "" {
		t.Fatalf("rest = %q", rest)
	}
	if item.DecodeStatus() != WellFormed {
		t.Fatalf("status = %s, want WELL_FORMED", item.DecodeStatus())
	}
	v, ok := item.NamedMapGet("a")
	if !ok || v.AsInteger() != 1 {
		t.Fatalf("first binding not kept: %v %v", v, ok)
	}
}

func TestDecodeJSONEmptyObject(t *testing.T) {
	item, rest := DecodeJSON(`{}`)
	if rest != "" || item.DataType() != EmptyMap {
		t.Fatalf("got %s, rest %q", item.DataType(), rest)
	}
}

func TestJSONEncodeNonFiniteFloatIsNull(t *testing.T) {
	f := NewFactory()
	item := f.CreateDoubleFloat(math.NaN(), nil)
	got := string(AppendJSON(nil, item, false))
	if got != "null" {
		t.Fatalf("got %q, want null", got)
	}
}

func TestJSONEncodeByteStringIsBase64URL(t *testing.T) {
	f := NewFactory()
	item := f.CreateByteString([]byte{0xFB, 0xFF}, nil)
	got := string(AppendJSON(nil, item, false))
	if got != `"-_8"` {
		t.Fatalf("got %q", got)
	}
}

func TestJSONRoundTripArray(t *testing.T) {
	f := NewFactory()
	arr := f.CreateArray(nil, false)
	arr.ArrayAppend(f.CreateInteger(1, nil))
	arr.ArrayAppend(f.CreateTextString("x", nil))
	encoded := string(AppendJSON(nil, arr, false))
	decoded, rest := DecodeJSON(encoded)
	if rest != "" {
		t.Fatalf("rest = %q", rest)
	}
	elems := decoded.AsArray()
	if len(elems) != 2 || elems[0].AsInteger() != 1 || elems[1].AsText() != "x" {
		t.Fatalf("elems = %v", elems)
	}
}

func TestJSONPrettyPrintFormat(t *testing.T) {
	f := NewFactory()
	m := f.CreateNamedMap(nil, false)
	m.NamedMapSet("a", f.CreateInteger(1, nil))
	got := string(AppendJSON(nil, m, true))
	want := "{\n\t\"a\" : 1\n}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
