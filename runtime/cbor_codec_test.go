package cbor

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeIntegerRoundTrip(t *testing.T) {
	f := NewFactory()
	for _, v := range []int64{0, 1, 23, 24, 255, 256, 65535, 65536, -1, -24, -25, -1000000} {
		item := f.CreateInteger(v, nil)
		buf := AppendCBOR(nil, item)
		out, rest := DecodeCBOR(buf)
		if len(rest) != 0 {
			t.Fatalf("value %d: leftover bytes %x", v, rest)
		}
		if out.DataType() != Integer || out.AsInteger() != v {
			t.Fatalf("value %d: decoded %v (%s)", v, out.AsInteger(), out.DataType())
		}
		if out.DecodeStatus() != Translatable {
			t.Fatalf("value %d: DecodeStatus() = %s, want TRANSLATABLE", v, out.DecodeStatus())
		}
	}
}

func TestNegativeIntegerUsesMinimalHeadForm(t *testing.T) {
	f := NewFactory()
	item := f.CreateInteger(-1, nil)
	buf := AppendCBOR(nil, item)
	if len(buf) != 1 || buf[0] != 0x20 {
		t.Fatalf("buf = %x, want [0x20] (minimal one-byte head)", buf)
	}
}

func TestMapKeyTypeDiscrimination(t *testing.T) {
	// {1: 2, 3: 4} -> INDEXED_MAP
	indexed := []byte{0xA2, 0x01, 0x02, 0x03, 0x04}
	item, rest := DecodeCBOR(indexed)
	if len(rest) != 0 || item.DataType() != IndexedMap {
		t.Fatalf("indexed map: got %s, rest %x", item.DataType(), rest)
	}

	// {"a": 1, "b": 2} -> NAMED_MAP
	named := []byte{0xA2, 0x61, 'a', 0x01, 0x61, 'b', 0x02}
	item, rest = DecodeCBOR(named)
	if len(rest) != 0 || item.DataType() != NamedMap {
		t.Fatalf("named map: got %s, rest %x", item.DataType(), rest)
	}

	// {1: 2, "a": 3} -> UNSUPPORTED
	mixed := []byte{0xA2, 0x01, 0x02, 0x61, 'a', 0x03}
	item, rest = DecodeCBOR(mixed)
	if len(rest) != 0 || item.DecodeStatus() != Unsupported {
		t.Fatalf("mixed-key map: got status %s, rest %x", item.DecodeStatus(), rest)
	}
}

func TestDuplicateKeyFirstWinsDowngradesStatus(t *testing.T) {
	// {"a": 1, "a": 2}
	dup := []byte{0xA2, 0x61, 'a', 0x01, 0x61, 'a', 0x02}
	item, rest := DecodeCBOR(dup)
	if len(rest) != 0 {
		t.Fatalf("leftover bytes %x", rest)
	}
	if item.DecodeStatus() != WellFormed {
		t.Fatalf("status = %s, want WELL_FORMED", item.DecodeStatus())
	}
	v, ok := item.NamedMapGet("a")
	if !ok || v.AsInteger() != 1 {
		t.Fatalf("first binding not kept: %v, %v", v, ok)
	}
}

func TestIndefiniteTextStringConcatenation(t *testing.T) {
	// (_ "ab", "cd") terminated by break
	buf := []byte{0x7F, 0x62, 'a', 'b', 0x62, 'c', 'd', 0xFF}
	item, rest := DecodeCBOR(buf)
	if len(rest) != 0 {
		t.Fatalf("leftover bytes %x", rest)
	}
	if item.DataType() != TextStringList {
		t.Fatalf("got %s, want TEXT_STRING_LIST", item.DataType())
	}
	segs := item.AsTextList()
	if len(segs) != 2 || segs[0] != "ab" || segs[1] != "cd" {
		t.Fatalf("segments = %v", segs)
	}
}

func TestInvalidUTF8TextStringFails(t *testing.T) {
	buf := []byte{0x61, 0xFF}
	item, rest := DecodeCBOR(buf)
	if len(rest) != 0 {
		t.Fatalf("leftover bytes %x", rest)
	}
	if !item.DecodeStatus().IsFailure() {
		t.Fatalf("status = %s, want a failure status", item.DecodeStatus())
	}
}

func TestFloatRoundTrip(t *testing.T) {
	f := NewFactory()
	item := f.CreateDoubleFloat(3.14159, nil)
	buf := AppendCBOR(nil, item)
	out, rest := DecodeCBOR(buf)
	if len(rest) != 0 || out.AsFloat() != 3.14159 {
		t.Fatalf("got %v, rest %x", out.AsFloat(), rest)
	}
}

func TestArrayRoundTrip(t *testing.T) {
	f := NewFactory()
	arr := f.CreateArray(nil, false)
	arr.ArrayAppend(f.CreateInteger(1, nil))
	arr.ArrayAppend(f.CreateInteger(2, nil))
	buf := AppendCBOR(nil, arr)
	out, rest := DecodeCBOR(buf)
	if len(rest) != 0 {
		t.Fatalf("leftover %x", rest)
	}
	elems := out.AsArray()
	if len(elems) != 2 || elems[0].AsInteger() != 1 || elems[1].AsInteger() != 2 {
		t.Fatalf("elems = %v", elems)
	}
}

func TestTagRoundTrip(t *testing.T) {
	f := NewFactory()
	item := f.CreateTextString("hello", []int32{55799})
	buf := AppendCBOR(nil, item)
	out, rest := DecodeCBOR(buf)
	if len(rest) != 0 {
		t.Fatalf("leftover %x", rest)
	}
	if len(out.Tags()) != 1 || out.Tags()[0] != 55799 {
		t.Fatalf("tags = %v", out.Tags())
	}
}

func TestShortInputYieldsInvalid(t *testing.T) {
	item, rest := DecodeCBOR([]byte{0x18})
	if !bytes.Equal(rest, nil) {
		t.Fatalf("rest = %x, want empty", rest)
	}
	if item.DecodeStatus() != Invalid {
		t.Fatalf("status = %s, want INVALID", item.DecodeStatus())
	}
}
