// Package benchmarks compares the tree codec against sibling wire-format
// libraries carried in go.mod, on a document shape representative of a
// schema-backed record (SPEC_FULL §4.5, DOMAIN STACK).
package benchmarks

import (
	"testing"

	fxcbor "github.com/fxamacker/cbor/v2"
	"github.com/tinylib/msgp/msgp"

	cbor "github.com/zynaptic/relay.cbor/runtime"
)

func buildFixtureItem() *cbor.DataItem {
	f := cbor.NewFactory()
	item := f.CreateNamedMap(nil, false)
	item.NamedMapSet("id", f.CreateInteger(42, nil))
	item.NamedMapSet("name", f.CreateTextString("widget", nil))
	item.NamedMapSet("active", f.CreateBoolean(true, nil))
	item.NamedMapSet("weight", f.CreateDoubleFloat(3.5, nil))
	tags := f.CreateArray(nil, false)
	tags.ArrayAppend(f.CreateTextString("a", nil))
	tags.ArrayAppend(f.CreateTextString("b", nil))
	item.NamedMapSet("tags", tags)
	return item
}

type fixtureStruct struct {
	ID     int64    `cbor:"id" msg:"id"`
	Name   string   `cbor:"name" msg:"name"`
	Active bool     `cbor:"active" msg:"active"`
	Weight float64  `cbor:"weight" msg:"weight"`
	Tags   []string `cbor:"tags" msg:"tags"`
}

func buildFixtureStruct() fixtureStruct {
	return fixtureStruct{ID: 42, Name: "widget", Active: true, Weight: 3.5, Tags: []string{"a", "b"}}
}

func BenchmarkEncodeDataItem(b *testing.B) {
	item := buildFixtureItem()
	buf := make([]byte, 0, 256)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf = cbor.AppendCBOR(buf[:0], item)
	}
}

func BenchmarkEncodeFxamacker(b *testing.B) {
	v := buildFixtureStruct()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := fxcbor.Marshal(v); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeDataItem(b *testing.B) {
	item := buildFixtureItem()
	buf := cbor.AppendCBOR(nil, item)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		cbor.DecodeCBOR(buf)
	}
}

func BenchmarkDecodeFxamacker(b *testing.B) {
	v := buildFixtureStruct()
	buf, err := fxcbor.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var out fixtureStruct
		if err := fxcbor.Unmarshal(buf, &out); err != nil {
			b.Fatal(err)
		}
	}
}

// msgpFixture exercises the tinylib/msgp + philhofer/fwd sibling-format
// dependency chain as a comparison point (SPEC_FULL §4.5).
type msgpFixture struct {
	ID     int64
	Name   string
	Active bool
	Weight float64
	Tags   []string
}

func (m *msgpFixture) EncodeMsg(w *msgp.Writer) error {
	if err := w.WriteInt64(m.ID); err != nil {
		return err
	}
	if err := w.WriteString(m.Name); err != nil {
		return err
	}
	if err := w.WriteBool(m.Active); err != nil {
		return err
	}
	if err := w.WriteFloat64(m.Weight); err != nil {
		return err
	}
	return w.WriteArrayHeader(uint32(len(m.Tags)))
}

func BenchmarkEncodeMsgp(b *testing.B) {
	v := &msgpFixture{ID: 42, Name: "widget", Active: true, Weight: 3.5, Tags: []string{"a", "b"}}
	var buf []byte
	w := msgp.NewWriter(nil)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf = buf[:0]
		bw := new(byteSliceWriter)
		w.Reset(bw)
		if err := v.EncodeMsg(w); err != nil {
			b.Fatal(err)
		}
		if err := w.Flush(); err != nil {
			b.Fatal(err)
		}
	}
}

type byteSliceWriter struct{ buf []byte }

func (w *byteSliceWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}
