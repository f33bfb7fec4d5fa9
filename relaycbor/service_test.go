package relaycbor

import (
	"bytes"
	"io"
	"testing"
)

func TestServiceCBORRoundTrip(t *testing.T) {
	svc := New()
	f := svc.DataItemFactory()
	item := f.CreateTextString("hello", nil)
	buf := EncodeCBOR(nil, item)
	out, rest := DecodeCBOR(buf)
	if len(rest) != 0 || out.AsText() != "hello" {
		t.Fatalf("got %q, rest %x", out.AsText(), rest)
	}
}

func TestServiceJSONRoundTrip(t *testing.T) {
	svc := New()
	f := svc.DataItemFactory()
	item := f.CreateInteger(7, nil)
	buf := EncodeJSON(nil, item, false)
	out, rest := DecodeJSON(string(buf))
	if rest != "" || out.AsInteger() != 7 {
		t.Fatalf("got %d, rest %q", out.AsInteger(), rest)
	}
}

func TestServiceStreamerCBOR(t *testing.T) {
	svc := New()
	f := svc.DataItemFactory()
	item := f.CreateArray(nil, false)
	item.ArrayAppend(f.CreateInteger(1, nil))
	item.ArrayAppend(f.CreateInteger(2, nil))

	var buf bytes.Buffer
	streamer := svc.DataStreamer(&buf, nil)
	if err := streamer.EncodeCBOR(item); err != nil {
		t.Fatalf("EncodeCBOR: %v", err)
	}

	reader := svc.DataStreamer(nil, bytes.NewReader(buf.Bytes()))
	out, err := reader.DecodeCBOR()
	if err != nil {
		t.Fatalf("DecodeCBOR: %v", err)
	}
	elems := out.AsArray()
	if len(elems) != 2 || elems[0].AsInteger() != 1 || elems[1].AsInteger() != 2 {
		t.Fatalf("elems = %v", elems)
	}
}

// pendingReader never returns EOF once its buffered bytes are exhausted,
// simulating a socket that stays open past the last message written so
// far. A Streamer that buffers to EOF instead of decoding one item at a
// time would block forever reading from it.
type pendingReader struct {
	buf *bytes.Buffer
}

func (r *pendingReader) Read(p []byte) (int, error) {
	if r.buf.Len() == 0 {
		return 0, io.ErrNoProgress
	}
	return r.buf.Read(p)
}

func TestServiceStreamerCBORSequentialDoesNotBlock(t *testing.T) {
	svc := New()
	f := svc.DataItemFactory()

	var wire bytes.Buffer
	writer := svc.DataStreamer(&wire, nil)
	if err := writer.EncodeCBOR(f.CreateInteger(1, nil)); err != nil {
		t.Fatalf("EncodeCBOR(1): %v", err)
	}
	if err := writer.EncodeCBOR(f.CreateInteger(2, nil)); err != nil {
		t.Fatalf("EncodeCBOR(2): %v", err)
	}

	reader := svc.DataStreamer(nil, &pendingReader{buf: &wire})
	first, err := reader.DecodeCBOR()
	if err != nil {
		t.Fatalf("DecodeCBOR() #1: %v", err)
	}
	if first.AsInteger() != 1 {
		t.Fatalf("first = %d, want 1", first.AsInteger())
	}
	second, err := reader.DecodeCBOR()
	if err != nil {
		t.Fatalf("DecodeCBOR() #2: %v", err)
	}
	if second.AsInteger() != 2 {
		t.Fatalf("second = %d, want 2", second.AsInteger())
	}
}

func TestServiceStreamerJSONSequentialDoesNotBlock(t *testing.T) {
	svc := New()
	f := svc.DataItemFactory()

	var wire bytes.Buffer
	writer := svc.DataStreamer(&wire, nil)
	if err := writer.EncodeJSON(f.CreateInteger(1, nil), false); err != nil {
		t.Fatalf("EncodeJSON(1): %v", err)
	}
	if err := writer.EncodeJSON(f.CreateInteger(2, nil), false); err != nil {
		t.Fatalf("EncodeJSON(2): %v", err)
	}

	reader := svc.DataStreamer(nil, &pendingReader{buf: &wire})
	first, err := reader.DecodeJSON()
	if err != nil {
		t.Fatalf("DecodeJSON() #1: %v", err)
	}
	if first.AsInteger() != 1 {
		t.Fatalf("first = %d, want 1", first.AsInteger())
	}
	second, err := reader.DecodeJSON()
	if err != nil {
		t.Fatalf("DecodeJSON() #2: %v", err)
	}
	if second.AsInteger() != 2 {
		t.Fatalf("second = %d, want 2", second.AsInteger())
	}
}

func TestServiceGetSchemaDefinition(t *testing.T) {
	svc := New()
	f := svc.DataItemFactory()
	root := f.CreateNamedMap(nil, false)
	root.NamedMapSet("type", f.CreateTextString("boolean", nil))
	doc := f.CreateNamedMap(nil, false)
	doc.NamedMapSet("title", f.CreateTextString("flag", nil))
	doc.NamedMapSet("root", root)

	def, err := svc.GetSchemaDefinition(doc, nil)
	if err != nil {
		t.Fatalf("GetSchemaDefinition: %v", err)
	}
	if def.Title() != "flag" {
		t.Fatalf("Title() = %q", def.Title())
	}
	if !def.Validate(f.CreateBoolean(true, nil), false, true, nil) {
		t.Fatalf("Validate() = false for a boolean value")
	}
}
