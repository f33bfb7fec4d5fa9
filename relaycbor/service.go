// Package relaycbor is the service root for the data-item value model,
// the CBOR/JSON codecs, and the schema engine implemented in the
// runtime package. It exposes the small surface a consuming application
// actually needs: a data item factory, a stream codec, and a schema
// document loader (spec §6.4).
package relaycbor

import (
	"io"

	cbor "github.com/zynaptic/relay.cbor/runtime"
)

// DataItem is the uniform tagged-variant value model shared by both wire
// formats (spec §3).
type DataItem = cbor.DataItem

// DecodeStatus is the eight-value lattice tracking how much a DataItem
// can be trusted (spec §3.1(a)).
type DecodeStatus = cbor.DecodeStatus

// SchemaDefinition is an immutable, built schema document (spec §4.3.6).
type SchemaDefinition = cbor.SchemaDefinition

// WarningSink receives schema validation warnings (spec §4.3).
type WarningSink = cbor.WarningSink

// Service is the top-level entry point into the library. A zero-value
// Service is not ready to use; construct one with New.
type Service struct {
	factory *cbor.Factory
}

// New constructs a ready-to-use Service.
func New() *Service {
	return &Service{factory: cbor.NewFactory()}
}

// DataItemFactory returns the data item factory used to construct values
// directly, outside of decoding a wire format (spec §6.4).
func (s *Service) DataItemFactory() *cbor.Factory {
	return s.factory
}

// DataStreamer returns a Streamer bound to w for encoding and r for
// decoding. Either may be nil for one-directional use.
func (s *Service) DataStreamer(w io.Writer, r io.Reader) *cbor.Streamer {
	return cbor.NewStreamer(w, r)
}

// GetSchemaDefinition builds a SchemaDefinition from a schema document
// (spec §6.3). Problems in the document are reported through the returned
// error; the builder does not write to sink.
func (s *Service) GetSchemaDefinition(schemaItem *DataItem, sink WarningSink) (*SchemaDefinition, error) {
	return cbor.NewSchemaBuilder().Build(schemaItem, sink)
}

// EncodeCBOR appends item's CBOR encoding to b (spec §4.1.1).
func EncodeCBOR(b []byte, item *DataItem) []byte {
	return cbor.AppendCBOR(b, item)
}

// DecodeCBOR decodes one CBOR item from the front of b (spec §4.1.2).
func DecodeCBOR(b []byte) (item *DataItem, rest []byte) {
	return cbor.DecodeCBOR(b)
}

// EncodeJSON appends item's JSON encoding to b (spec §4.2.1).
func EncodeJSON(b []byte, item *DataItem, pretty bool) []byte {
	return cbor.AppendJSON(b, item, pretty)
}

// DecodeJSON decodes one JSON value from s (spec §4.2.2).
func DecodeJSON(s string) (item *DataItem, rest string) {
	return cbor.DecodeJSON(s)
}
