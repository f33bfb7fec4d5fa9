package cbor

import "encoding/base64"

// Factory constructs DataItems while enforcing the per-variant invariants
// of spec §3 (Simple value domain, Base64 decoding of byte strings from
// text, the ORIGINAL initial decode status). It has no state of its own;
// a zero-value Factory is ready to use, mirroring DataItemFactoryCore's
// stateless implementation in the original.
type Factory struct{}

// NewFactory returns a ready-to-use data item factory.
func NewFactory() *Factory { return &Factory{} }

func cloneTags(tags []int32) []int32 {
	if tags == nil {
		return nil
	}
	out := make([]int32, len(tags))
	copy(out, tags)
	return out
}

func newHeader(tags []int32, mutable bool) header {
	return header{tags: cloneTags(tags), mutable: mutable, status: Original}
}

// CreateInvalidItem returns an UNDEFINED-shaped item carrying the given
// failure decode status, used throughout the codecs and schema engine to
// report INVALID / UNSUPPORTED / FAILED_SCHEMA outcomes (spec §7.2, §7.3).
func (f *Factory) CreateInvalidItem(status DecodeStatus) *DataItem {
	d := &DataItem{header: newHeader(nil, true), dataType: Undefined}
	d.status = status
	return d
}

// CreateBoolean constructs a BOOLEAN item.
func (f *Factory) CreateBoolean(value bool, tags []int32) *DataItem {
	return &DataItem{header: newHeader(tags, true), dataType: Boolean, b: value}
}

// CreateNull constructs a NULL item.
func (f *Factory) CreateNull(tags []int32) *DataItem {
	return &DataItem{header: newHeader(tags, true), dataType: Null}
}

// CreateUndefined constructs an UNDEFINED item.
func (f *Factory) CreateUndefined(tags []int32) *DataItem {
	return &DataItem{header: newHeader(tags, true), dataType: Undefined}
}

// CreateSimple constructs a SIMPLE item. value must lie in {0..19,32..255};
// the reserved range {20..31} is rejected per spec §4.1.1.
func (f *Factory) CreateSimple(value int, tags []int32) (*DataItem, error) {
	if value < 0 || value > 255 || (value >= 20 && value <= 31) {
		return nil, &ErrUnsupportedType{Reason: "simple value must be one of the RFC 7049 unassigned values"}
	}
	return &DataItem{header: newHeader(tags, true), dataType: Simple, sim: uint8(value)}, nil
}

// CreateInteger constructs an INTEGER item.
func (f *Factory) CreateInteger(value int64, tags []int32) *DataItem {
	return &DataItem{header: newHeader(tags, true), dataType: Integer, i64: value}
}

// CreateHalfFloat constructs a FLOAT_HALF item, carried as float32.
func (f *Factory) CreateHalfFloat(value float32, tags []int32) *DataItem {
	return &DataItem{header: newHeader(tags, true), dataType: FloatHalf, f32: value}
}

// CreateStandardFloat constructs a FLOAT_STANDARD item.
func (f *Factory) CreateStandardFloat(value float32, tags []int32) *DataItem {
	return &DataItem{header: newHeader(tags, true), dataType: FloatStandard, f32: value}
}

// CreateDoubleFloat constructs a FLOAT_DOUBLE item.
func (f *Factory) CreateDoubleFloat(value float64, tags []int32) *DataItem {
	return &DataItem{header: newHeader(tags, true), dataType: FloatDouble, f64: value}
}

// CreateTextString constructs a TEXT_STRING item.
func (f *Factory) CreateTextString(value string, tags []int32) *DataItem {
	return &DataItem{header: newHeader(tags, true), dataType: TextString, text: value}
}

// CreateTextStringList constructs an empty, mutable TEXT_STRING_LIST item.
// TEXT_STRING_LIST is always indefinite-length per spec §3.1(b).
func (f *Factory) CreateTextStringList(tags []int32) *DataItem {
	d := &DataItem{header: newHeader(tags, true), dataType: TextStringList}
	d.indefiniteLength = true
	return d
}

// CreateByteString constructs a BYTE_STRING item from raw bytes.
func (f *Factory) CreateByteString(value []byte, tags []int32) *DataItem {
	return &DataItem{header: newHeader(tags, true), dataType: ByteString, bytes: value}
}

// CreateByteStringFromText decodes encodedString as Base64-URL (padding
// optional, per SPEC_FULL §6.5) and constructs a BYTE_STRING item. On
// decode failure it returns an item carrying decode status INVALID
// (spec §4.3.1's "encoded" schema semantics, and the original's
// createByteStringItem(String, ...) behaviour).
func (f *Factory) CreateByteStringFromText(encodedString string, tags []int32) *DataItem {
	decoded, err := decodeBase64URLTolerant(encodedString)
	if err != nil {
		d := &DataItem{header: newHeader(tags, true), dataType: ByteString}
		d.status = Invalid
		return d
	}
	return &DataItem{header: newHeader(tags, true), dataType: ByteString, bytes: decoded}
}

func decodeBase64URLTolerant(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

// CreateByteStringList constructs an empty, mutable BYTE_STRING_LIST item.
func (f *Factory) CreateByteStringList(tags []int32) *DataItem {
	d := &DataItem{header: newHeader(tags, true), dataType: ByteStringList}
	d.indefiniteLength = true
	return d
}

// CreateArray constructs an empty, mutable ARRAY item.
func (f *Factory) CreateArray(tags []int32, indefiniteLength bool) *DataItem {
	d := &DataItem{header: newHeader(tags, true), dataType: Array}
	d.indefiniteLength = indefiniteLength
	return d
}

// CreateNamedMap constructs an empty, mutable NAMED_MAP item.
func (f *Factory) CreateNamedMap(tags []int32, indefiniteLength bool) *DataItem {
	d := &DataItem{header: newHeader(tags, true), dataType: NamedMap, named: map[string]*DataItem{}}
	d.indefiniteLength = indefiniteLength
	return d
}

// CreateIndexedMap constructs an empty, mutable INDEXED_MAP item.
func (f *Factory) CreateIndexedMap(tags []int32, indefiniteLength bool) *DataItem {
	d := &DataItem{header: newHeader(tags, true), dataType: IndexedMap, indexed: map[int64]*DataItem{}}
	d.indefiniteLength = indefiniteLength
	return d
}

// CreateEmptyMap constructs the decoder-only EMPTY_MAP item (spec §3.1(c)).
func (f *Factory) CreateEmptyMap(tags []int32) *DataItem {
	return &DataItem{header: newHeader(tags, false), dataType: EmptyMap}
}
