package cbor

// UserDataType identifies the runtime shape of a DataItem's payload, per
// spec §3.2. It plays the role of a tagged-union discriminant: exactly one
// of the payload fields on DataItem is meaningful for a given UserDataType.
type UserDataType uint8

const (
	Integer UserDataType = iota
	FloatHalf
	FloatStandard
	FloatDouble
	Boolean
	Null
	Undefined
	Simple
	TextString
	TextStringList
	ByteString
	ByteStringList
	Array
	NamedMap
	IndexedMap
	EmptyMap
)

func (t UserDataType) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case FloatHalf:
		return "FLOAT_HALF"
	case FloatStandard:
		return "FLOAT_STANDARD"
	case FloatDouble:
		return "FLOAT_DOUBLE"
	case Boolean:
		return "BOOLEAN"
	case Null:
		return "NULL"
	case Undefined:
		return "UNDEFINED"
	case Simple:
		return "SIMPLE"
	case TextString:
		return "TEXT_STRING"
	case TextStringList:
		return "TEXT_STRING_LIST"
	case ByteString:
		return "BYTE_STRING"
	case ByteStringList:
		return "BYTE_STRING_LIST"
	case Array:
		return "ARRAY"
	case NamedMap:
		return "NAMED_MAP"
	case IndexedMap:
		return "INDEXED_MAP"
	case EmptyMap:
		return "EMPTY_MAP"
	default:
		return "UNKNOWN"
	}
}

// DecodeStatus is a point in the eight-value lattice of spec §3.3. Lower
// values are less strict; Join always returns the least-strict operand.
type DecodeStatus uint8

const (
	Invalid DecodeStatus = iota
	Unsupported
	FailedSchema
	WellFormed
	Tokenized
	Expanded
	Translatable
	Original
)

func (s DecodeStatus) String() string {
	switch s {
	case Invalid:
		return "INVALID"
	case Unsupported:
		return "UNSUPPORTED"
	case FailedSchema:
		return "FAILED_SCHEMA"
	case WellFormed:
		return "WELL_FORMED"
	case Tokenized:
		return "TOKENIZED"
	case Expanded:
		return "EXPANDED"
	case Translatable:
		return "TRANSLATABLE"
	case Original:
		return "ORIGINAL"
	default:
		return "UNKNOWN"
	}
}

// IsFailure reports whether s is one of the three failure kinds that
// invalidate payload reads (spec §3.3, §7.2).
func (s DecodeStatus) IsFailure() bool {
	return s == Invalid || s == Unsupported || s == FailedSchema
}

// Join computes the lattice join (least-strict-criteria) of a and b, per
// spec §3.3. Join is commutative and associative (spec §8.1).
func Join(a, b DecodeStatus) DecodeStatus {
	if a < b {
		return a
	}
	return b
}

// JoinAll folds Join across a list of child statuses, returning Original
// (the top of the lattice) for an empty list so it acts as an identity
// element under Join.
func JoinAll(statuses ...DecodeStatus) DecodeStatus {
	result := Original
	for _, s := range statuses {
		result = Join(result, s)
	}
	return result
}

// header carries the fields common to every DataItem variant (spec §3.1).
type header struct {
	tags             []int32
	mutable          bool
	indefiniteLength bool
	status           DecodeStatus
}

func (h *header) Tags() []int32 {
	if h.tags == nil {
		return nil
	}
	out := make([]int32, len(h.tags))
	copy(out, h.tags)
	return out
}

func (h *header) IsMutable() bool          { return h.mutable }
func (h *header) IsIndefiniteLength() bool { return h.indefiniteLength }
func (h *header) DecodeStatus() DecodeStatus {
	return h.status
}

// SetDecodeStatus reassigns the item's decode status, enforcing the
// monotonicity invariant of spec §3.1(a): once a failure status is
// assigned, only another failure status may follow.
func (h *header) SetDecodeStatus(s DecodeStatus) error {
	if h.status.IsFailure() && !s.IsFailure() {
		return ErrIllegalStatusTransition
	}
	h.status = s
	return nil
}

// DataItem is the fundamental value type of the library: a tagged variant
// over the sixteen (fifteen user-visible plus EMPTY_MAP) shapes of spec
// §3.2, carrying the common header of spec §3.1.
//
// A DataItem produced by the DataItemFactory is mutable per its header
// flag; a DataItem produced by a decoder is always immutable, exposing a
// frozen view over its container contents (spec §9, "mutability
// bifurcation").
type DataItem struct {
	header
	dataType UserDataType

	i64  int64          // Integer
	f32  float32        // FloatHalf, FloatStandard
	f64  float64        // FloatDouble
	b    bool           // Boolean
	sim  uint8          // Simple
	text string         // TextString
	texts []string      // TextStringList
	bytes []byte        // ByteString
	byteSegs [][]byte   // ByteStringList
	arr  []*DataItem     // Array
	named map[string]*DataItem   // NamedMap
	namedOrder []string          // NamedMap insertion order (best-effort; no ordering guarantee per spec §1)
	indexed map[int64]*DataItem  // IndexedMap
	indexedOrder []int64
}

// DataType returns the variant discriminant for the item.
func (d *DataItem) DataType() UserDataType { return d.dataType }

// AsInteger returns the payload of an INTEGER item.
func (d *DataItem) AsInteger() int64 { return d.i64 }

// AsFloat returns the payload of a FLOAT_HALF, FLOAT_STANDARD or
// FLOAT_DOUBLE item, always widened to float64.
func (d *DataItem) AsFloat() float64 {
	switch d.dataType {
	case FloatHalf, FloatStandard:
		return float64(d.f32)
	case FloatDouble:
		return d.f64
	default:
		return 0
	}
}

// AsFloat32 returns the raw float32 payload of a FLOAT_HALF or
// FLOAT_STANDARD item.
func (d *DataItem) AsFloat32() float32 { return d.f32 }

// AsBool returns the payload of a BOOLEAN item, and false for NULL and
// UNDEFINED per spec §3.2.
func (d *DataItem) AsBool() bool {
	switch d.dataType {
	case Boolean:
		return d.b
	default:
		return false
	}
}

// AsSimple returns the payload of a SIMPLE item.
func (d *DataItem) AsSimple() uint8 { return d.sim }

// AsText returns the payload of a TEXT_STRING item.
func (d *DataItem) AsText() string { return d.text }

// AsTextList returns the segments of a TEXT_STRING_LIST item.
func (d *DataItem) AsTextList() []string { return d.texts }

// AsBytes returns the payload of a BYTE_STRING item.
func (d *DataItem) AsBytes() []byte { return d.bytes }

// AsByteSegments returns the segments of a BYTE_STRING_LIST item.
func (d *DataItem) AsByteSegments() [][]byte { return d.byteSegs }

// AsArray returns the elements of an ARRAY item.
func (d *DataItem) AsArray() []*DataItem { return d.arr }

// NamedMapKeys returns the keys of a NAMED_MAP item. Order reflects
// construction/decode order but carries no semantic guarantee (spec §1
// non-goal: "preservation of CBOR map-key insertion order").
func (d *DataItem) NamedMapKeys() []string { return d.namedOrder }

// NamedMapGet looks up a key in a NAMED_MAP item.
func (d *DataItem) NamedMapGet(key string) (*DataItem, bool) {
	v, ok := d.named[key]
	return v, ok
}

// NamedMapLen returns the number of entries in a NAMED_MAP item.
func (d *DataItem) NamedMapLen() int { return len(d.named) }

// IndexedMapKeys returns the keys of an INDEXED_MAP item.
func (d *DataItem) IndexedMapKeys() []int64 { return d.indexedOrder }

// IndexedMapGet looks up a key in an INDEXED_MAP item.
func (d *DataItem) IndexedMapGet(key int64) (*DataItem, bool) {
	v, ok := d.indexed[key]
	return v, ok
}

// IndexedMapLen returns the number of entries in an INDEXED_MAP item.
func (d *DataItem) IndexedMapLen() int { return len(d.indexed) }

// NamedMapSet inserts or replaces a key in a mutable NAMED_MAP item. It
// panics if called on an immutable item, e.g. one produced by a decoder
// (spec §5, "decoded items expose immutable views and are safe to share").
func (d *DataItem) NamedMapSet(key string, value *DataItem) {
	if !d.mutable {
		panic("cbor: NamedMapSet called on an immutable data item")
	}
	if _, exists := d.named[key]; !exists {
		d.namedOrder = append(d.namedOrder, key)
	}
	d.named[key] = value
}

// IndexedMapSet inserts or replaces a key in a mutable INDEXED_MAP item. It
// panics if called on an immutable item.
func (d *DataItem) IndexedMapSet(key int64, value *DataItem) {
	if !d.mutable {
		panic("cbor: IndexedMapSet called on an immutable data item")
	}
	if _, exists := d.indexed[key]; !exists {
		d.indexedOrder = append(d.indexedOrder, key)
	}
	d.indexed[key] = value
}

// ArrayAppend appends an element to a mutable ARRAY item. It panics if
// called on an immutable item.
func (d *DataItem) ArrayAppend(value *DataItem) {
	if !d.mutable {
		panic("cbor: ArrayAppend called on an immutable data item")
	}
	d.arr = append(d.arr, value)
}
