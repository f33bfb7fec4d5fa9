package cbor

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// decodeItemFromReader decodes exactly one CBOR item from r, reading only
// the bytes that item's wire encoding requires (spec §5, "Decoders read
// byte-by-byte or short-chunked"). A non-nil error indicates a genuine
// stream I/O failure — including a clean end of stream when no bytes of a
// new item have yet been read — never a wire-format defect, which is
// instead carried in the returned item's DecodeStatus exactly as it is for
// DecodeCBOR.
func decodeItemFromReader(r *bufio.Reader, depth int) (*DataItem, error) {
	if depth > recursionLimit {
		return invalidDataItem(Invalid), nil
	}
	var tags []int32
	for {
		peeked, err := r.Peek(1)
		if err != nil {
			return nil, err
		}
		if getMajorType(peeked[0]) != majorTypeTag {
			break
		}
		_, indefinite, value, err := readHeadR(r)
		if err != nil {
			return classifyHeadErr(err)
		}
		if indefinite {
			return invalidDataItem(Invalid), nil
		}
		n, ok := checkedLength(value)
		if !ok {
			return invalidDataItem(Unsupported), nil
		}
		tags = append(tags, int32(n))
	}
	item, err := decodePayloadFromReader(r, depth)
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		item.tags = tags
	}
	return item, nil
}

func invalidDataItem(status DecodeStatus) *DataItem {
	item := (&Factory{}).CreateInvalidItem(status)
	item.mutable = false
	return item
}

// classifyHeadErr distinguishes a malformed-but-complete head (a reserved
// additional-info value) from a genuine short read, since only the former
// is a wire-format defect representable as an Invalid DecodeStatus.
func classifyHeadErr(err error) (*DataItem, error) {
	var ai InvalidAdditionalInfoError
	if errors.As(err, &ai) {
		return invalidDataItem(Invalid), nil
	}
	return nil, err
}

// readHeadR is the io.Reader analogue of readHead: it consumes exactly the
// bytes of one CBOR head from r.
func readHeadR(r *bufio.Reader) (major uint8, indefinite bool, value uint64, err error) {
	b0, err := r.ReadByte()
	if err != nil {
		return 0, false, 0, err
	}
	major = getMajorType(b0)
	info := getAddInfo(b0)
	switch {
	case info <= 23:
		return major, false, uint64(info), nil
	case info == addInfoUint8:
		b1, err := r.ReadByte()
		if err != nil {
			return 0, false, 0, err
		}
		return major, false, uint64(b1), nil
	case info == addInfoUint16:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, false, 0, err
		}
		return major, false, uint64(binary.BigEndian.Uint16(buf[:])), nil
	case info == addInfoUint32:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, false, 0, err
		}
		return major, false, uint64(binary.BigEndian.Uint32(buf[:])), nil
	case info == addInfoUint64:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, false, 0, err
		}
		return major, false, binary.BigEndian.Uint64(buf[:]), nil
	case info == addInfoIndefinite:
		return major, true, 0, nil
	default: // 28, 29, 30 are reserved
		return 0, false, 0, InvalidAdditionalInfoError{Major: major, Info: info}
	}
}

func decodePayloadFromReader(r *bufio.Reader, depth int) (*DataItem, error) {
	peeked, err := r.Peek(1)
	if err != nil {
		return nil, err
	}
	switch getMajorType(peeked[0]) {
	case majorTypeUint:
		return decodeUnsignedR(r)
	case majorTypeNegInt:
		return decodeNegativeR(r)
	case majorTypeBytes:
		return decodeByteStringR(r, depth)
	case majorTypeText:
		return decodeTextStringR(r, depth)
	case majorTypeArray:
		return decodeArrayR(r, depth)
	case majorTypeMap:
		return decodeMapR(r, depth)
	case majorTypeExtension:
		return decodeExtensionR(r)
	default:
		r.ReadByte()
		return invalidDataItem(Invalid), nil
	}
}

func decodeUnsignedR(r *bufio.Reader) (*DataItem, error) {
	_, indefinite, value, err := readHeadR(r)
	if err != nil {
		return classifyHeadErr(err)
	}
	if indefinite {
		return invalidDataItem(Invalid), nil
	}
	if value > math.MaxInt64 {
		return invalidDataItem(Unsupported), nil
	}
	item := (&Factory{}).CreateInteger(int64(value), nil)
	item.mutable = false
	item.status = Translatable
	return item, nil
}

func decodeNegativeR(r *bufio.Reader) (*DataItem, error) {
	_, indefinite, value, err := readHeadR(r)
	if err != nil {
		return classifyHeadErr(err)
	}
	if indefinite {
		return invalidDataItem(Invalid), nil
	}
	if value > math.MaxInt64 {
		return invalidDataItem(Unsupported), nil
	}
	v := int64(-1) - int64(value)
	item := (&Factory{}).CreateInteger(v, nil)
	item.mutable = false
	item.status = Translatable
	return item, nil
}

func decodeByteStringR(r *bufio.Reader, depth int) (*DataItem, error) {
	_, indefinite, value, err := readHeadR(r)
	if err != nil {
		return classifyHeadErr(err)
	}
	if indefinite {
		return decodeByteStringListR(r)
	}
	n, ok := checkedLength(value)
	if !ok {
		return invalidDataItem(Unsupported), nil
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	item := (&Factory{}).CreateByteString(data, nil)
	item.mutable = false
	item.status = Translatable
	return item, nil
}

func decodeByteStringListR(r *bufio.Reader) (*DataItem, error) {
	item := &DataItem{header: newHeader(nil, false), dataType: ByteStringList}
	item.indefiniteLength = true
	for {
		peeked, err := r.Peek(1)
		if err != nil {
			return nil, err
		}
		if getMajorType(peeked[0]) == majorTypeExtension && getAddInfo(peeked[0]) == extInfoBreak {
			r.ReadByte()
			break
		}
		if getMajorType(peeked[0]) != majorTypeBytes {
			return invalidDataItem(Invalid), nil
		}
		_, indefinite, value, err := readHeadR(r)
		if err != nil {
			return classifyHeadErr(err)
		}
		if indefinite {
			return invalidDataItem(Invalid), nil
		}
		n, ok := checkedLength(value)
		if !ok {
			return invalidDataItem(Unsupported), nil
		}
		seg := make([]byte, n)
		if _, err := io.ReadFull(r, seg); err != nil {
			return nil, err
		}
		item.byteSegs = append(item.byteSegs, seg)
	}
	item.status = Translatable
	return item, nil
}

func decodeTextStringR(r *bufio.Reader, depth int) (*DataItem, error) {
	_, indefinite, value, err := readHeadR(r)
	if err != nil {
		return classifyHeadErr(err)
	}
	if indefinite {
		return decodeTextStringListR(r)
	}
	n, ok := checkedLength(value)
	if !ok {
		return invalidDataItem(Unsupported), nil
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, err
	}
	if !isUTF8Valid(raw) {
		return invalidDataItem(Invalid), nil
	}
	item := (&Factory{}).CreateTextString(string(raw), nil)
	item.mutable = false
	item.status = Translatable
	return item, nil
}

func decodeTextStringListR(r *bufio.Reader) (*DataItem, error) {
	item := &DataItem{header: newHeader(nil, false), dataType: TextStringList}
	item.indefiniteLength = true
	for {
		peeked, err := r.Peek(1)
		if err != nil {
			return nil, err
		}
		if getMajorType(peeked[0]) == majorTypeExtension && getAddInfo(peeked[0]) == extInfoBreak {
			r.ReadByte()
			break
		}
		if getMajorType(peeked[0]) != majorTypeText {
			return invalidDataItem(Invalid), nil
		}
		_, indefinite, value, err := readHeadR(r)
		if err != nil {
			return classifyHeadErr(err)
		}
		if indefinite {
			return invalidDataItem(Invalid), nil
		}
		n, ok := checkedLength(value)
		if !ok {
			return invalidDataItem(Unsupported), nil
		}
		raw := make([]byte, n)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, err
		}
		if !isUTF8Valid(raw) {
			return invalidDataItem(Invalid), nil
		}
		item.texts = append(item.texts, string(raw))
	}
	item.status = Translatable
	return item, nil
}

func decodeArrayR(r *bufio.Reader, depth int) (*DataItem, error) {
	_, indefinite, value, err := readHeadR(r)
	if err != nil {
		return classifyHeadErr(err)
	}
	item := &DataItem{header: newHeader(nil, false), dataType: Array}
	status := Translatable
	if indefinite {
		item.indefiniteLength = true
		for {
			peeked, err := r.Peek(1)
			if err != nil {
				return nil, err
			}
			if getMajorType(peeked[0]) == majorTypeExtension && getAddInfo(peeked[0]) == extInfoBreak {
				r.ReadByte()
				break
			}
			child, err := decodeItemFromReader(r, depth+1)
			if err != nil {
				return nil, err
			}
			status = Join(status, child.status)
			if status.IsFailure() {
				return invalidDataItem(status), nil
			}
			item.arr = append(item.arr, child)
		}
	} else {
		n, ok := checkedLength(value)
		if !ok {
			return invalidDataItem(Unsupported), nil
		}
		for i := 0; i < n; i++ {
			child, err := decodeItemFromReader(r, depth+1)
			if err != nil {
				return nil, err
			}
			status = Join(status, child.status)
			if status.IsFailure() {
				return invalidDataItem(status), nil
			}
			item.arr = append(item.arr, child)
		}
	}
	item.status = status
	return item, nil
}

func decodeMapR(r *bufio.Reader, depth int) (*DataItem, error) {
	_, indefinite, value, err := readHeadR(r)
	if err != nil {
		return classifyHeadErr(err)
	}

	var namedItem, indexedItem *DataItem
	status := Translatable
	shape := 0 // 0 unknown, 1 named, 2 indexed
	count := 0

	consumePair := func() error {
		keyItem, err := decodeItemFromReader(r, depth+1)
		if err != nil {
			return err
		}
		status = Join(status, keyItem.status)
		if status.IsFailure() {
			return nil
		}
		keyMismatch := false
		switch shape {
		case 0:
			switch keyItem.dataType {
			case TextString:
				shape = 1
				namedItem = &DataItem{header: newHeader(nil, false), dataType: NamedMap, named: map[string]*DataItem{}}
			case Integer:
				shape = 2
				indexedItem = &DataItem{header: newHeader(nil, false), dataType: IndexedMap, indexed: map[int64]*DataItem{}}
			default:
				keyMismatch = true
			}
		case 1:
			keyMismatch = keyItem.dataType != TextString
		case 2:
			keyMismatch = keyItem.dataType != Integer
		}
		valItem, err := decodeItemFromReader(r, depth+1)
		if err != nil {
			return err
		}
		status = Join(status, valItem.status)
		if keyMismatch {
			status = Join(status, Unsupported)
		}
		if status.IsFailure() {
			return nil
		}
		count++
		if shape == 1 {
			if _, exists := namedItem.named[keyItem.text]; exists {
				status = Join(status, WellFormed)
			} else {
				namedItem.namedOrder = append(namedItem.namedOrder, keyItem.text)
				namedItem.named[keyItem.text] = valItem
			}
		} else {
			if _, exists := indexedItem.indexed[keyItem.i64]; exists {
				status = Join(status, WellFormed)
			} else {
				indexedItem.indexedOrder = append(indexedItem.indexedOrder, keyItem.i64)
				indexedItem.indexed[keyItem.i64] = valItem
			}
		}
		return nil
	}

	if indefinite {
		for {
			peeked, err := r.Peek(1)
			if err != nil {
				return nil, err
			}
			if getMajorType(peeked[0]) == majorTypeExtension && getAddInfo(peeked[0]) == extInfoBreak {
				r.ReadByte()
				break
			}
			if err := consumePair(); err != nil {
				return nil, err
			}
			if status.IsFailure() {
				return invalidDataItem(status), nil
			}
		}
	} else {
		n, ok := checkedLength(value)
		if !ok {
			return invalidDataItem(Unsupported), nil
		}
		for i := 0; i < n; i++ {
			if err := consumePair(); err != nil {
				return nil, err
			}
			if status.IsFailure() {
				return invalidDataItem(status), nil
			}
		}
	}

	if count == 0 {
		empty := (&Factory{}).CreateEmptyMap(nil)
		empty.status = status
		empty.mutable = false
		return empty, nil
	}
	if shape == 1 {
		namedItem.indefiniteLength = indefinite
		namedItem.status = status
		return namedItem, nil
	}
	indexedItem.indefiniteLength = indefinite
	indexedItem.status = status
	return indexedItem, nil
}

func decodeExtensionR(r *bufio.Reader) (*DataItem, error) {
	b0, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	info := getAddInfo(b0)
	switch {
	case info == extInfoBoolFalse:
		item := (&Factory{}).CreateBoolean(false, nil)
		item.mutable = false
		item.status = Translatable
		return item, nil
	case info == extInfoBoolTrue:
		item := (&Factory{}).CreateBoolean(true, nil)
		item.mutable = false
		item.status = Translatable
		return item, nil
	case info == extInfoNull:
		item := (&Factory{}).CreateNull(nil)
		item.mutable = false
		item.status = Translatable
		return item, nil
	case info == extInfoUndefined:
		item := (&Factory{}).CreateUndefined(nil)
		item.mutable = false
		item.status = Translatable
		return item, nil
	case info == extInfoFloatHalf:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		bits := uint16(buf[0])<<8 | uint16(buf[1])
		item := (&Factory{}).CreateHalfFloat(halfBitsToFloat32(bits), nil)
		item.mutable = false
		item.status = Translatable
		return item, nil
	case info == extInfoFloatSingle:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		bits := binary.BigEndian.Uint32(buf[:])
		item := (&Factory{}).CreateStandardFloat(math.Float32frombits(bits), nil)
		item.mutable = false
		item.status = Translatable
		return item, nil
	case info == extInfoFloatDouble:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		bits := binary.BigEndian.Uint64(buf[:])
		item := (&Factory{}).CreateDoubleFloat(math.Float64frombits(bits), nil)
		item.mutable = false
		item.status = Translatable
		return item, nil
	case info == extInfoBreak:
		return invalidDataItem(Invalid), nil
	case info >= 28 && info <= 30:
		return invalidDataItem(Invalid), nil
	case info <= 19:
		item := &DataItem{header: newHeader(nil, false), dataType: Simple, sim: uint8(info)}
		item.status = WellFormed
		return item, nil
	case info == addInfoUint8:
		b1, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		item := &DataItem{header: newHeader(nil, false), dataType: Simple, sim: b1}
		item.status = WellFormed
		return item, nil
	default:
		return invalidDataItem(Invalid), nil
	}
}
