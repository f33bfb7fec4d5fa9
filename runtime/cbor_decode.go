package cbor

import (
	"math"
)

// DecodeCBOR decodes one CBOR item from the front of b, returning the
// decoded item, the remaining bytes, and consuming bytes as described in
// spec §4.1.2. The decoder never returns a Go error for wire-format
// failures (spec §7.2): malformed input produces an item whose DecodeStatus
// carries INVALID, UNSUPPORTED, WELL_FORMED, or the join of its children.
// Clean decodes produce TRANSLATABLE.
func DecodeCBOR(b []byte) (item *DataItem, rest []byte) {
	return decodeItem(b, 0)
}

func invalidItem(rest []byte, status DecodeStatus) (*DataItem, []byte) {
	item := (&Factory{}).CreateInvalidItem(status)
	item.mutable = false
	return item, rest
}

func decodeItem(b []byte, depth int) (*DataItem, []byte) {
	if depth > recursionLimit {
		return invalidItem(nil, Invalid)
	}
	if len(b) < 1 {
		return invalidItem(b, Invalid)
	}

	// Consume the leading tag stack: iterate while major type is 6,
	// accumulating each tag value (spec §4.1.2, "leading tag stack").
	var tags []int32
	cur := b
	for len(cur) > 0 && getMajorType(cur[0]) == majorTypeTag {
		major, indefinite, value, next, err := readHead(cur)
		_ = major
		if err != nil {
			return invalidItem(next, Invalid)
		}
		if indefinite {
			return invalidItem(next, Invalid)
		}
		n, ok := checkedLength(value)
		if !ok {
			return invalidItem(next, Unsupported)
		}
		tags = append(tags, int32(n))
		cur = next
	}
	if len(cur) < 1 {
		return invalidItem(cur, Invalid)
	}

	item, rest := decodePayload(cur, depth)
	if len(tags) > 0 {
		item.tags = tags
	}
	return item, rest
}

func decodePayload(b []byte, depth int) (*DataItem, []byte) {
	major := getMajorType(b[0])
	switch major {
	case majorTypeUint:
		return decodeUnsigned(b)
	case majorTypeNegInt:
		return decodeNegative(b)
	case majorTypeBytes:
		return decodeByteString(b, depth)
	case majorTypeText:
		return decodeTextString(b, depth)
	case majorTypeArray:
		return decodeArray(b, depth)
	case majorTypeMap:
		return decodeMap(b, depth)
	case majorTypeExtension:
		return decodeExtension(b)
	default:
		return invalidItem(b[1:], Invalid)
	}
}

func decodeUnsigned(b []byte) (*DataItem, []byte) {
	_, indefinite, value, rest, err := readHead(b)
	if err != nil {
		return invalidItem(rest, Invalid)
	}
	if indefinite {
		return invalidItem(rest, Invalid)
	}
	if value > math.MaxInt64 {
		return invalidItem(rest, Unsupported)
	}
	item := (&Factory{}).CreateInteger(int64(value), nil)
	item.mutable = false
	item.status = Translatable
	return item, rest
}

func decodeNegative(b []byte) (*DataItem, []byte) {
	_, indefinite, value, rest, err := readHead(b)
	if err != nil {
		return invalidItem(rest, Invalid)
	}
	if indefinite {
		return invalidItem(rest, Invalid)
	}
	// value is n in CBOR's -1-n encoding. n must not exceed 2^63-1 or the
	// represented value would fall outside signed 64-bit domain (SPEC_FULL
	// §9's symmetric restriction of the negative-integer open question).
	if value > math.MaxInt64 {
		return invalidItem(rest, Unsupported)
	}
	v := int64(-1) - int64(value)
	item := (&Factory{}).CreateInteger(v, nil)
	item.mutable = false
	item.status = Translatable
	return item, rest
}

func decodeByteString(b []byte, depth int) (*DataItem, []byte) {
	_, indefinite, value, rest, err := readHead(b)
	if err != nil {
		return invalidItem(rest, Invalid)
	}
	if indefinite {
		return decodeByteStringList(rest, depth)
	}
	n, ok := checkedLength(value)
	if !ok {
		return invalidItem(rest, Unsupported)
	}
	if len(rest) < n {
		return invalidItem(nil, Invalid)
	}
	data := make([]byte, n)
	copy(data, rest[:n])
	item := (&Factory{}).CreateByteString(data, nil)
	item.mutable = false
	item.status = Translatable
	return item, rest[n:]
}

func decodeByteStringList(b []byte, depth int) (*DataItem, []byte) {
	item := &DataItem{header: newHeader(nil, false), dataType: ByteStringList}
	item.indefiniteLength = true
	status := Translatable
	cur := b
	for {
		if len(cur) < 1 {
			return invalidItem(nil, Invalid)
		}
		if getMajorType(cur[0]) == majorTypeExtension && getAddInfo(cur[0]) == extInfoBreak {
			cur = cur[1:]
			break
		}
		if getMajorType(cur[0]) != majorTypeBytes {
			return invalidItem(cur, Invalid)
		}
		_, indefinite, value, next, err := readHead(cur)
		if err != nil {
			return invalidItem(next, Invalid)
		}
		if indefinite {
			// Nested indefinite-length segments are forbidden (spec §4.1.2).
			return invalidItem(next, Invalid)
		}
		n, ok := checkedLength(value)
		if !ok {
			return invalidItem(next, Unsupported)
		}
		if len(next) < n {
			return invalidItem(nil, Invalid)
		}
		seg := make([]byte, n)
		copy(seg, next[:n])
		item.byteSegs = append(item.byteSegs, seg)
		cur = next[n:]
	}
	item.status = status
	return item, cur
}

func decodeTextString(b []byte, depth int) (*DataItem, []byte) {
	_, indefinite, value, rest, err := readHead(b)
	if err != nil {
		return invalidItem(rest, Invalid)
	}
	if indefinite {
		return decodeTextStringList(rest, depth)
	}
	n, ok := checkedLength(value)
	if !ok {
		return invalidItem(rest, Unsupported)
	}
	if len(rest) < n {
		return invalidItem(nil, Invalid)
	}
	raw := rest[:n]
	if !isUTF8Valid(raw) {
		return invalidItem(rest[n:], Invalid)
	}
	s := string(raw)
	item := (&Factory{}).CreateTextString(s, nil)
	item.mutable = false
	item.status = Translatable
	return item, rest[n:]
}

func decodeTextStringList(b []byte, depth int) (*DataItem, []byte) {
	item := &DataItem{header: newHeader(nil, false), dataType: TextStringList}
	item.indefiniteLength = true
	cur := b
	for {
		if len(cur) < 1 {
			return invalidItem(nil, Invalid)
		}
		if getMajorType(cur[0]) == majorTypeExtension && getAddInfo(cur[0]) == extInfoBreak {
			cur = cur[1:]
			break
		}
		if getMajorType(cur[0]) != majorTypeText {
			return invalidItem(cur, Invalid)
		}
		_, indefinite, value, next, err := readHead(cur)
		if err != nil {
			return invalidItem(next, Invalid)
		}
		if indefinite {
			return invalidItem(next, Invalid)
		}
		n, ok := checkedLength(value)
		if !ok {
			return invalidItem(next, Unsupported)
		}
		if len(next) < n {
			return invalidItem(nil, Invalid)
		}
		raw := next[:n]
		if !isUTF8Valid(raw) {
			return invalidItem(next[n:], Invalid)
		}
		item.texts = append(item.texts, string(raw))
		cur = next[n:]
	}
	item.status = Translatable
	return item, cur
}

func decodeArray(b []byte, depth int) (*DataItem, []byte) {
	_, indefinite, value, rest, err := readHead(b)
	if err != nil {
		return invalidItem(rest, Invalid)
	}
	item := &DataItem{header: newHeader(nil, false), dataType: Array}
	status := Translatable
	cur := rest
	if indefinite {
		item.indefiniteLength = true
		for {
			if len(cur) < 1 {
				return invalidItem(nil, Invalid)
			}
			if getMajorType(cur[0]) == majorTypeExtension && getAddInfo(cur[0]) == extInfoBreak {
				cur = cur[1:]
				break
			}
			var child *DataItem
			child, cur = decodeItem(cur, depth+1)
			status = Join(status, child.status)
			if status.IsFailure() {
				return invalidItem(cur, status)
			}
			item.arr = append(item.arr, child)
		}
	} else {
		n, ok := checkedLength(value)
		if !ok {
			return invalidItem(rest, Unsupported)
		}
		for i := 0; i < n; i++ {
			var child *DataItem
			child, cur = decodeItem(cur, depth+1)
			status = Join(status, child.status)
			if status.IsFailure() {
				return invalidItem(cur, status)
			}
			item.arr = append(item.arr, child)
		}
	}
	item.status = status
	return item, cur
}

func decodeMap(b []byte, depth int) (*DataItem, []byte) {
	_, indefinite, value, rest, err := readHead(b)
	if err != nil {
		return invalidItem(rest, Invalid)
	}

	var namedItem, indexedItem *DataItem
	status := Translatable
	shape := 0 // 0 unknown, 1 named, 2 indexed
	count := 0

	consumePair := func(cur []byte) []byte {
		var keyItem, valItem *DataItem
		keyItem, cur = decodeItem(cur, depth+1)
		status = Join(status, keyItem.status)
		if status.IsFailure() {
			return cur
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
		valItem, cur = decodeItem(cur, depth+1)
		status = Join(status, valItem.status)
		if keyMismatch {
			status = Join(status, Unsupported)
		}
		if status.IsFailure() {
			return cur
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
		return cur
	}

	cur := rest
	if indefinite {
		for {
			if len(cur) < 1 {
				return invalidItem(nil, Invalid)
			}
			if getMajorType(cur[0]) == majorTypeExtension && getAddInfo(cur[0]) == extInfoBreak {
				cur = cur[1:]
				break
			}
			cur = consumePair(cur)
			if status.IsFailure() {
				return invalidItem(cur, status)
			}
		}
	} else {
		n, ok := checkedLength(value)
		if !ok {
			return invalidItem(rest, Unsupported)
		}
		for i := 0; i < n; i++ {
			cur = consumePair(cur)
			if status.IsFailure() {
				return invalidItem(cur, status)
			}
		}
	}

	if count == 0 {
		empty := (&Factory{}).CreateEmptyMap(nil)
		empty.status = status
		empty.mutable = false
		return empty, cur
	}
	if shape == 1 {
		namedItem.indefiniteLength = indefinite
		namedItem.status = status
		return namedItem, cur
	}
	indexedItem.indefiniteLength = indefinite
	indexedItem.status = status
	return indexedItem, cur
}

func decodeExtension(b []byte) (*DataItem, []byte) {
	info := getAddInfo(b[0])
	rest := b[1:]
	switch {
	case info == extInfoBoolFalse:
		item := (&Factory{}).CreateBoolean(false, nil)
		item.mutable = false
		item.status = Translatable
		return item, rest
	case info == extInfoBoolTrue:
		item := (&Factory{}).CreateBoolean(true, nil)
		item.mutable = false
		item.status = Translatable
		return item, rest
	case info == extInfoNull:
		item := (&Factory{}).CreateNull(nil)
		item.mutable = false
		item.status = Translatable
		return item, rest
	case info == extInfoUndefined:
		item := (&Factory{}).CreateUndefined(nil)
		item.mutable = false
		item.status = Translatable
		return item, rest
	case info == extInfoFloatHalf:
		if len(rest) < 2 {
			return invalidItem(nil, Invalid)
		}
		bits := uint16(rest[0])<<8 | uint16(rest[1])
		item := (&Factory{}).CreateHalfFloat(halfBitsToFloat32(bits), nil)
		item.mutable = false
		item.status = Translatable
		return item, rest[2:]
	case info == extInfoFloatSingle:
		if len(rest) < 4 {
			return invalidItem(nil, Invalid)
		}
		bits := uint32(rest[0])<<24 | uint32(rest[1])<<16 | uint32(rest[2])<<8 | uint32(rest[3])
		item := (&Factory{}).CreateStandardFloat(math.Float32frombits(bits), nil)
		item.mutable = false
		item.status = Translatable
		return item, rest[4:]
	case info == extInfoFloatDouble:
		if len(rest) < 8 {
			return invalidItem(nil, Invalid)
		}
		var bits uint64
		for i := 0; i < 8; i++ {
			bits = bits<<8 | uint64(rest[i])
		}
		item := (&Factory{}).CreateDoubleFloat(math.Float64frombits(bits), nil)
		item.mutable = false
		item.status = Translatable
		return item, rest[8:]
	case info == extInfoBreak:
		// A stray break outside an indefinite-length context.
		return invalidItem(rest, Invalid)
	case info >= 28 && info <= 30:
		return invalidItem(rest, Invalid)
	default: // 0..19, 32..255 via the multi-byte head forms
		_, indefinite, value, next, err := readHead(b)
		if err != nil {
			return invalidItem(next, Invalid)
		}
		if indefinite {
			return invalidItem(next, Invalid)
		}
		item := &DataItem{header: newHeader(nil, false), dataType: Simple, sim: uint8(value)}
		item.status = WellFormed
		return item, next
	}
}
