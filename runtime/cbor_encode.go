package cbor

import "math"

// AppendCBOR appends the CBOR encoding of item to b, implementing spec
// §4.1.1. Tags are emitted in list order (leftmost first, so the rightmost
// tag binds most closely to the payload). Every primary value, including
// negative integers, uses the shortest head form that fits.
func AppendCBOR(b []byte, item *DataItem) []byte {
	b = appendTags(b, item.tags)
	return appendPayload(b, item)
}

func appendTags(b []byte, tags []int32) []byte {
	for _, t := range tags {
		b = appendHead(b, majorTypeTag, uint64(uint32(t)))
	}
	return b
}

func appendPayload(b []byte, item *DataItem) []byte {
	switch item.dataType {
	case Integer:
		v := item.i64
		if v < 0 {
			n := ^uint64(v)
			return appendHead(b, majorTypeNegInt, n)
		}
		return appendHead(b, majorTypeUint, uint64(v))

	case FloatHalf:
		bits := float32ToHalfBits(item.f32)
		b = append(b, makeByte(majorTypeExtension, extInfoFloatHalf))
		return appendUint16Raw(b, bits)

	case FloatStandard:
		bits := math.Float32bits(item.f32)
		b = append(b, makeByte(majorTypeExtension, extInfoFloatSingle))
		return appendUint32Raw(b, bits)

	case FloatDouble:
		bits := math.Float64bits(item.f64)
		b = append(b, makeByte(majorTypeExtension, extInfoFloatDouble))
		return appendUint64Raw(b, bits)

	case Boolean:
		if item.b {
			return append(b, makeByte(majorTypeExtension, extInfoBoolTrue))
		}
		return append(b, makeByte(majorTypeExtension, extInfoBoolFalse))

	case Null:
		return append(b, makeByte(majorTypeExtension, extInfoNull))

	case Undefined:
		return append(b, makeByte(majorTypeExtension, extInfoUndefined))

	case Simple:
		return appendHead(b, majorTypeExtension, uint64(item.sim))

	case TextString:
		return appendTextChunk(b, item.text)

	case TextStringList:
		b = appendIndefiniteHead(b, majorTypeText)
		for _, s := range item.texts {
			b = appendTextChunk(b, s)
		}
		return AppendBreak(b)

	case ByteString:
		return appendByteChunk(b, item.bytes)

	case ByteStringList:
		b = appendIndefiniteHead(b, majorTypeBytes)
		for _, s := range item.byteSegs {
			b = appendByteChunk(b, s)
		}
		return AppendBreak(b)

	case Array:
		if item.indefiniteLength {
			b = appendIndefiniteHead(b, majorTypeArray)
			for _, e := range item.arr {
				b = AppendCBOR(b, e)
			}
			return AppendBreak(b)
		}
		b = appendHead(b, majorTypeArray, uint64(len(item.arr)))
		for _, e := range item.arr {
			b = AppendCBOR(b, e)
		}
		return b

	case NamedMap:
		if item.indefiniteLength {
			b = appendIndefiniteHead(b, majorTypeMap)
			for _, k := range item.namedOrder {
				b = appendTextChunk(b, k)
				b = AppendCBOR(b, item.named[k])
			}
			return AppendBreak(b)
		}
		b = appendHead(b, majorTypeMap, uint64(len(item.namedOrder)))
		for _, k := range item.namedOrder {
			b = appendTextChunk(b, k)
			b = AppendCBOR(b, item.named[k])
		}
		return b

	case IndexedMap:
		if item.indefiniteLength {
			b = appendIndefiniteHead(b, majorTypeMap)
			for _, k := range item.indexedOrder {
				b = AppendCBOR(b, &DataItem{header: newHeader(nil, true), dataType: Integer, i64: k})
				b = AppendCBOR(b, item.indexed[k])
			}
			return AppendBreak(b)
		}
		b = appendHead(b, majorTypeMap, uint64(len(item.indexedOrder)))
		for _, k := range item.indexedOrder {
			b = AppendCBOR(b, &DataItem{header: newHeader(nil, true), dataType: Integer, i64: k})
			b = AppendCBOR(b, item.indexed[k])
		}
		return b

	case EmptyMap:
		return appendHead(b, majorTypeMap, 0)

	default:
		return b
	}
}

func appendTextChunk(b []byte, s string) []byte {
	b = appendHead(b, majorTypeText, uint64(len(s)))
	return append(b, s...)
}

func appendByteChunk(b []byte, data []byte) []byte {
	b = appendHead(b, majorTypeBytes, uint64(len(data)))
	return append(b, data...)
}

func appendUint16Raw(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}

func appendUint32Raw(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func appendUint64Raw(b []byte, v uint64) []byte {
	return append(b,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
