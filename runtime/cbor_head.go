package cbor

import (
	"encoding/binary"
	"math"
)

// appendHead appends the minimal-length CBOR head (initial byte plus any
// following length bytes) for major type major carrying the non-negative
// value n, choosing the shortest of the 1/2/3/5/9 byte forms that fits, per
// spec §4.1.1.
func appendHead(b []byte, major uint8, n uint64) []byte {
	switch {
	case n <= 23:
		return append(b, makeByte(major, uint8(n)))
	case n <= math.MaxUint8:
		return append(b, makeByte(major, addInfoUint8), byte(n))
	case n <= math.MaxUint16:
		b = append(b, makeByte(major, addInfoUint16))
		return binary.BigEndian.AppendUint16(b, uint16(n))
	case n <= math.MaxUint32:
		b = append(b, makeByte(major, addInfoUint32))
		return binary.BigEndian.AppendUint32(b, uint32(n))
	default:
		b = append(b, makeByte(major, addInfoUint64))
		return binary.BigEndian.AppendUint64(b, n)
	}
}

// appendIndefiniteHead appends the single-byte indefinite-length marker for
// a container or string major type.
func appendIndefiniteHead(b []byte, major uint8) []byte {
	return append(b, makeByte(major, addInfoIndefinite))
}

// AppendBreak appends the CBOR break stop code that terminates an
// indefinite-length item.
func AppendBreak(b []byte) []byte {
	return append(b, makeByte(majorTypeExtension, extInfoBreak))
}

// readHead reads a CBOR initial byte and any following length bytes,
// returning the major type, whether it marked an indefinite-length item,
// the decoded value (meaningless when indefinite is true), and the
// remaining bytes (nil when b ends before the head does).
func readHead(b []byte) (major uint8, indefinite bool, value uint64, rest []byte, err error) {
	if len(b) < 1 {
		return 0, false, 0, nil, ErrShortBytes
	}
	major = getMajorType(b[0])
	info := getAddInfo(b[0])
	rest = b[1:]

	switch {
	case info <= 23:
		return major, false, uint64(info), rest, nil
	case info == addInfoUint8:
		if len(rest) < 1 {
			return 0, false, 0, nil, ErrShortBytes
		}
		return major, false, uint64(rest[0]), rest[1:], nil
	case info == addInfoUint16:
		if len(rest) < 2 {
			return 0, false, 0, nil, ErrShortBytes
		}
		return major, false, uint64(binary.BigEndian.Uint16(rest)), rest[2:], nil
	case info == addInfoUint32:
		if len(rest) < 4 {
			return 0, false, 0, nil, ErrShortBytes
		}
		return major, false, uint64(binary.BigEndian.Uint32(rest)), rest[4:], nil
	case info == addInfoUint64:
		if len(rest) < 8 {
			return 0, false, 0, nil, ErrShortBytes
		}
		return major, false, binary.BigEndian.Uint64(rest), rest[8:], nil
	case info == addInfoIndefinite:
		return major, true, 0, rest, nil
	default: // 28, 29, 30 are reserved
		return 0, false, 0, b, InvalidAdditionalInfoError{Major: major, Info: info}
	}
}

// checkedLength validates a decoded length/size value against the
// implementation's [0, 2^31) domain limit (spec §4.1.2, §6.1).
func checkedLength(n uint64) (int, bool) {
	if n > maxHeadValue {
		return 0, false
	}
	return int(n), true
}
