// Package cbor is the runtime support library behind github.com/zynaptic/relay.cbor.
//
// It holds the CBOR (RFC 7049) and JSON (RFC 8259) codecs, the tagged-variant
// DataItem value model both codecs read and write, and the schema engine that
// validates, defaults and tokenises/expands documents built from that model.
//
// The codec halves follow a consistent family-of-functions convention:
//
//   - AppendXxxx(b []byte, ...) []byte appends a CBOR head or primitive to b.
//   - readHead(b []byte) (major, indefinite, value, rest, err) consumes one
//     CBOR head from the front of b.
package cbor

import "math"

// recursionLimit bounds decode/schema recursion depth against adversarial input.
const recursionLimit = 100000

// CBOR major types (top 3 bits of the initial byte).
const (
	majorTypeUint      = 0 // unsigned integer
	majorTypeNegInt    = 1 // negative integer
	majorTypeBytes     = 2 // byte string
	majorTypeText      = 3 // text string (UTF-8)
	majorTypeArray     = 4 // array
	majorTypeMap       = 5 // map
	majorTypeTag       = 6 // semantic tag
	majorTypeExtension = 7 // floats, simple values, booleans, null, undefined, break
)

// Additional-info values (bottom 5 bits of the initial byte).
const (
	addInfoUint8      = 24 // 1-byte unsigned follows
	addInfoUint16     = 25 // 2-byte unsigned follows
	addInfoUint32     = 26 // 4-byte unsigned follows
	addInfoUint64     = 27 // 8-byte unsigned follows
	addInfoIndefinite = 31 // indefinite length, or break stop for major type 7
)

// Major type 7 (extension) additional-info assignments.
const (
	extInfoBoolFalse   = 20
	extInfoBoolTrue    = 21
	extInfoNull        = 22
	extInfoUndefined   = 23
	extInfoFloatHalf   = 25
	extInfoFloatSingle = 26
	extInfoFloatDouble = 27
	extInfoBreak       = 31
)

// maxHeadValue is the largest value representable in [0, 2^31) that this
// library's length, size and tag fields will accept, per spec §6.1.
const maxHeadValue = 1<<31 - 1

func makeByte(major, addInfo uint8) byte {
	return byte((major << 5) | (addInfo & 0x1f))
}

func getMajorType(b byte) uint8 { return (b >> 5) & 0x07 }
func getAddInfo(b byte) uint8   { return b & 0x1f }

const (
	byteValueCount = math.MaxUint8 + 1

	float16ExpBits  = 5
	float16MantBits = 10

	float32ExpBits  = 8
	float32MantBits = 23

	float16SignShift        = float16ExpBits + float16MantBits
	float16ExpShift         = float16MantBits
	float16ExpMask   uint16 = math.MaxUint16 >> (16 - float16ExpBits)
	float16MantMask  uint16 = math.MaxUint16 >> (16 - float16MantBits)
	float16ExpBias          = int(float16ExpMask >> 1)

	float32SignShift        = float32ExpBits + float32MantBits
	float32ExpShift         = float32MantBits
	float32ExpMask   uint32 = math.MaxUint8
	float32MantMask  uint32 = math.MaxUint32 >> (32 - float32MantBits)
	float32ExpBias          = int(float32ExpMask >> 1)
	float32HiddenBit uint32 = float32MantMask + 1

	float32ToFloat16MantShift  = float32MantBits - float16MantBits
	float32ToFloat16RoundShift = float32ToFloat16MantShift - 1
)
