package cbor

import (
	"encoding/base64"
	"math"
	"strconv"
)

// AppendJSON appends the JSON encoding of item to b, implementing spec
// §4.2.1. When pretty is true, output uses tab indentation, a " : "
// key/value separator, and a trailing newline before each closing bracket;
// when false, output is compact with no inserted whitespace.
func AppendJSON(b []byte, item *DataItem, pretty bool) []byte {
	return appendJSONValue(b, item, pretty, 0)
}

func appendJSONValue(b []byte, item *DataItem, pretty bool, depth int) []byte {
	switch item.dataType {
	case Integer:
		return strconv.AppendInt(b, item.i64, 10)

	case FloatHalf, FloatStandard:
		return appendJSONFloat(b, float64(item.f32))

	case FloatDouble:
		return appendJSONFloat(b, item.f64)

	case Boolean:
		if item.b {
			return append(b, "true"...)
		}
		return append(b, "false"...)

	case Null, Undefined:
		return append(b, "null"...)

	case Simple:
		// SIMPLE is not JSON-expressible (spec §4.1's "not translatable to
		// JSON" note); render as null so the encoder never panics on it.
		return append(b, "null"...)

	case TextString:
		return appendJSONString(b, item.text)

	case TextStringList:
		var joined []byte
		for _, s := range item.texts {
			joined = append(joined, s...)
		}
		return appendJSONString(b, string(joined))

	case ByteString:
		return appendJSONString(b, base64.RawURLEncoding.EncodeToString(item.bytes))

	case ByteStringList:
		var joined []byte
		for _, s := range item.byteSegs {
			joined = append(joined, s...)
		}
		return appendJSONString(b, base64.RawURLEncoding.EncodeToString(joined))

	case Array:
		return appendJSONArray(b, item.arr, pretty, depth)

	case NamedMap:
		return appendJSONNamedMap(b, item.namedOrder, item.named, pretty, depth)

	case IndexedMap:
		return appendJSONIndexedMap(b, item.indexedOrder, item.indexed, pretty, depth)

	case EmptyMap:
		return append(b, "{}"...)

	default:
		return append(b, "null"...)
	}
}

func appendJSONFloat(b []byte, f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(b, "null"...)
	}
	return strconv.AppendFloat(b, f, 'g', -1, 64)
}

func appendIndent(b []byte, depth int) []byte {
	for i := 0; i < depth; i++ {
		b = append(b, '\t')
	}
	return b
}

func appendJSONArray(b []byte, items []*DataItem, pretty bool, depth int) []byte {
	if len(items) == 0 {
		return append(b, "[]"...)
	}
	b = append(b, '[')
	for i, e := range items {
		if i > 0 {
			b = append(b, ',')
		}
		if pretty {
			b = append(b, '\n')
			b = appendIndent(b, depth+1)
		}
		b = appendJSONValue(b, e, pretty, depth+1)
	}
	if pretty {
		b = append(b, '\n')
		b = appendIndent(b, depth)
	}
	return append(b, ']')
}

func appendJSONNamedMap(b []byte, order []string, m map[string]*DataItem, pretty bool, depth int) []byte {
	if len(order) == 0 {
		return append(b, "{}"...)
	}
	b = append(b, '{')
	for i, k := range order {
		if i > 0 {
			b = append(b, ',')
		}
		if pretty {
			b = append(b, '\n')
			b = appendIndent(b, depth+1)
		}
		b = appendJSONString(b, k)
		if pretty {
			b = append(b, " : "...)
		} else {
			b = append(b, ':')
		}
		b = appendJSONValue(b, m[k], pretty, depth+1)
	}
	if pretty {
		b = append(b, '\n')
		b = appendIndent(b, depth)
	}
	return append(b, '}')
}

func appendJSONIndexedMap(b []byte, order []int64, m map[int64]*DataItem, pretty bool, depth int) []byte {
	if len(order) == 0 {
		return append(b, "{}"...)
	}
	b = append(b, '{')
	for i, k := range order {
		if i > 0 {
			b = append(b, ',')
		}
		if pretty {
			b = append(b, '\n')
			b = appendIndent(b, depth+1)
		}
		b = appendJSONString(b, strconv.FormatInt(k, 10))
		if pretty {
			b = append(b, " : "...)
		} else {
			b = append(b, ':')
		}
		b = appendJSONValue(b, m[k], pretty, depth+1)
	}
	if pretty {
		b = append(b, '\n')
		b = appendIndent(b, depth)
	}
	return append(b, '}')
}

func appendJSONString(b []byte, s string) []byte {
	b = append(b, '"')
	for _, r := range s {
		switch r {
		case '"':
			b = append(b, '\\', '"')
		case '\\':
			b = append(b, '\\', '\\')
		case '\b':
			b = append(b, '\\', 'b')
		case '\f':
			b = append(b, '\\', 'f')
		case '\n':
			b = append(b, '\\', 'n')
		case '\r':
			b = append(b, '\\', 'r')
		case '\t':
			b = append(b, '\\', 't')
		default:
			b = append(b, string(r)...)
		}
	}
	return append(b, '"')
}
