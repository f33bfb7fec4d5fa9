package cbor

import (
	"math"
	"strconv"
	"strings"
)

// booleanSchemaNode implements the BOOLEAN schema data type (spec §4.3.1).
type booleanSchemaNode struct {
	common
	defaultValue bool
}

func buildBooleanSchema(m *DataItem, path string) (schemaNode, error) {
	n := &booleanSchemaNode{}
	n.defaultValue = fieldBool(m, "default", false)
	return n, nil
}

func (n *booleanSchemaNode) duplicate() schemaNode {
	d := &booleanSchemaNode{defaultValue: n.defaultValue}
	d.copyParamsFrom(&n.common)
	return d
}

func (n *booleanSchemaNode) schemaDataType() SchemaDataType { return SchemaBoolean }

func (n *booleanSchemaNode) createDefault(includeAll bool) *DataItem {
	return (&Factory{}).CreateBoolean(n.defaultValue, n.tagValues)
}

func (n *booleanSchemaNode) validate(item *DataItem, tokenized, recursive bool, sink WarningSink, path string) bool {
	if item.DataType() != Boolean {
		warn(sink, path, "expected BOOLEAN, found %s", item.DataType())
		return false
	}
	return true
}

func (n *booleanSchemaNode) expand(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, true, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	return item
}

func (n *booleanSchemaNode) tokenize(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, false, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	return item
}

// integerSchemaNode implements the INTEGER schema data type (spec §4.3.1).
type integerSchemaNode struct {
	common
	minValue, maxValue         int64
	excludeMin, excludeMax     bool
	defaultValue               int64
}

func buildIntegerSchema(m *DataItem, path string) (schemaNode, error) {
	n := &integerSchemaNode{minValue: schemaMinIntegerValue, maxValue: schemaMaxIntegerValue}
	if v, ok := fieldInt(m, "minValue"); ok {
		n.minValue = v
	}
	if v, ok := fieldInt(m, "maxValue"); ok {
		n.maxValue = v
	}
	n.excludeMin = fieldBool(m, "excludeMin", false)
	n.excludeMax = fieldBool(m, "excludeMax", false)
	if n.minValue < schemaMinIntegerValue || n.maxValue > schemaMaxIntegerValue {
		return nil, invalidSchema(path, "integer range exceeds the +/-2^53 domain limit")
	}
	lo, hi := n.effectiveRange()
	if lo > hi {
		return nil, invalidSchema(path, "integer schema range is empty")
	}
	if v, ok := fieldInt(m, "default"); ok {
		n.defaultValue = v
	} else {
		n.defaultValue = lo
	}
	if n.defaultValue < lo || n.defaultValue > hi {
		return nil, invalidSchema(path, "integer default value is out of range")
	}
	return n, nil
}

func (n *integerSchemaNode) effectiveRange() (int64, int64) {
	lo, hi := n.minValue, n.maxValue
	if n.excludeMin {
		lo++
	}
	if n.excludeMax {
		hi--
	}
	return lo, hi
}

func (n *integerSchemaNode) duplicate() schemaNode {
	d := *n
	d.copyParamsFrom(&n.common)
	return &d
}

func (n *integerSchemaNode) schemaDataType() SchemaDataType { return SchemaInteger }

func (n *integerSchemaNode) createDefault(includeAll bool) *DataItem {
	return (&Factory{}).CreateInteger(n.defaultValue, n.tagValues)
}

func (n *integerSchemaNode) validate(item *DataItem, tokenized, recursive bool, sink WarningSink, path string) bool {
	if item.DataType() != Integer {
		warn(sink, path, "expected INTEGER, found %s", item.DataType())
		return false
	}
	lo, hi := n.effectiveRange()
	v := item.AsInteger()
	if v < lo || v > hi {
		warn(sink, path, "integer value %d out of range [%d, %d]", v, lo, hi)
		return false
	}
	return true
}

func (n *integerSchemaNode) expand(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, true, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	return item
}

func (n *integerSchemaNode) tokenize(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, false, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	return item
}

// numberSchemaNode implements the NUMBER schema data type (spec §4.3.1),
// grounded on NumberSchemaNode.java.
type numberSchemaNode struct {
	common
	precision              string // "half" | "standard" | "double"
	minValue, maxValue     float64
	excludeMin, excludeMax bool
	defaultValue           float64
}

func buildNumberSchema(m *DataItem, path string) (schemaNode, error) {
	n := &numberSchemaNode{precision: "double", minValue: math.Inf(-1), maxValue: math.Inf(1)}
	if p, ok := fieldString(m, "precision"); ok {
		switch p {
		case "half", "standard", "double":
			n.precision = p
		default:
			return nil, invalidSchema(path, "unrecognised number precision %q", p)
		}
	}
	precisionLimit := math.Inf(1)
	if n.precision == "half" {
		precisionLimit = schemaMaxHalfFloat
	}
	if v, ok := fieldFloat(m, "minValue"); ok {
		n.minValue = v
	} else {
		n.minValue = -precisionLimit
	}
	if v, ok := fieldFloat(m, "maxValue"); ok {
		n.maxValue = v
	} else {
		n.maxValue = precisionLimit
	}
	if math.Abs(n.minValue) > precisionLimit || math.Abs(n.maxValue) > precisionLimit {
		return nil, invalidSchema(path, "number range exceeds the %s precision domain", n.precision)
	}
	n.excludeMin = fieldBool(m, "excludeMin", false)
	n.excludeMax = fieldBool(m, "excludeMax", false)
	if n.minValue > n.maxValue {
		return nil, invalidSchema(path, "number schema range is empty")
	}
	if v, ok := fieldFloat(m, "default"); ok {
		n.defaultValue = v
	} else {
		n.defaultValue = n.minValue
	}
	if math.IsNaN(n.defaultValue) || math.IsInf(n.defaultValue, 0) {
		return nil, invalidSchema(path, "number default must be finite")
	}
	if !n.rangeOK(n.defaultValue) {
		return nil, invalidSchema(path, "number default value is out of range")
	}
	return n, nil
}

func (n *numberSchemaNode) rangeOK(v float64) bool {
	if n.excludeMin && v <= n.minValue {
		return false
	}
	if !n.excludeMin && v < n.minValue {
		return false
	}
	if n.excludeMax && v >= n.maxValue {
		return false
	}
	if !n.excludeMax && v > n.maxValue {
		return false
	}
	return true
}

func (n *numberSchemaNode) duplicate() schemaNode {
	d := *n
	d.copyParamsFrom(&n.common)
	return &d
}

func (n *numberSchemaNode) schemaDataType() SchemaDataType { return SchemaNumber }

func (n *numberSchemaNode) createDefault(includeAll bool) *DataItem {
	switch n.precision {
	case "half":
		return (&Factory{}).CreateHalfFloat(float32(n.defaultValue), n.tagValues)
	case "standard":
		return (&Factory{}).CreateStandardFloat(float32(n.defaultValue), n.tagValues)
	default:
		return (&Factory{}).CreateDoubleFloat(n.defaultValue, n.tagValues)
	}
}

func (n *numberSchemaNode) convert(item *DataItem) (float64, bool) {
	switch item.DataType() {
	case FloatHalf, FloatStandard, FloatDouble:
		return item.AsFloat(), true
	case Integer:
		return float64(item.AsInteger()), true
	default:
		return math.NaN(), false
	}
}

func (n *numberSchemaNode) validate(item *DataItem, tokenized, recursive bool, sink WarningSink, path string) bool {
	v, ok := n.convert(item)
	if !ok {
		warn(sink, path, "expected a numeric value, found %s", item.DataType())
		return false
	}
	if math.IsNaN(v) || !n.rangeOK(v) {
		warn(sink, path, "numeric value %v out of range [%v, %v]", v, n.minValue, n.maxValue)
		return false
	}
	return true
}

func (n *numberSchemaNode) expand(item *DataItem, sink WarningSink, path string) *DataItem {
	v, ok := n.convert(item)
	if !ok || !n.rangeOK(v) || math.IsNaN(v) {
		warn(sink, path, "cannot expand invalid numeric value")
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	return (&Factory{}).CreateDoubleFloat(v, item.tags)
}

func (n *numberSchemaNode) tokenize(item *DataItem, sink WarningSink, path string) *DataItem {
	v, ok := n.convert(item)
	if !ok || !n.rangeOK(v) || math.IsNaN(v) {
		warn(sink, path, "cannot tokenize invalid numeric value")
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	switch n.precision {
	case "half":
		return (&Factory{}).CreateHalfFloat(float32(v), item.tags)
	case "standard":
		return (&Factory{}).CreateStandardFloat(float32(v), item.tags)
	default:
		return (&Factory{}).CreateDoubleFloat(v, item.tags)
	}
}

// textStringSchemaNode implements the TEXT_STRING schema data type
// (spec §4.3.1).
type textStringSchemaNode struct {
	common
	minLength, maxLength int
	defaultValue         string
}

func buildTextStringSchema(m *DataItem, path string) (schemaNode, error) {
	n := &textStringSchemaNode{maxLength: math.MaxInt32}
	if v, ok := fieldInt(m, "minLength"); ok {
		n.minLength = int(v)
	}
	if v, ok := fieldInt(m, "maxLength"); ok {
		n.maxLength = int(v)
	}
	if n.minLength > n.maxLength {
		return nil, invalidSchema(path, "text string schema range is empty")
	}
	if v, ok := fieldString(m, "default"); ok {
		n.defaultValue = v
	}
	if l := len(n.defaultValue); l < n.minLength || l > n.maxLength {
		return nil, invalidSchema(path, "text string default length out of range")
	}
	return n, nil
}

func (n *textStringSchemaNode) duplicate() schemaNode {
	d := *n
	d.copyParamsFrom(&n.common)
	return &d
}

func (n *textStringSchemaNode) schemaDataType() SchemaDataType { return SchemaTextString }

func (n *textStringSchemaNode) createDefault(includeAll bool) *DataItem {
	return (&Factory{}).CreateTextString(n.defaultValue, n.tagValues)
}

func (n *textStringSchemaNode) textOf(item *DataItem) (string, bool) {
	switch item.DataType() {
	case TextString:
		return item.AsText(), true
	case TextStringList:
		return strings.Join(item.AsTextList(), ""), true
	default:
		return "", false
	}
}

func (n *textStringSchemaNode) validate(item *DataItem, tokenized, recursive bool, sink WarningSink, path string) bool {
	s, ok := n.textOf(item)
	if !ok {
		warn(sink, path, "expected TEXT_STRING, found %s", item.DataType())
		return false
	}
	l := len(s)
	if l < n.minLength || l > n.maxLength {
		warn(sink, path, "text string length %d out of range [%d, %d]", l, n.minLength, n.maxLength)
		return false
	}
	return true
}

func (n *textStringSchemaNode) expand(item *DataItem, sink WarningSink, path string) *DataItem {
	s, ok := n.textOf(item)
	if !ok || !n.validate(item, true, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	return (&Factory{}).CreateTextString(s, item.tags)
}

func (n *textStringSchemaNode) tokenize(item *DataItem, sink WarningSink, path string) *DataItem {
	return n.expand(item, sink, path)
}

// byteStringSchemaNode implements the "encoded" (BYTE_STRING) schema data
// type (spec §4.3.1): accepts byte-shaped items or Base64-URL text and
// transparently decodes text-form input before range checking.
type byteStringSchemaNode struct {
	common
	minLength, maxLength int
}

func buildByteStringSchema(m *DataItem, path string) (schemaNode, error) {
	n := &byteStringSchemaNode{maxLength: math.MaxInt32}
	if v, ok := fieldInt(m, "minLength"); ok {
		n.minLength = int(v)
	}
	if v, ok := fieldInt(m, "maxLength"); ok {
		n.maxLength = int(v)
	}
	if n.minLength > n.maxLength {
		return nil, invalidSchema(path, "byte string schema range is empty")
	}
	return n, nil
}

func (n *byteStringSchemaNode) duplicate() schemaNode {
	d := *n
	d.copyParamsFrom(&n.common)
	return &d
}

func (n *byteStringSchemaNode) schemaDataType() SchemaDataType { return SchemaByteString }

func (n *byteStringSchemaNode) createDefault(includeAll bool) *DataItem {
	return (&Factory{}).CreateByteString(make([]byte, n.minLength), n.tagValues)
}

func (n *byteStringSchemaNode) bytesOf(item *DataItem) ([]byte, bool) {
	switch item.DataType() {
	case ByteString:
		return item.AsBytes(), true
	case ByteStringList:
		var joined []byte
		for _, seg := range item.AsByteSegments() {
			joined = append(joined, seg...)
		}
		return joined, true
	case TextString:
		decoded, err := decodeBase64URLTolerant(item.AsText())
		if err != nil {
			return nil, false
		}
		return decoded, true
	default:
		return nil, false
	}
}

func (n *byteStringSchemaNode) validate(item *DataItem, tokenized, recursive bool, sink WarningSink, path string) bool {
	b, ok := n.bytesOf(item)
	if !ok {
		warn(sink, path, "expected BYTE_STRING or Base64-URL text, found %s", item.DataType())
		return false
	}
	l := len(b)
	if l < n.minLength || l > n.maxLength {
		warn(sink, path, "byte string length %d out of range [%d, %d]", l, n.minLength, n.maxLength)
		return false
	}
	return true
}

func (n *byteStringSchemaNode) expand(item *DataItem, sink WarningSink, path string) *DataItem {
	b, ok := n.bytesOf(item)
	if !ok || !n.validate(item, true, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	return (&Factory{}).CreateByteString(b, item.tags)
}

func (n *byteStringSchemaNode) tokenize(item *DataItem, sink WarningSink, path string) *DataItem {
	return n.expand(item, sink, path)
}

// enumeratedSchemaNode implements the ENUMERATED schema data type
// (spec §4.3.1): a bijection between text identifiers and non-zero
// integer tokens, with token 0 / "unknown" reserved as the extensible
// fallback.
type enumeratedSchemaNode struct {
	common
	final        bool
	textToToken  map[string]int64
	tokenToText  map[int64]string
	defaultText  string
}

func buildEnumeratedSchema(m *DataItem, path string) (schemaNode, error) {
	n := &enumeratedSchemaNode{
		final:       fieldBool(m, "final", false),
		textToToken: map[string]int64{},
		tokenToText: map[int64]string{},
	}
	valuesItem, ok := fieldItem(m, "values")
	if !ok || valuesItem.DataType() != NamedMap {
		return nil, invalidSchema(path, `enumerated schema requires a "values" named map`)
	}
	for _, key := range valuesItem.NamedMapKeys() {
		if key == "unknown" {
			return nil, invalidSchema(path, `"unknown" is a reserved enumerated identifier`)
		}
		tokItem, _ := valuesItem.NamedMapGet(key)
		if tokItem.DataType() != Integer {
			return nil, invalidSchema(childPath(path, key), "enumerated token must be an integer")
		}
		tok := tokItem.AsInteger()
		if tok == 0 {
			return nil, invalidSchema(childPath(path, key), "token 0 is reserved for \"unknown\"")
		}
		if _, dup := n.tokenToText[tok]; dup {
			return nil, invalidSchema(childPath(path, key), "duplicate enumerated token %d", tok)
		}
		n.textToToken[key] = tok
		n.tokenToText[tok] = key
	}
	n.textToToken["unknown"] = 0
	n.tokenToText[0] = "unknown"
	defaultText, ok := fieldString(m, "default")
	if !ok {
		return nil, invalidSchema(path, `enumerated schema requires a "default" field`)
	}
	if defaultText == "unknown" {
		return nil, invalidSchema(path, `"unknown" cannot be the enumerated default`)
	}
	if _, exists := n.textToToken[defaultText]; !exists {
		return nil, invalidSchema(path, "enumerated default %q is not in the value bijection", defaultText)
	}
	n.defaultText = defaultText
	return n, nil
}

func (n *enumeratedSchemaNode) duplicate() schemaNode {
	d := &enumeratedSchemaNode{final: n.final, defaultText: n.defaultText,
		textToToken: map[string]int64{}, tokenToText: map[int64]string{}}
	for k, v := range n.textToToken {
		d.textToToken[k] = v
	}
	for k, v := range n.tokenToText {
		d.tokenToText[k] = v
	}
	d.copyParamsFrom(&n.common)
	return d
}

func (n *enumeratedSchemaNode) schemaDataType() SchemaDataType { return SchemaEnumerated }

func (n *enumeratedSchemaNode) createDefault(includeAll bool) *DataItem {
	return (&Factory{}).CreateTextString(n.defaultText, n.tagValues)
}

func (n *enumeratedSchemaNode) validate(item *DataItem, tokenized, recursive bool, sink WarningSink, path string) bool {
	if tokenized {
		if item.DataType() != Integer {
			warn(sink, path, "expected an integer token, found %s", item.DataType())
			return false
		}
		if _, ok := n.tokenToText[item.AsInteger()]; !ok {
			if n.final {
				warn(sink, path, "unrecognised enumerated token %d", item.AsInteger())
				return false
			}
		}
		return true
	}
	if item.DataType() != TextString {
		warn(sink, path, "expected TEXT_STRING, found %s", item.DataType())
		return false
	}
	if _, ok := n.textToToken[item.AsText()]; !ok && n.final {
		warn(sink, path, "unrecognised enumerated identifier %q", item.AsText())
		return false
	}
	return true
}

func (n *enumeratedSchemaNode) expand(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, true, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	text, ok := n.tokenToText[item.AsInteger()]
	if !ok {
		text = "unknown"
	}
	return (&Factory{}).CreateTextString(text, item.tags)
}

func (n *enumeratedSchemaNode) tokenize(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, false, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	tok, ok := n.textToToken[item.AsText()]
	if !ok {
		tok = 0
	}
	return (&Factory{}).CreateInteger(tok, item.tags)
}

// parseDecimalKey parses a decimal-string map key for TOKENIZABLE_OBJECT
// carriage over JSON (spec §4.3.3, §8.2), rejecting a leading '+' and the
// non-canonical "-0" form so the string<->integer mapping is a bijection.
func parseDecimalKey(s string) (int64, bool) {
	if s == "" || s[0] == '+' {
		return 0, false
	}
	if s == "-0" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (n *booleanSchemaNode) commonPtr() *common { return &n.common }

func (n *integerSchemaNode) commonPtr() *common { return &n.common }

func (n *numberSchemaNode) commonPtr() *common { return &n.common }

func (n *textStringSchemaNode) commonPtr() *common { return &n.common }

func (n *byteStringSchemaNode) commonPtr() *common { return &n.common }

func (n *enumeratedSchemaNode) commonPtr() *common { return &n.common }
