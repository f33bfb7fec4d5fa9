package cbor

import (
	"fmt"
	"log"
)

// SchemaDataType identifies which of the twelve schema node kinds a
// built schema node implements (spec §4.3).
type SchemaDataType int

const (
	SchemaBoolean SchemaDataType = iota
	SchemaInteger
	SchemaNumber
	SchemaTextString
	SchemaByteString
	SchemaEnumerated
	SchemaArray
	SchemaMap
	SchemaStandardObject
	SchemaTokenizableObject
	SchemaStructure
	SchemaSelection
)

func (t SchemaDataType) String() string {
	switch t {
	case SchemaBoolean:
		return "BOOLEAN"
	case SchemaInteger:
		return "INTEGER"
	case SchemaNumber:
		return "NUMBER"
	case SchemaTextString:
		return "TEXT_STRING"
	case SchemaByteString:
		return "BYTE_STRING"
	case SchemaEnumerated:
		return "ENUMERATED"
	case SchemaArray:
		return "ARRAY"
	case SchemaMap:
		return "MAP"
	case SchemaStandardObject:
		return "STANDARD_OBJECT"
	case SchemaTokenizableObject:
		return "TOKENIZABLE_OBJECT"
	case SchemaStructure:
		return "STRUCTURE"
	case SchemaSelection:
		return "SELECTION"
	default:
		return "UNKNOWN"
	}
}

// WarningSink receives human-readable schema validation warnings tagged
// with the hierarchical dotted path that produced them (spec §4.3,
// "Error reporting"). A nil sink suppresses warnings without affecting
// return values.
type WarningSink interface {
	Warnf(path, format string, args ...any)
}

// StdWarningSink adapts the standard library's log package to
// WarningSink, mirroring the teacher's own reliance on stdlib logging
// rather than a structured-logging library (SPEC_FULL §4.4).
type StdWarningSink struct {
	Logger *log.Logger
}

// NewStdWarningSink returns a WarningSink that writes to log.Default().
func NewStdWarningSink() *StdWarningSink {
	return &StdWarningSink{Logger: log.Default()}
}

func (s *StdWarningSink) Warnf(path, format string, args ...any) {
	if s == nil || s.Logger == nil {
		return
	}
	s.Logger.Printf("%s : %s", path, fmt.Sprintf(format, args...))
}

func warn(sink WarningSink, path, format string, args ...any) {
	if sink == nil {
		return
	}
	sink.Warnf(path, format, args...)
}

func childPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

// schemaNode is the common interface implemented by all twelve schema
// data types (spec §4.3, "Every schema node exposes four operations").
type schemaNode interface {
	duplicate() schemaNode
	createDefault(includeAll bool) *DataItem
	validate(item *DataItem, tokenized, recursive bool, sink WarningSink, path string) bool
	expand(item *DataItem, sink WarningSink, path string) *DataItem
	tokenize(item *DataItem, sink WarningSink, path string) *DataItem
	schemaDataType() SchemaDataType
	commonPtr() *common
}

// common holds the schema-builder-assigned attributes shared by every
// node kind (spec §4.3, "Common options parsed by the builder"),
// grounded on SchemaNodeCore.java's private field set.
type common struct {
	name        string
	description string
	typeName    string
	tagValues   []int32
	tokenValue  *int64
	optional    bool
}

func (c *common) copyParamsFrom(src *common) {
	c.name = src.name
	c.description = src.description
	c.typeName = src.typeName
	c.tokenValue = src.tokenValue
	c.optional = src.optional
	if src.tagValues != nil {
		c.tagValues = append([]int32(nil), src.tagValues...)
	} else {
		c.tagValues = nil
	}
}

// Domain limits shared across leaf schema nodes, per SchemaNodeCore.java.
const (
	schemaMaxIntegerValue = int64(1) << 53
	schemaMinIntegerValue = -(int64(1) << 53)
	schemaMaxHalfFloat    = 65504.0
)

func invalidSchema(path, format string, args ...any) error {
	return invalidSchemaf(path, format, args...)
}

func fieldString(m *DataItem, key string) (string, bool) {
	v, ok := m.NamedMapGet(key)
	if !ok || v.DataType() != TextString {
		return "", false
	}
	return v.AsText(), true
}

func fieldBool(m *DataItem, key string, def bool) bool {
	v, ok := m.NamedMapGet(key)
	if !ok || v.DataType() != Boolean {
		return def
	}
	return v.AsBool()
}

func fieldInt(m *DataItem, key string) (int64, bool) {
	v, ok := m.NamedMapGet(key)
	if !ok || v.DataType() != Integer {
		return 0, false
	}
	return v.AsInteger(), true
}

func fieldFloat(m *DataItem, key string) (float64, bool) {
	v, ok := m.NamedMapGet(key)
	if !ok {
		return 0, false
	}
	switch v.DataType() {
	case Integer:
		return float64(v.AsInteger()), true
	case FloatHalf, FloatStandard, FloatDouble:
		return v.AsFloat(), true
	default:
		return 0, false
	}
}

func fieldItem(m *DataItem, key string) (*DataItem, bool) {
	return m.NamedMapGet(key)
}

func fieldTags(m *DataItem) []int32 {
	v, ok := m.NamedMapGet("tagValues")
	if !ok || v.DataType() != Array {
		return nil
	}
	var tags []int32
	for _, e := range v.AsArray() {
		if e.DataType() == Integer {
			tags = append(tags, int32(e.AsInteger()))
		}
	}
	return tags
}

func processCommonOptions(c *common, m *DataItem) {
	if d, ok := fieldString(m, "description"); ok {
		c.description = d
	}
	c.tagValues = fieldTags(m)
}
