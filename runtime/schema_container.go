package cbor

import "math"

// arraySchemaNode implements the ARRAY schema data type (spec §4.3.2).
type arraySchemaNode struct {
	common
	values               schemaNode
	minLength, maxLength int
}

func (b *schemaBuildCtx) buildArraySchema(m *DataItem, path string) (schemaNode, error) {
	n := &arraySchemaNode{maxLength: math.MaxInt32}
	if v, ok := fieldInt(m, "length"); ok {
		n.minLength, n.maxLength = int(v), int(v)
	}
	if v, ok := fieldInt(m, "minLength"); ok {
		n.minLength = int(v)
	}
	if v, ok := fieldInt(m, "maxLength"); ok {
		n.maxLength = int(v)
	}
	if n.minLength > n.maxLength || n.minLength < 0 {
		return nil, invalidSchema(path, "array schema length range is empty")
	}
	valuesItem, ok := fieldItem(m, "entries")
	if !ok || valuesItem.DataType() != NamedMap {
		return nil, invalidSchema(path, `array schema requires an "entries" node`)
	}
	child, err := b.recursiveBuild(valuesItem, childPath(path, "entries"))
	if err != nil {
		return nil, err
	}
	n.values = child
	return n, nil
}

func (n *arraySchemaNode) duplicate() schemaNode {
	d := &arraySchemaNode{values: n.values.duplicate(), minLength: n.minLength, maxLength: n.maxLength}
	d.copyParamsFrom(&n.common)
	return d
}

func (n *arraySchemaNode) schemaDataType() SchemaDataType { return SchemaArray }

func (n *arraySchemaNode) createDefault(includeAll bool) *DataItem {
	item := (&Factory{}).CreateArray(n.tagValues, false)
	for i := 0; i < n.minLength; i++ {
		item.ArrayAppend(n.values.createDefault(includeAll))
	}
	return item
}

func (n *arraySchemaNode) validate(item *DataItem, tokenized, recursive bool, sink WarningSink, path string) bool {
	if item.DataType() != Array {
		warn(sink, path, "expected ARRAY, found %s", item.DataType())
		return false
	}
	elems := item.AsArray()
	if len(elems) < n.minLength || len(elems) > n.maxLength {
		warn(sink, path, "array length %d out of range [%d, %d]", len(elems), n.minLength, n.maxLength)
		return false
	}
	if !recursive {
		return true
	}
	ok := true
	for i, e := range elems {
		if !n.values.validate(e, tokenized, true, sink, indexPath(path, i)) {
			ok = false
		}
	}
	return ok
}

func (n *arraySchemaNode) expand(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, true, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	out := (&Factory{}).CreateArray(item.tags, false)
	for i, e := range item.AsArray() {
		v := n.values.expand(e, sink, indexPath(path, i))
		if v.DecodeStatus() == FailedSchema {
			return v
		}
		out.ArrayAppend(v)
	}
	return out
}

func (n *arraySchemaNode) tokenize(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, false, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	out := (&Factory{}).CreateArray(item.tags, false)
	for i, e := range item.AsArray() {
		v := n.values.tokenize(e, sink, indexPath(path, i))
		if v.DecodeStatus() == FailedSchema {
			return v
		}
		out.ArrayAppend(v)
	}
	return out
}

// mapSchemaNode implements the MAP schema data type (spec §4.3.2): a
// NAMED_MAP with opaque keys and every value conforming to entries.
type mapSchemaNode struct {
	common
	values schemaNode
}

func (b *schemaBuildCtx) buildMapSchema(m *DataItem, path string) (schemaNode, error) {
	valuesItem, ok := fieldItem(m, "entries")
	if !ok || valuesItem.DataType() != NamedMap {
		return nil, invalidSchema(path, `map schema requires an "entries" node`)
	}
	child, err := b.recursiveBuild(valuesItem, childPath(path, "entries"))
	if err != nil {
		return nil, err
	}
	return &mapSchemaNode{values: child}, nil
}

func (n *mapSchemaNode) duplicate() schemaNode {
	d := &mapSchemaNode{values: n.values.duplicate()}
	d.copyParamsFrom(&n.common)
	return d
}

func (n *mapSchemaNode) schemaDataType() SchemaDataType { return SchemaMap }

func (n *mapSchemaNode) createDefault(includeAll bool) *DataItem {
	return (&Factory{}).CreateNamedMap(n.tagValues, false)
}

func (n *mapSchemaNode) validate(item *DataItem, tokenized, recursive bool, sink WarningSink, path string) bool {
	if item.DataType() == EmptyMap {
		return true
	}
	if item.DataType() != NamedMap {
		warn(sink, path, "expected NAMED_MAP, found %s", item.DataType())
		return false
	}
	if !recursive {
		return true
	}
	ok := true
	for _, k := range item.NamedMapKeys() {
		v, _ := item.NamedMapGet(k)
		if !n.values.validate(v, tokenized, true, sink, childPath(path, k)) {
			ok = false
		}
	}
	return ok
}

func (n *mapSchemaNode) expand(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, true, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	out := (&Factory{}).CreateNamedMap(item.tags, false)
	if item.DataType() == EmptyMap {
		return out
	}
	for _, k := range item.NamedMapKeys() {
		v, _ := item.NamedMapGet(k)
		ev := n.values.expand(v, sink, childPath(path, k))
		if ev.DecodeStatus() == FailedSchema {
			return ev
		}
		out.NamedMapSet(k, ev)
	}
	return out
}

func (n *mapSchemaNode) tokenize(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, false, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	out := (&Factory{}).CreateNamedMap(item.tags, false)
	if item.DataType() == EmptyMap {
		return out
	}
	for _, k := range item.NamedMapKeys() {
		v, _ := item.NamedMapGet(k)
		tv := n.values.tokenize(v, sink, childPath(path, k))
		if tv.DecodeStatus() == FailedSchema {
			return tv
		}
		out.NamedMapSet(k, tv)
	}
	return out
}

func (n *arraySchemaNode) commonPtr() *common { return &n.common }

func (n *mapSchemaNode) commonPtr() *common { return &n.common }
