package cbor

// structureSchemaNode implements the STRUCTURE schema data type
// (spec §4.3.4): a record whose tokenised form is a positional ARRAY
// indexed by a dense "index" attribute on each record entry.
type structureSchemaNode struct {
	common
	final   bool
	records []objectProperty // token field reused to carry the positional index
}

func (b *schemaBuildCtx) buildStructureSchema(m *DataItem, path string) (schemaNode, error) {
	recordsItem, ok := fieldItem(m, "records")
	if !ok || (recordsItem.DataType() != NamedMap && recordsItem.DataType() != EmptyMap) {
		return nil, invalidSchema(path, `structure schema requires a "records" named map`)
	}
	var records []objectProperty
	seen := map[int64]bool{}
	if recordsItem.DataType() == NamedMap {
		for _, name := range recordsItem.NamedMapKeys() {
			def, _ := recordsItem.NamedMapGet(name)
			if def.DataType() != NamedMap {
				return nil, invalidSchema(childPath(path, name), "record definition must be a named map")
			}
			idx, ok := fieldInt(def, "index")
			if !ok {
				return nil, invalidSchema(childPath(path, name), `record requires an "index"`)
			}
			if seen[idx] {
				return nil, invalidSchema(childPath(path, name), "duplicate record index %d", idx)
			}
			seen[idx] = true
			child, err := b.recursiveBuild(def, childPath(path, name))
			if err != nil {
				return nil, err
			}
			records = append(records, objectProperty{
				name:     name,
				schema:   child,
				required: fieldBool(def, "required", false),
				token:    idx,
				index:    int(idx),
			})
		}
	}
	n := len(records)
	for i := 0; i < n; i++ {
		if !seen[int64(i)] {
			return nil, invalidSchema(path, "record indices must form a permutation of [0, %d)", n)
		}
	}
	return &structureSchemaNode{final: fieldBool(m, "final", false), records: records}, nil
}

func (n *structureSchemaNode) duplicate() schemaNode {
	d := &structureSchemaNode{final: n.final, records: append([]objectProperty(nil), n.records...)}
	d.copyParamsFrom(&n.common)
	return d
}

func (n *structureSchemaNode) schemaDataType() SchemaDataType { return SchemaStructure }

func (n *structureSchemaNode) createDefault(includeAll bool) *DataItem {
	item := (&Factory{}).CreateNamedMap(n.tagValues, false)
	for _, r := range n.records {
		if includeAll || r.required {
			item.NamedMapSet(r.name, r.schema.createDefault(includeAll))
		}
	}
	return item
}

func (n *structureSchemaNode) byIndex(i int) (objectProperty, bool) {
	for _, r := range n.records {
		if r.index == i {
			return r, true
		}
	}
	return objectProperty{}, false
}

func (n *structureSchemaNode) validate(item *DataItem, tokenized, recursive bool, sink WarningSink, path string) bool {
	if !tokenized {
		if item.DataType() != NamedMap && item.DataType() != EmptyMap {
			warn(sink, path, "expected NAMED_MAP, found %s", item.DataType())
			return false
		}
		ok := true
		for _, r := range n.records {
			v, present := item.NamedMapGet(r.name)
			if !present {
				if r.required {
					warn(sink, path, "missing required record %q", r.name)
					ok = false
				}
				continue
			}
			if recursive && !r.schema.validate(v, false, true, sink, childPath(path, r.name)) {
				ok = false
			}
		}
		return ok
	}
	if item.DataType() != Array {
		warn(sink, path, "expected ARRAY, found %s", item.DataType())
		return false
	}
	elems := item.AsArray()
	nWant := len(n.records)
	if n.final && len(elems) != nWant {
		warn(sink, path, "tokenised structure length %d does not match %d", len(elems), nWant)
		return false
	}
	// Non-final structures accept a short array: missing trailing positions
	// are synthesised as UNDEFINED by the per-slot loop below.
	ok := true
	for i := 0; i < nWant; i++ {
		r, _ := n.byIndex(i)
		var slot *DataItem
		if i < len(elems) {
			slot = elems[i]
		} else {
			slot = (&Factory{}).CreateUndefined(nil)
		}
		absent := slot.DataType() == Null || slot.DataType() == Undefined
		if absent {
			if !r.required {
				continue
			}
			warn(sink, indexPath(path, i), "missing required record %q", r.name)
			ok = false
			continue
		}
		if recursive && !r.schema.validate(slot, true, true, sink, indexPath(path, i)) {
			ok = false
		}
	}
	return ok
}

func (n *structureSchemaNode) expand(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, true, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	out := (&Factory{}).CreateNamedMap(item.tags, false)
	elems := item.AsArray()
	for i := 0; i < len(n.records); i++ {
		r, _ := n.byIndex(i)
		var slot *DataItem
		if i < len(elems) {
			slot = elems[i]
		} else {
			slot = (&Factory{}).CreateUndefined(nil)
		}
		if slot.DataType() == Null || slot.DataType() == Undefined {
			continue
		}
		ev := r.schema.expand(slot, sink, indexPath(path, i))
		if ev.DecodeStatus() == FailedSchema {
			return ev
		}
		out.NamedMapSet(r.name, ev)
	}
	return out
}

func (n *structureSchemaNode) tokenize(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, false, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	out := (&Factory{}).CreateArray(item.tags, false)
	for i := 0; i < len(n.records); i++ {
		r, _ := n.byIndex(i)
		v, present := item.NamedMapGet(r.name)
		if !present {
			out.ArrayAppend((&Factory{}).CreateUndefined(nil))
			continue
		}
		tv := r.schema.tokenize(v, sink, childPath(path, r.name))
		if tv.DecodeStatus() == FailedSchema {
			return tv
		}
		out.ArrayAppend(tv)
	}
	return out
}

func (n *structureSchemaNode) commonPtr() *common { return &n.common }
