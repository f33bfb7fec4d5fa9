package cbor

// selectionSchemaNode implements the SELECTION schema data type
// (spec §4.3.5): a discriminated union. Expanded form is a single-entry
// NAMED_MAP {identifier: value}; tokenised form is a two-element ARRAY
// [tokenInteger, value].
type selectionSchemaNode struct {
	common
	final         bool
	options       []objectProperty // token carries the format's discriminator token
	defaultFormat string
}

func (b *schemaBuildCtx) buildSelectionSchema(m *DataItem, path string) (schemaNode, error) {
	optsItem, ok := fieldItem(m, "formats")
	if !ok || optsItem.DataType() != NamedMap {
		return nil, invalidSchema(path, `selection schema requires a "formats" named map`)
	}
	var options []objectProperty
	seen := map[int64]bool{}
	for _, name := range optsItem.NamedMapKeys() {
		if name == "unknown" {
			return nil, invalidSchema(childPath(path, name), `"unknown" is a reserved selection identifier`)
		}
		def, _ := optsItem.NamedMapGet(name)
		if def.DataType() != NamedMap {
			return nil, invalidSchema(childPath(path, name), "format definition must be a named map")
		}
		tok, ok := fieldInt(def, "token")
		if !ok {
			return nil, invalidSchema(childPath(path, name), `format requires a "token"`)
		}
		if tok == 0 {
			return nil, invalidSchema(childPath(path, name), "token 0 is reserved for \"unknown\"")
		}
		if seen[tok] {
			return nil, invalidSchema(childPath(path, name), "duplicate format token %d", tok)
		}
		seen[tok] = true
		child, err := b.recursiveBuild(def, childPath(path, name))
		if err != nil {
			return nil, err
		}
		options = append(options, objectProperty{name: name, schema: child, token: tok})
	}
	defaultFormat, ok := fieldString(m, "default")
	if !ok {
		return nil, invalidSchema(path, `selection schema requires a "default" field`)
	}
	found := false
	for _, o := range options {
		if o.name == defaultFormat {
			found = true
			break
		}
	}
	if !found {
		return nil, invalidSchema(path, "selection schema default %q is not in the defined formats", defaultFormat)
	}
	return &selectionSchemaNode{final: fieldBool(m, "final", false), options: options, defaultFormat: defaultFormat}, nil
}

func (n *selectionSchemaNode) duplicate() schemaNode {
	d := &selectionSchemaNode{final: n.final, options: append([]objectProperty(nil), n.options...), defaultFormat: n.defaultFormat}
	d.copyParamsFrom(&n.common)
	return d
}

func (n *selectionSchemaNode) schemaDataType() SchemaDataType { return SchemaSelection }

func (n *selectionSchemaNode) byName(name string) (objectProperty, bool) {
	for _, o := range n.options {
		if o.name == name {
			return o, true
		}
	}
	return objectProperty{}, false
}

func (n *selectionSchemaNode) byToken(tok int64) (objectProperty, bool) {
	for _, o := range n.options {
		if o.token == tok {
			return o, true
		}
	}
	return objectProperty{}, false
}

func (n *selectionSchemaNode) createDefault(includeAll bool) *DataItem {
	item := (&Factory{}).CreateNamedMap(n.tagValues, false)
	opt, ok := n.byName(n.defaultFormat)
	if !ok {
		return item
	}
	item.NamedMapSet(opt.name, opt.schema.createDefault(includeAll))
	return item
}

func (n *selectionSchemaNode) validate(item *DataItem, tokenized, recursive bool, sink WarningSink, path string) bool {
	if !tokenized {
		if item.DataType() != NamedMap || item.NamedMapLen() != 1 {
			warn(sink, path, "expected a single-entry NAMED_MAP, found %s", item.DataType())
			return false
		}
		key := item.NamedMapKeys()[0]
		v, _ := item.NamedMapGet(key)
		if key == "unknown" {
			if n.final {
				warn(sink, path, "unknown selection discriminator on a final selection")
				return false
			}
			return true
		}
		opt, known := n.byName(key)
		if !known {
			if n.final {
				warn(sink, path, "unrecognised selection identifier %q", key)
				return false
			}
			return true
		}
		if recursive {
			return opt.schema.validate(v, false, true, sink, childPath(path, key))
		}
		return true
	}
	if item.DataType() != Array || len(item.AsArray()) != 2 {
		warn(sink, path, "expected a 2-element ARRAY, found %s", item.DataType())
		return false
	}
	elems := item.AsArray()
	if elems[0].DataType() != Integer {
		warn(sink, path, "selection token must be an integer")
		return false
	}
	tok := elems[0].AsInteger()
	if tok == 0 {
		if n.final {
			warn(sink, path, "unknown selection token on a final selection")
			return false
		}
		return true
	}
	opt, known := n.byToken(tok)
	if !known {
		if n.final {
			warn(sink, path, "unrecognised selection token %d", tok)
			return false
		}
		return true
	}
	if recursive {
		return opt.schema.validate(elems[1], true, true, sink, indexPath(path, 1))
	}
	return true
}

func (n *selectionSchemaNode) expand(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, true, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	elems := item.AsArray()
	tok := elems[0].AsInteger()
	out := (&Factory{}).CreateNamedMap(item.tags, false)
	if opt, known := n.byToken(tok); known {
		ev := opt.schema.expand(elems[1], sink, indexPath(path, 1))
		if ev.DecodeStatus() == FailedSchema {
			return ev
		}
		out.NamedMapSet(opt.name, ev)
		return out
	}
	out.NamedMapSet("unknown", (&Factory{}).CreateUndefined(nil))
	return out
}

func (n *selectionSchemaNode) tokenize(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, false, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	key := item.NamedMapKeys()[0]
	v, _ := item.NamedMapGet(key)
	out := (&Factory{}).CreateArray(item.tags, false)
	if opt, known := n.byName(key); known {
		tv := opt.schema.tokenize(v, sink, childPath(path, key))
		if tv.DecodeStatus() == FailedSchema {
			return tv
		}
		out.ArrayAppend((&Factory{}).CreateInteger(opt.token, nil))
		out.ArrayAppend(tv)
		return out
	}
	out.ArrayAppend((&Factory{}).CreateInteger(0, nil))
	out.ArrayAppend((&Factory{}).CreateUndefined(nil))
	return out
}

func (n *selectionSchemaNode) commonPtr() *common { return &n.common }
