package cbor

// objectProperty describes one named property of an object/structure
// schema node (spec §4.3.3, §4.3.4).
type objectProperty struct {
	name     string
	schema   schemaNode
	required bool
	token    int64
	index    int
}

func (b *schemaBuildCtx) buildProperties(m *DataItem, path string, needsToken bool) ([]objectProperty, error) {
	propsItem, ok := fieldItem(m, "properties")
	if !ok || (propsItem.DataType() != NamedMap && propsItem.DataType() != EmptyMap) {
		return nil, invalidSchema(path, `object schema requires a "properties" named map`)
	}
	var props []objectProperty
	seenTokens := map[int64]bool{}
	if propsItem.DataType() == EmptyMap {
		return props, nil
	}
	for _, name := range propsItem.NamedMapKeys() {
		propDef, _ := propsItem.NamedMapGet(name)
		if propDef.DataType() != NamedMap {
			return nil, invalidSchema(childPath(path, name), "property definition must be a named map")
		}
		childSchema, err := b.recursiveBuild(propDef, childPath(path, name))
		if err != nil {
			return nil, err
		}
		p := objectProperty{
			name:     name,
			schema:   childSchema,
			required: fieldBool(propDef, "required", false),
		}
		if needsToken {
			tok, ok := fieldInt(propDef, "token")
			if !ok {
				return nil, invalidSchema(childPath(path, name), "tokenizable property requires a \"token\"")
			}
			if seenTokens[tok] {
				return nil, invalidSchema(childPath(path, name), "duplicate property token %d", tok)
			}
			seenTokens[tok] = true
			p.token = tok
		}
		props = append(props, p)
	}
	return props, nil
}

// standardObjectSchemaNode implements the STANDARD_OBJECT schema data
// type (spec §4.3.3): both tokenised and expanded forms are NAMED_MAP.
type standardObjectSchemaNode struct {
	common
	final      bool
	properties []objectProperty
}

func (b *schemaBuildCtx) buildStandardObjectSchema(m *DataItem, path string) (schemaNode, error) {
	props, err := b.buildProperties(m, path, false)
	if err != nil {
		return nil, err
	}
	return &standardObjectSchemaNode{final: fieldBool(m, "final", false), properties: props}, nil
}

func (n *standardObjectSchemaNode) duplicate() schemaNode {
	d := &standardObjectSchemaNode{final: n.final, properties: append([]objectProperty(nil), n.properties...)}
	d.copyParamsFrom(&n.common)
	return d
}

func (n *standardObjectSchemaNode) schemaDataType() SchemaDataType { return SchemaStandardObject }

func (n *standardObjectSchemaNode) createDefault(includeAll bool) *DataItem {
	item := (&Factory{}).CreateNamedMap(n.tagValues, false)
	for _, p := range n.properties {
		if includeAll || p.required {
			item.NamedMapSet(p.name, p.schema.createDefault(includeAll))
		}
	}
	return item
}

func (n *standardObjectSchemaNode) validate(item *DataItem, tokenized, recursive bool, sink WarningSink, path string) bool {
	if item.DataType() != NamedMap && item.DataType() != EmptyMap {
		warn(sink, path, "expected NAMED_MAP, found %s", item.DataType())
		return false
	}
	ok := true
	seen := map[string]bool{}
	if item.DataType() == NamedMap {
		for _, k := range item.NamedMapKeys() {
			seen[k] = true
		}
	}
	for _, p := range n.properties {
		v, present := item.NamedMapGet(p.name)
		if !present {
			if p.required {
				warn(sink, path, "missing required property %q", p.name)
				ok = false
			}
			continue
		}
		if recursive && !p.schema.validate(v, tokenized, true, sink, childPath(path, p.name)) {
			ok = false
		}
	}
	if n.final {
		for k := range seen {
			known := false
			for _, p := range n.properties {
				if p.name == k {
					known = true
					break
				}
			}
			if !known {
				warn(sink, path, "unrecognised property %q on a final object", k)
				ok = false
			}
		}
	}
	return ok
}

func (n *standardObjectSchemaNode) expand(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, true, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	out := (&Factory{}).CreateNamedMap(item.tags, false)
	for _, p := range n.properties {
		v, present := item.NamedMapGet(p.name)
		if !present {
			continue
		}
		ev := p.schema.expand(v, sink, childPath(path, p.name))
		if ev.DecodeStatus() == FailedSchema {
			return ev
		}
		out.NamedMapSet(p.name, ev)
	}
	return out
}

func (n *standardObjectSchemaNode) tokenize(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, false, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	out := (&Factory{}).CreateNamedMap(item.tags, false)
	for _, p := range n.properties {
		v, present := item.NamedMapGet(p.name)
		if !present {
			continue
		}
		tv := p.schema.tokenize(v, sink, childPath(path, p.name))
		if tv.DecodeStatus() == FailedSchema {
			return tv
		}
		out.NamedMapSet(p.name, tv)
	}
	return out
}

// tokenizableObjectSchemaNode implements the TOKENIZABLE_OBJECT schema
// data type (spec §4.3.3): expanded form is NAMED_MAP, tokenised form is
// INDEXED_MAP keyed by per-property token, with a decimal-string-keyed
// NAMED_MAP also accepted in tokenised position for JSON carriage.
type tokenizableObjectSchemaNode struct {
	common
	final      bool
	properties []objectProperty
}

func (b *schemaBuildCtx) buildTokenizableObjectSchema(m *DataItem, path string) (schemaNode, error) {
	props, err := b.buildProperties(m, path, true)
	if err != nil {
		return nil, err
	}
	return &tokenizableObjectSchemaNode{final: fieldBool(m, "final", false), properties: props}, nil
}

func (n *tokenizableObjectSchemaNode) duplicate() schemaNode {
	d := &tokenizableObjectSchemaNode{final: n.final, properties: append([]objectProperty(nil), n.properties...)}
	d.copyParamsFrom(&n.common)
	return d
}

func (n *tokenizableObjectSchemaNode) schemaDataType() SchemaDataType { return SchemaTokenizableObject }

func (n *tokenizableObjectSchemaNode) createDefault(includeAll bool) *DataItem {
	item := (&Factory{}).CreateNamedMap(n.tagValues, false)
	for _, p := range n.properties {
		if includeAll || p.required {
			item.NamedMapSet(p.name, p.schema.createDefault(includeAll))
		}
	}
	return item
}

func (n *tokenizableObjectSchemaNode) byToken(tok int64) (objectProperty, bool) {
	for _, p := range n.properties {
		if p.token == tok {
			return p, true
		}
	}
	return objectProperty{}, false
}

func (n *tokenizableObjectSchemaNode) validate(item *DataItem, tokenized, recursive bool, sink WarningSink, path string) bool {
	if !tokenized {
		if item.DataType() != NamedMap && item.DataType() != EmptyMap {
			warn(sink, path, "expected NAMED_MAP, found %s", item.DataType())
			return false
		}
		ok := true
		for _, p := range n.properties {
			v, present := item.NamedMapGet(p.name)
			if !present {
				if p.required {
					warn(sink, path, "missing required property %q", p.name)
					ok = false
				}
				continue
			}
			if recursive && !p.schema.validate(v, false, true, sink, childPath(path, p.name)) {
				ok = false
			}
		}
		return ok
	}
	// Tokenized: either an INDEXED_MAP, or a NAMED_MAP with decimal-string
	// keys accepted for JSON carriage (spec §4.3.3).
	switch item.DataType() {
	case IndexedMap:
		ok := true
		for _, tok := range item.IndexedMapKeys() {
			p, known := n.byToken(tok)
			if !known {
				if n.final {
					warn(sink, path, "unrecognised property token %d on a final object", tok)
					ok = false
				}
				continue
			}
			v, _ := item.IndexedMapGet(tok)
			if recursive && !p.schema.validate(v, true, true, sink, childPath(path, p.name)) {
				ok = false
			}
		}
		return n.checkRequiredTokens(item.IndexedMapKeys(), sink, path) && ok
	case NamedMap, EmptyMap:
		var toks []int64
		ok := true
		if item.DataType() == NamedMap {
			for _, k := range item.NamedMapKeys() {
				tok, valid := parseDecimalKey(k)
				if !valid {
					warn(sink, path, "invalid decimal token key %q", k)
					ok = false
					continue
				}
				toks = append(toks, tok)
				p, known := n.byToken(tok)
				if !known {
					if n.final {
						warn(sink, path, "unrecognised property token %d on a final object", tok)
						ok = false
					}
					continue
				}
				v, _ := item.NamedMapGet(k)
				if recursive && !p.schema.validate(v, true, true, sink, childPath(path, p.name)) {
					ok = false
				}
			}
		}
		return n.checkRequiredTokens(toks, sink, path) && ok
	default:
		warn(sink, path, "expected INDEXED_MAP or a decimal-keyed NAMED_MAP, found %s", item.DataType())
		return false
	}
}

func (n *tokenizableObjectSchemaNode) checkRequiredTokens(present []int64, sink WarningSink, path string) bool {
	seen := map[int64]bool{}
	for _, t := range present {
		seen[t] = true
	}
	ok := true
	for _, p := range n.properties {
		if p.required && !seen[p.token] {
			warn(sink, path, "missing required property token %d (%s)", p.token, p.name)
			ok = false
		}
	}
	return ok
}

func (n *tokenizableObjectSchemaNode) expand(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, true, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	out := (&Factory{}).CreateNamedMap(item.tags, false)
	switch item.DataType() {
	case IndexedMap:
		for _, tok := range item.IndexedMapKeys() {
			p, known := n.byToken(tok)
			if !known {
				continue
			}
			v, _ := item.IndexedMapGet(tok)
			ev := p.schema.expand(v, sink, childPath(path, p.name))
			if ev.DecodeStatus() == FailedSchema {
				return ev
			}
			out.NamedMapSet(p.name, ev)
		}
	case NamedMap:
		for _, k := range item.NamedMapKeys() {
			tok, valid := parseDecimalKey(k)
			if !valid {
				continue
			}
			p, known := n.byToken(tok)
			if !known {
				continue
			}
			v, _ := item.NamedMapGet(k)
			ev := p.schema.expand(v, sink, childPath(path, p.name))
			if ev.DecodeStatus() == FailedSchema {
				return ev
			}
			out.NamedMapSet(p.name, ev)
		}
	}
	return out
}

func (n *tokenizableObjectSchemaNode) tokenize(item *DataItem, sink WarningSink, path string) *DataItem {
	if !n.validate(item, false, false, sink, path) {
		return (&Factory{}).CreateInvalidItem(FailedSchema)
	}
	out := (&Factory{}).CreateIndexedMap(item.tags, false)
	for _, p := range n.properties {
		v, present := item.NamedMapGet(p.name)
		if !present {
			continue
		}
		tv := p.schema.tokenize(v, sink, childPath(path, p.name))
		if tv.DecodeStatus() == FailedSchema {
			return tv
		}
		out.IndexedMapSet(p.token, tv)
	}
	return out
}

func (n *standardObjectSchemaNode) commonPtr() *common { return &n.common }

func (n *tokenizableObjectSchemaNode) commonPtr() *common { return &n.common }
