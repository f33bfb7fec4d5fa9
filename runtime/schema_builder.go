package cbor

// SchemaDefinition wraps a built schema tree and exposes the four
// document-level operations described in spec §4.3 over its root node.
// It is immutable after construction and safe for concurrent read use
// (spec §5, "Shared state").
type SchemaDefinition struct {
	title string
	root  schemaNode
}

// Title returns the schema document's required "title" field.
func (d *SchemaDefinition) Title() string { return d.title }

// CreateDefault synthesises a value satisfying the schema, in its
// expanded form.
func (d *SchemaDefinition) CreateDefault(includeAll bool) *DataItem {
	return d.root.createDefault(includeAll)
}

// Validate performs a structural check of item against the schema.
func (d *SchemaDefinition) Validate(item *DataItem, isTokenized, recursive bool, sink WarningSink) bool {
	return d.root.validate(item, isTokenized, recursive, sink, "root")
}

// Expand converts a tokenised-form item to its expanded form, stamping the
// result's decode status Expanded on success (spec §3.3).
func (d *SchemaDefinition) Expand(item *DataItem, sink WarningSink) *DataItem {
	result := d.root.expand(item, sink, "root")
	if result.DecodeStatus() != FailedSchema {
		result.status = Expanded
	}
	return result
}

// Tokenize converts an expanded-form item to its tokenised form, stamping
// the result's decode status Tokenized on success (spec §3.3).
func (d *SchemaDefinition) Tokenize(item *DataItem, sink WarningSink) *DataItem {
	result := d.root.tokenize(item, sink, "root")
	if result.DecodeStatus() != FailedSchema {
		result.status = Tokenized
	}
	return result
}

// SchemaBuilder constructs SchemaDefinitions from schema documents
// (spec §4.3.6), grounded on SchemaBuilder.java's recursive descent.
type SchemaBuilder struct{}

// NewSchemaBuilder returns a ready-to-use schema builder.
func NewSchemaBuilder() *SchemaBuilder { return &SchemaBuilder{} }

// schemaBuildCtx threads the definitions table and in-progress cycle
// detection through recursiveBuild. building tracks definition names
// currently being expanded on the call stack; a definition that
// references itself (directly or transitively) raises InvalidSchema
// instead of recursing forever, fixing a latent stack-overflow bug in
// the original Java builder (SPEC_FULL §6.5 supplement).
type schemaBuildCtx struct {
	definitions map[string]*DataItem
	prototypes  map[string]schemaNode
	building    map[string]bool
}

// Build constructs a SchemaDefinition from a schema document root, which
// must be a NAMED_MAP carrying at least "title" (text) and "root" (a
// schema node definition), plus an optional "definitions" named map of
// prototype nodes referenced by name.
func (b *SchemaBuilder) Build(schemaItem *DataItem, sink WarningSink) (*SchemaDefinition, error) {
	if schemaItem.DataType() != NamedMap {
		return nil, invalidSchema("root", "schema document must be a NAMED_MAP")
	}
	title, ok := fieldString(schemaItem, "title")
	if !ok {
		return nil, invalidSchema("root", `schema document requires a "title"`)
	}
	ctx := &schemaBuildCtx{
		definitions: map[string]*DataItem{},
		prototypes:  map[string]schemaNode{},
		building:    map[string]bool{},
	}
	if defsItem, ok := fieldItem(schemaItem, "definitions"); ok {
		if defsItem.DataType() != NamedMap {
			return nil, invalidSchema("root.definitions", "definitions must be a named map")
		}
		for _, name := range defsItem.NamedMapKeys() {
			def, _ := defsItem.NamedMapGet(name)
			ctx.definitions[name] = def
		}
	}
	rootDef, ok := fieldItem(schemaItem, "root")
	if !ok {
		return nil, invalidSchema("root", `schema document requires a "root" node`)
	}
	root, err := ctx.recursiveBuild(rootDef, "root")
	if err != nil {
		return nil, err
	}
	return &SchemaDefinition{title: title, root: root}, nil
}

func (b *schemaBuildCtx) recursiveBuild(m *DataItem, path string) (schemaNode, error) {
	if m.DataType() != NamedMap {
		return nil, invalidSchema(path, "schema node must be a NAMED_MAP")
	}
	typeName, ok := fieldString(m, "type")
	if !ok {
		return nil, invalidSchema(path, `schema node requires a "type"`)
	}

	var node schemaNode
	var err error
	switch typeName {
	case "boolean":
		node, err = buildBooleanSchema(m, path)
	case "integer":
		node, err = buildIntegerSchema(m, path)
	case "number":
		node, err = buildNumberSchema(m, path)
	case "string":
		node, err = buildTextStringSchema(m, path)
	case "encoded":
		node, err = buildByteStringSchema(m, path)
	case "enumerated":
		node, err = buildEnumeratedSchema(m, path)
	case "array":
		node, err = b.buildArraySchema(m, path)
	case "map":
		node, err = b.buildMapSchema(m, path)
	case "object":
		if fieldBool(m, "tokenize", false) {
			node, err = b.buildTokenizableObjectSchema(m, path)
		} else {
			node, err = b.buildStandardObjectSchema(m, path)
		}
	case "structure":
		node, err = b.buildStructureSchema(m, path)
	case "selection":
		node, err = b.buildSelectionSchema(m, path)
	default:
		node, err = b.buildFromDefinition(typeName, path)
	}
	if err != nil {
		return nil, err
	}

	c := node.commonPtr()
	c.typeName = typeName
	c.optional = fieldBool(m, "optional", true)
	if name, ok := fieldString(m, "name"); ok {
		c.name = name
	}
	if tok, ok := fieldInt(m, "token"); ok {
		c.tokenValue = &tok
	}
	processCommonOptions(c, m)
	return node, nil
}

func (b *schemaBuildCtx) buildFromDefinition(typeName, path string) (schemaNode, error) {
	if b.building[typeName] {
		return nil, invalidSchema(path, "cyclic schema definition reference: %q", typeName)
	}
	if proto, ok := b.prototypes[typeName]; ok {
		return proto.duplicate(), nil
	}
	def, ok := b.definitions[typeName]
	if !ok {
		return nil, invalidSchema(path, "unrecognised schema type %q", typeName)
	}
	b.building[typeName] = true
	proto, err := b.recursiveBuild(def, childPath("definitions", typeName))
	delete(b.building, typeName)
	if err != nil {
		return nil, err
	}
	b.prototypes[typeName] = proto
	return proto.duplicate(), nil
}
