package cbor

import "testing"

func mustBuild(t *testing.T, doc *DataItem) *SchemaDefinition {
	t.Helper()
	def, err := NewSchemaBuilder().Build(doc, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return def
}

func TestSchemaStandardObjectIntegerRange(t *testing.T) {
	f := NewFactory()
	root := f.CreateNamedMap(nil, false)
	root.NamedMapSet("type", f.CreateTextString("object", nil))
	root.NamedMapSet("final", f.CreateBoolean(true, nil))
	props := f.CreateNamedMap(nil, false)
	nameProp := f.CreateNamedMap(nil, false)
	nameProp.NamedMapSet("type", f.CreateTextString("string", nil))
	props.NamedMapSet("name", nameProp)
	ageProp := f.CreateNamedMap(nil, false)
	ageProp.NamedMapSet("type", f.CreateTextString("integer", nil))
	ageProp.NamedMapSet("minValue", f.CreateInteger(0, nil))
	props.NamedMapSet("age", ageProp)
	root.NamedMapSet("properties", props)

	doc := f.CreateNamedMap(nil, false)
	doc.NamedMapSet("title", f.CreateTextString("person", nil))
	doc.NamedMapSet("root", root)

	def := mustBuild(t, doc)
	if def.Title() != "person" {
		t.Fatalf("Title() = %q", def.Title())
	}

	value := f.CreateNamedMap(nil, false)
	value.NamedMapSet("name", f.CreateTextString("ada", nil))
	value.NamedMapSet("age", f.CreateInteger(30, nil))
	if !def.Validate(value, false, true, nil) {
		t.Fatalf("Validate() = false for a conforming value")
	}

	bad := f.CreateNamedMap(nil, false)
	bad.NamedMapSet("name", f.CreateTextString("ada", nil))
	bad.NamedMapSet("age", f.CreateInteger(-1, nil))
	if def.Validate(bad, false, true, nil) {
		t.Fatalf("Validate() = true for an out-of-range value")
	}
}

func TestSchemaEnumeratedUnknownFallback(t *testing.T) {
	f := NewFactory()
	root := f.CreateNamedMap(nil, false)
	root.NamedMapSet("type", f.CreateTextString("enumerated", nil))
	values := f.CreateNamedMap(nil, false)
	values.NamedMapSet("red", f.CreateInteger(1, nil))
	root.NamedMapSet("values", values)
	root.NamedMapSet("default", f.CreateTextString("red", nil))

	doc := f.CreateNamedMap(nil, false)
	doc.NamedMapSet("title", f.CreateTextString("colour", nil))
	doc.NamedMapSet("root", root)
	def := mustBuild(t, doc)

	if !def.Validate(f.CreateTextString("red", nil), false, false, nil) {
		t.Fatalf("Validate(red) = false")
	}
	// Non-final enumerations map unknown identifiers to the reserved fallback.
	if !def.Validate(f.CreateTextString("blue", nil), false, false, nil) {
		t.Fatalf("Validate(blue) = false, want fallback to succeed for a non-final enumeration")
	}
}

func TestSchemaArrayEntriesValidate(t *testing.T) {
	f := NewFactory()
	root := f.CreateNamedMap(nil, false)
	root.NamedMapSet("type", f.CreateTextString("array", nil))
	entries := f.CreateNamedMap(nil, false)
	entries.NamedMapSet("type", f.CreateTextString("integer", nil))
	root.NamedMapSet("entries", entries)

	doc := f.CreateNamedMap(nil, false)
	doc.NamedMapSet("title", f.CreateTextString("numbers", nil))
	doc.NamedMapSet("root", root)
	def := mustBuild(t, doc)

	arr := f.CreateArray(nil, false)
	arr.ArrayAppend(f.CreateInteger(1, nil))
	arr.ArrayAppend(f.CreateInteger(2, nil))
	if !def.Validate(arr, false, true, nil) {
		t.Fatalf("Validate() = false for a conforming array")
	}

	bad := f.CreateArray(nil, false)
	bad.ArrayAppend(f.CreateTextString("x", nil))
	if def.Validate(bad, false, true, nil) {
		t.Fatalf("Validate() = true for a non-integer element")
	}
}

func TestSchemaMapEntriesValidate(t *testing.T) {
	f := NewFactory()
	root := f.CreateNamedMap(nil, false)
	root.NamedMapSet("type", f.CreateTextString("map", nil))
	entries := f.CreateNamedMap(nil, false)
	entries.NamedMapSet("type", f.CreateTextString("boolean", nil))
	root.NamedMapSet("entries", entries)

	doc := f.CreateNamedMap(nil, false)
	doc.NamedMapSet("title", f.CreateTextString("flags", nil))
	doc.NamedMapSet("root", root)
	def := mustBuild(t, doc)

	m := f.CreateNamedMap(nil, false)
	m.NamedMapSet("a", f.CreateBoolean(true, nil))
	if !def.Validate(m, false, true, nil) {
		t.Fatalf("Validate() = false for a conforming map")
	}

	bad := f.CreateNamedMap(nil, false)
	bad.NamedMapSet("a", f.CreateInteger(1, nil))
	if def.Validate(bad, false, true, nil) {
		t.Fatalf("Validate() = true for a non-boolean value")
	}
}

func TestSchemaStructureShortTokenizedArrayPadsUndefined(t *testing.T) {
	f := NewFactory()
	root := f.CreateNamedMap(nil, false)
	root.NamedMapSet("type", f.CreateTextString("structure", nil))
	records := f.CreateNamedMap(nil, false)
	alpha := f.CreateNamedMap(nil, false)
	alpha.NamedMapSet("type", f.CreateTextString("integer", nil))
	alpha.NamedMapSet("index", f.CreateInteger(0, nil))
	records.NamedMapSet("alpha", alpha)
	beta := f.CreateNamedMap(nil, false)
	beta.NamedMapSet("type", f.CreateTextString("integer", nil))
	beta.NamedMapSet("index", f.CreateInteger(1, nil))
	records.NamedMapSet("beta", beta)
	root.NamedMapSet("records", records)

	doc := f.CreateNamedMap(nil, false)
	doc.NamedMapSet("title", f.CreateTextString("pair", nil))
	doc.NamedMapSet("root", root)
	def := mustBuild(t, doc)

	short := f.CreateArray(nil, false)
	short.ArrayAppend(f.CreateInteger(1, nil))
	if !def.Validate(short, true, true, nil) {
		t.Fatalf("Validate(tokenized short array) = false, want true (missing trailing position synthesised as UNDEFINED)")
	}

	expanded := def.Expand(short, nil)
	if expanded.DecodeStatus() != Expanded {
		t.Fatalf("Expand() status = %v, want Expanded", expanded.DecodeStatus())
	}
	v, ok := expanded.NamedMapGet("alpha")
	if !ok || v.AsInteger() != 1 {
		t.Fatalf("expanded[alpha] = %v, %v", v, ok)
	}
	if _, ok := expanded.NamedMapGet("beta"); ok {
		t.Fatalf("expanded[beta] present, want absent for a missing optional trailing position")
	}

	tokenized := def.Tokenize(expanded, nil)
	if tokenized.DecodeStatus() != Tokenized {
		t.Fatalf("Tokenize() status = %v, want Tokenized", tokenized.DecodeStatus())
	}
}

func TestSchemaDefinitionCycleDetected(t *testing.T) {
	f := NewFactory()
	definitions := f.CreateNamedMap(nil, false)
	cyclic := f.CreateNamedMap(nil, false)
	cyclic.NamedMapSet("type", f.CreateTextString("node", nil))
	definitions.NamedMapSet("node", cyclic)

	root := f.CreateNamedMap(nil, false)
	root.NamedMapSet("type", f.CreateTextString("node", nil))

	doc := f.CreateNamedMap(nil, false)
	doc.NamedMapSet("title", f.CreateTextString("cyclic", nil))
	doc.NamedMapSet("definitions", definitions)
	doc.NamedMapSet("root", root)

	if _, err := NewSchemaBuilder().Build(doc, nil); err == nil {
		t.Fatalf("Build() succeeded for a self-referential definitions table, want error")
	}
}

func TestSchemaSelectionTokenizeExpand(t *testing.T) {
	f := NewFactory()
	root := f.CreateNamedMap(nil, false)
	root.NamedMapSet("type", f.CreateTextString("selection", nil))
	formats := f.CreateNamedMap(nil, false)
	onOpt := f.CreateNamedMap(nil, false)
	onOpt.NamedMapSet("type", f.CreateTextString("boolean", nil))
	onOpt.NamedMapSet("token", f.CreateInteger(1, nil))
	formats.NamedMapSet("on", onOpt)
	root.NamedMapSet("formats", formats)
	root.NamedMapSet("default", f.CreateTextString("on", nil))

	doc := f.CreateNamedMap(nil, false)
	doc.NamedMapSet("title", f.CreateTextString("toggle", nil))
	doc.NamedMapSet("root", root)
	def := mustBuild(t, doc)

	expanded := f.CreateNamedMap(nil, false)
	expanded.NamedMapSet("on", f.CreateBoolean(true, nil))
	tokenized := def.Tokenize(expanded, nil)
	if tokenized.DataType() != Array || len(tokenized.AsArray()) != 2 {
		t.Fatalf("tokenized = %v", tokenized)
	}
	if tokenized.AsArray()[0].AsInteger() != 1 {
		t.Fatalf("token = %d, want 1", tokenized.AsArray()[0].AsInteger())
	}

	backToExpanded := def.Expand(tokenized, nil)
	v, ok := backToExpanded.NamedMapGet("on")
	if !ok || v.AsBool() != true {
		t.Fatalf("expand round trip = %v, %v", v, ok)
	}
}
