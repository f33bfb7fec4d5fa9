package cbor

import "testing"

func TestJoinIsLeastStrict(t *testing.T) {
	cases := []struct {
		a, b, want DecodeStatus
	}{
		{Original, Translatable, Translatable},
		{WellFormed, Tokenized, WellFormed},
		{Invalid, Original, Invalid},
		{Expanded, Expanded, Expanded},
	}
	for _, c := range cases {
		if got := Join(c.a, c.b); got != c.want {
			t.Errorf("Join(%s, %s) = %s, want %s", c.a, c.b, got, c.want)
		}
		if got := Join(c.b, c.a); got != c.want {
			t.Errorf("Join is not commutative for (%s, %s)", c.a, c.b)
		}
	}
}

func TestJoinAllEmpty(t *testing.T) {
	if got := JoinAll(); got != Original {
		t.Errorf("JoinAll() = %s, want ORIGINAL (join identity)", got)
	}
}

func TestIsFailure(t *testing.T) {
	for _, s := range []DecodeStatus{Invalid, Unsupported, FailedSchema} {
		if !s.IsFailure() {
			t.Errorf("%s.IsFailure() = false, want true", s)
		}
	}
	for _, s := range []DecodeStatus{WellFormed, Tokenized, Expanded, Translatable, Original} {
		if s.IsFailure() {
			t.Errorf("%s.IsFailure() = true, want false", s)
		}
	}
}

func TestSetDecodeStatusMonotonic(t *testing.T) {
	h := &header{status: Translatable}
	if err := h.SetDecodeStatus(WellFormed); err != nil {
		t.Fatalf("non-failure to non-failure transition returned error: %v", err)
	}
	if h.DecodeStatus() != WellFormed {
		t.Fatalf("status = %s, want WELL_FORMED", h.DecodeStatus())
	}
	if err := h.SetDecodeStatus(Invalid); err != nil {
		t.Fatalf("non-failure to failure transition returned error: %v", err)
	}
	if err := h.SetDecodeStatus(Original); err == nil {
		t.Fatalf("failure to non-failure transition silently succeeded, want error")
	}
	if h.DecodeStatus() != Invalid {
		t.Fatalf("status changed after rejected transition: %s", h.DecodeStatus())
	}
}

func TestFactoryNamedMapRoundTrip(t *testing.T) {
	f := NewFactory()
	m := f.CreateNamedMap(nil, false)
	m.NamedMapSet("a", f.CreateInteger(1, nil))
	m.NamedMapSet("b", f.CreateInteger(2, nil))
	if m.NamedMapLen() != 2 {
		t.Fatalf("NamedMapLen() = %d, want 2", m.NamedMapLen())
	}
	v, ok := m.NamedMapGet("a")
	if !ok || v.AsInteger() != 1 {
		t.Fatalf("NamedMapGet(a) = %v, %v", v, ok)
	}
	if keys := m.NamedMapKeys(); len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("NamedMapKeys() = %v, want insertion order [a b]", keys)
	}
}

func TestFactoryIndexedMapDuplicateOverwrite(t *testing.T) {
	f := NewFactory()
	m := f.CreateIndexedMap(nil, false)
	m.IndexedMapSet(1, f.CreateInteger(10, nil))
	m.IndexedMapSet(1, f.CreateInteger(20, nil))
	if m.IndexedMapLen() != 1 {
		t.Fatalf("IndexedMapLen() = %d, want 1", m.IndexedMapLen())
	}
	v, _ := m.IndexedMapGet(1)
	if v.AsInteger() != 20 {
		t.Fatalf("IndexedMapGet(1) = %d, want 20 (last write wins)", v.AsInteger())
	}
}

func TestFreshlyBuiltItemsAreOriginal(t *testing.T) {
	f := NewFactory()
	items := []*DataItem{
		f.CreateInteger(1, nil),
		f.CreateBoolean(true, nil),
		f.CreateTextString("x", nil),
		f.CreateArray(nil, false),
	}
	for _, item := range items {
		if item.DecodeStatus() != Original {
			t.Errorf("%s: DecodeStatus() = %s, want ORIGINAL", item.DataType(), item.DecodeStatus())
		}
	}
}
