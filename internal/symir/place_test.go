package symir

import (
	"testing"

	"dada/internal/source"
)

func TestPlaceCoversPrefix(t *testing.T) {
	in := source.NewInterner()
	base := in.Intern("x")
	f := in.Intern("f")
	g := in.Intern("g")

	whole := SymPlace{Base: base}
	field := SymPlace{Base: base, Segments: []PlaceSegment{{Kind: PlaceSegmentField, Name: f}}}
	nested := SymPlace{Base: base, Segments: []PlaceSegment{
		{Kind: PlaceSegmentField, Name: f},
		{Kind: PlaceSegmentField, Name: g},
	}}

	if !whole.Covers(field) {
		t.Fatal("expected x to cover x.f")
	}
	if !whole.Covers(nested) {
		t.Fatal("expected x to cover x.f.g")
	}
	if !field.Covers(nested) {
		t.Fatal("expected x.f to cover x.f.g")
	}
	if field.Covers(whole) {
		t.Fatal("did not expect x.f to cover x")
	}
	if nested.Covers(field) {
		t.Fatal("did not expect x.f.g to cover x.f")
	}
}

func TestPlaceCoversDifferentRoots(t *testing.T) {
	in := source.NewInterner()
	x := in.Intern("x")
	y := in.Intern("y")

	px := SymPlace{Base: x}
	py := SymPlace{Base: y}
	if px.Covers(py) || py.Covers(px) {
		t.Fatal("places with different roots must never cover each other")
	}
}

func TestArenaInternDedupsTypes(t *testing.T) {
	a := NewArena()
	id1 := a.NamedInt(true, 32)
	id2 := a.NamedInt(true, 32)
	if id1 != id2 {
		t.Fatalf("expected structurally equal types to share an ID, got %d and %d", id1, id2)
	}
	id3 := a.NamedInt(false, 32)
	if id3 == id1 {
		t.Fatal("expected i32 and u32 to intern to distinct IDs")
	}
}

func TestArenaInternDedupsPlaces(t *testing.T) {
	a := NewArena()
	in := source.NewInterner()
	x := in.Intern("x")

	id1 := a.InternPlace(SymPlace{Base: x})
	id2 := a.InternPlace(SymPlace{Base: x})
	if id1 != id2 {
		t.Fatalf("expected equal places to share an ID, got %d and %d", id1, id2)
	}
}
