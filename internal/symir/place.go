// Package symir is the symbolic intermediate representation: canonical,
// hash-consed types, permissions, and places produced by lowering the AST.
// Every downstream package (red, predicate, infer, subtype, check) consumes
// SymIR values rather than touching the AST again.
//
// Grounded on the teacher's internal/sema/borrow.go Place/PlaceSegment model
// (base symbol + a sequence of field/index/deref projections, interned as a
// string key) and internal/symbols for the underlying symbol identifiers.
package symir

import "dada/internal/source"

// PlaceSegmentKind identifies the kind of projection applied to a base binding.
type PlaceSegmentKind uint8

const (
	PlaceSegmentField PlaceSegmentKind = iota
	PlaceSegmentIndex
	PlaceSegmentDeref
)

// PlaceSegment stores one projection step (field/index/deref) in a place path.
type PlaceSegment struct {
	Kind PlaceSegmentKind
	Name source.StringID // only meaningful for PlaceSegmentField
}

// SymPlace describes an addressable location a permission can reference: a
// root binding plus zero or more projections (x, x.f, x.f.g, x[0], *x.f).
type SymPlace struct {
	Base     source.StringID // root binding name, interned
	Segments []PlaceSegment
}

// IsValid reports whether the place references a named root binding.
func (p SymPlace) IsValid() bool {
	return p.Base != source.NoStringID
}

// Covers reports whether p covers q: q's segment path must extend p's, i.e.
// p is a prefix of q at the same root. This is the relation subtyping uses
// for mut/ref chains — a lease of the whole value covers a lease of one of
// its fields, never the other way around.
func (p SymPlace) Covers(q SymPlace) bool {
	if p.Base != q.Base || !p.IsValid() || !q.IsValid() {
		return false
	}
	if len(p.Segments) > len(q.Segments) {
		return false
	}
	for i, seg := range p.Segments {
		other := q.Segments[i]
		if seg.Kind != other.Kind || seg.Name != other.Name {
			return false
		}
	}
	return true
}

// placeKey is the structural-equality key used to hash-cons SymPlace values
// in an arena.Table.
type placeKey string

func (p SymPlace) key() placeKey {
	buf := make([]byte, 0, 4+len(p.Segments)*6)
	buf = appendUint32(buf, uint32(p.Base))
	for _, seg := range p.Segments {
		buf = append(buf, byte(seg.Kind))
		buf = appendUint32(buf, uint32(seg.Name))
	}
	return placeKey(buf)
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
