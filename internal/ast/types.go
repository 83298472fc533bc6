package ast

import "dada/internal/source"

// PermKind names the four surface permission keywords, plus the absence of
// an explicit one (the parser leaves Perm unset and lowering uses the base
// type as written, with no permission wrapped around it).
type PermKind uint8

const (
	PermNone PermKind = iota
	PermMy
	PermOur
	PermMut
	PermRef
)

// TypeSynKind discriminates the TypeSyn variants the parser produces.
type TypeSynKind uint8

const (
	TypeNamed TypeSynKind = iota
	TypeTuple
)

// PlacePath is a dotted place expression as written in `mut[z.f]`/`ref[p]`:
// a base identifier followed by field-access segments.
type PlacePath struct {
	Base     source.StringID
	Segments []source.StringID
}

// TypeSyn is one surface type annotation: an optional permission prefix
// (`my`/`our`/`mut[places]`/`ref[places]`) applied to a named type or a
// tuple of element types.
type TypeSyn struct {
	Kind TypeSynKind

	Perm   PermKind
	Places []PlacePath // Mut/Ref only

	// TypeNamed
	Name source.StringID
	Args []TypeID

	// TypeTuple
	Elems []TypeID

	Span source.Span
}
