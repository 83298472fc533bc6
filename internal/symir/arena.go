package symir

import (
	"dada/internal/arena"
	"dada/internal/source"
)

// Arena owns every hash-consed SymIR table for one compilation. It is the
// concrete realization of the "interning arena" component: one Table per
// structurally-keyed category (types, permissions, places), and one Store
// for function signatures, where two identical declarations must still get
// distinct identities.
//
// Grounded on the teacher's internal/types/interner.go pattern, generalized
// through internal/arena.Table / internal/arena.Store so this package only
// supplies the structural keys.
type Arena struct {
	types  *arena.Table[string, SymTy]
	perms  *arena.Table[string, SymPerm]
	places *arena.Table[placeKey, SymPlace]
	sigs   *arena.Store[SymFunctionSignature]

	aggregateStyle map[source.StringID]SymAggregateStyle
	nextVar        VarID
}

// NewArena constructs an empty arena ready to lower a module into.
func NewArena() *Arena {
	return &Arena{
		types:          arena.NewTable[string, SymTy](),
		perms:          arena.NewTable[string, SymPerm](),
		places:         arena.NewTable[placeKey, SymPlace](),
		sigs:           arena.NewStore[SymFunctionSignature](),
		aggregateStyle: make(map[source.StringID]SymAggregateStyle),
		nextVar:        1, // 0 is NoVarID
	}
}

// InternTy hash-conses a SymTy and returns its stable handle.
func (a *Arena) InternTy(t SymTy) TyID {
	return a.types.Intern(t.key(), t)
}

// Ty resolves a handle back to the type it denotes.
func (a *Arena) Ty(id TyID) SymTy {
	return a.types.MustLookup(id)
}

// InternPerm hash-conses a SymPerm and returns its stable handle.
func (a *Arena) InternPerm(p SymPerm) PermID {
	return a.perms.Intern(p.key(), p)
}

// Perm resolves a handle back to the permission it denotes.
func (a *Arena) Perm(id PermID) SymPerm {
	return a.perms.MustLookup(id)
}

// InternPlace hash-conses a SymPlace and returns its stable handle.
func (a *Arena) InternPlace(p SymPlace) PlaceID {
	return a.places.Intern(p.key(), p)
}

// Place resolves a handle back to the place it denotes.
func (a *Arena) Place(id PlaceID) SymPlace {
	return a.places.MustLookup(id)
}

// AddSignature records a new function signature and returns its (always
// fresh) handle.
func (a *Arena) AddSignature(sig SymFunctionSignature) SigID {
	return a.sigs.Add(sig)
}

// Signature resolves a handle back to the signature it denotes.
func (a *Arena) Signature(id SigID) SymFunctionSignature {
	return a.sigs.MustLookup(id)
}

// FreshVar allocates a new, never-before-used variable identity, used for
// both bound generic parameters and inference variables.
func (a *Arena) FreshVar() VarID {
	v := a.nextVar
	a.nextVar++
	return v
}

// DeclareAggregateStyle records whether the aggregate named by name is
// struct-style (inlined, no identity) or class-style (heap, permission
// layer). Predicate evaluation and WASM layout both look this up.
func (a *Arena) DeclareAggregateStyle(name source.StringID, style SymAggregateStyle) {
	a.aggregateStyle[name] = style
}

// AggregateStyle reports the declared style for a named aggregate. Unknown
// names default to struct-style, matching the lowering's treatment of
// malformed/forward-referenced declarations as inert rather than fatal.
func (a *Arena) AggregateStyle(name source.StringID) SymAggregateStyle {
	return a.aggregateStyle[name]
}

// NamedPrimitive (bool, char, ...), Never and ErrorTy return the handles to
// the handful of types every
// compilation needs regardless of source; callers intern them lazily
// through these helpers rather than the arena pre-populating them, keeping
// slot 0 reserved uniformly across every table.

// NamedPrimitive interns a Named type for a primitive head with no args
// (bool, char, usize, isize).
func (a *Arena) NamedPrimitive(kind NamedHeadKind) TyID {
	return a.InternTy(SymTy{Kind: TyNamed, Head: NamedHead{Kind: kind}})
}

// NamedInt interns a Named type for a fixed-width signed/unsigned integer.
func (a *Arena) NamedInt(signed bool, bits uint8) TyID {
	kind := HeadInt
	if !signed {
		kind = HeadUint
	}
	return a.InternTy(SymTy{Kind: TyNamed, Head: NamedHead{Kind: kind, Bits: bits}})
}

// NamedFloat interns a Named type for a fixed-width float (32 or 64 bits).
func (a *Arena) NamedFloat(bits uint8) TyID {
	return a.InternTy(SymTy{Kind: TyNamed, Head: NamedHead{Kind: HeadFloat, Bits: bits}})
}

// NamedAggregate interns a Named type referencing a user-defined
// struct/class by name, applied to generic arguments.
func (a *Arena) NamedAggregate(name source.StringID, args []TyID) TyID {
	return a.InternTy(SymTy{Kind: TyNamed, Head: NamedHead{Kind: HeadAggregate, Name: name}, Args: args})
}

// NamedFuture interns Future<inner>.
func (a *Arena) NamedFuture(inner TyID) TyID {
	return a.InternTy(SymTy{Kind: TyNamed, Head: NamedHead{Kind: HeadFuture}, Args: []TyID{inner}})
}

// NamedTuple interns Tuple<arity, elems...>.
func (a *Arena) NamedTuple(elems []TyID) TyID {
	return a.InternTy(SymTy{
		Kind: TyNamed,
		Head: NamedHead{Kind: HeadTuple, Bits: uint8(len(elems))},
		Args: elems,
	})
}

// Never interns the empty type.
func (a *Arena) Never() TyID {
	return a.InternTy(SymTy{Kind: TyNever})
}

// ErrorTy interns the Error(reported) poisoning marker.
func (a *Arena) ErrorTy(reported bool) TyID {
	return a.InternTy(SymTy{Kind: TyError, Reported: reported})
}

// My interns the my permission (Unique ∧ Owned).
func (a *Arena) My() PermID {
	return a.InternPerm(SymPerm{Kind: PermMy})
}

// Our interns the our permission (Shared ∧ Owned).
func (a *Arena) Our() PermID {
	return a.InternPerm(SymPerm{Kind: PermOur})
}

// Referenced interns ref[places...] (Shared ∧ Lent).
func (a *Arena) Referenced(places []PlaceID) PermID {
	return a.InternPerm(SymPerm{Kind: PermReferenced, Places: places})
}

// Mutable interns mut[places...] (Unique ∧ Lent).
func (a *Arena) Mutable(places []PlaceID) PermID {
	return a.InternPerm(SymPerm{Kind: PermMutable, Places: places})
}
