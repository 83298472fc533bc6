package symir

import "dada/internal/source"

// TyKind discriminates the SymTy variants described by the data model:
// named types (which subsumes primitives, aggregates, Future, and Tuple),
// a permission applied to a base type, bound/inference variables, the empty
// type, and the error-poisoning marker.
type TyKind uint8

const (
	TyNamed TyKind = iota
	TyPerm
	TyVar
	TyInfer
	TyNever
	TyError
)

// NamedHeadKind distinguishes the different things a Named type can denote.
type NamedHeadKind uint8

const (
	HeadBool NamedHeadKind = iota
	HeadChar
	HeadInt
	HeadUint
	HeadFloat
	HeadUsize
	HeadIsize
	HeadAggregate
	HeadFuture
	HeadTuple
)

// NamedHead identifies the specific named type: a primitive (with bit
// width where relevant), a user-defined aggregate (by interned name), the
// built-in Future<T>, or Tuple<arity, ...>.
type NamedHead struct {
	Kind NamedHeadKind
	Name source.StringID // aggregate name; NoStringID for built-ins
	Bits uint8           // bit width for Int/Uint/Float; unused otherwise
}

// SymTy is a hash-consed symbolic type. Exactly the fields relevant to Kind
// are meaningful; callers must switch on Kind before reading other fields.
type SymTy struct {
	Kind TyKind

	// TyNamed
	Head NamedHead
	Args []TyID

	// TyPerm
	Perm PermID
	Base TyID

	// TyVar / TyInfer
	Var VarID

	// TyError
	Reported bool
}

func (t SymTy) key() string {
	b := make([]byte, 0, 16)
	b = append(b, byte(t.Kind))
	switch t.Kind {
	case TyNamed:
		b = append(b, byte(t.Head.Kind), t.Head.Bits)
		b = appendUint32(b, uint32(t.Head.Name))
		b = appendUint32(b, uint32(len(t.Args)))
		for _, a := range t.Args {
			b = appendUint32(b, uint32(a))
		}
	case TyPerm:
		b = appendUint32(b, uint32(t.Perm))
		b = appendUint32(b, uint32(t.Base))
	case TyVar, TyInfer:
		b = appendUint32(b, uint32(t.Var))
	case TyError:
		if t.Reported {
			b = append(b, 1)
		}
	}
	return string(b)
}

// PermKind discriminates the SymPerm variants.
type PermKind uint8

const (
	PermMy PermKind = iota
	PermOur
	PermReferenced
	PermMutable
	PermApply
	PermOr
	PermVar
	PermInfer
	PermError
)

// SymPerm is a hash-consed symbolic permission.
type SymPerm struct {
	Kind PermKind

	// PermReferenced / PermMutable
	Places []PlaceID

	// PermApply / PermOr
	Lhs PermID
	Rhs PermID

	// PermVar / PermInfer
	Var VarID
}

func (p SymPerm) key() string {
	b := make([]byte, 0, 16)
	b = append(b, byte(p.Kind))
	switch p.Kind {
	case PermReferenced, PermMutable:
		b = appendUint32(b, uint32(len(p.Places)))
		for _, pl := range p.Places {
			b = appendUint32(b, uint32(pl))
		}
	case PermApply, PermOr:
		b = appendUint32(b, uint32(p.Lhs))
		b = appendUint32(b, uint32(p.Rhs))
	case PermVar, PermInfer:
		b = appendUint32(b, uint32(p.Var))
	}
	return string(b)
}

// SymAggregateStyle distinguishes struct-style (inline layout, no identity)
// aggregates from class-style (heap-allocated, permission-carrying)
// aggregates. Predicate and layout rules both dispatch on this.
type SymAggregateStyle uint8

const (
	AggregateStruct SymAggregateStyle = iota
	AggregateClass
)
