package ast

import "dada/internal/source"

// WherePredicate names the predicate a generic parameter is constrained by
// in a `where T: Shared` clause.
type WherePredicate uint8

const (
	WhereIsShared WherePredicate = iota
	WhereIsUnique
	WhereIsOwned
	WhereIsLent
)

// WhereClause is one `T: Pred` bound in a function's where-list.
type WhereClause struct {
	Param     source.StringID
	Predicate WherePredicate
}

// Param is one function parameter: a name plus its declared type.
type Param struct {
	Name source.StringID
	Type TypeID
}

// AggregateKind distinguishes `struct` (inline, no identity) from `class`
// (heap-allocated, permission-carrying) declarations.
type AggregateKind uint8

const (
	AggregateStruct AggregateKind = iota
	AggregateClass
)

// Field is one field of a struct/class declaration.
type Field struct {
	Name source.StringID
	Type TypeID
}

// ItemKind discriminates the top-level declaration forms.
type ItemKind uint8

const (
	ItemFn ItemKind = iota
	ItemAggregate
)

// Item is one top-level declaration.
type Item struct {
	Kind ItemKind
	Span source.Span

	// ItemFn
	Name       source.StringID
	Generics   []source.StringID
	Params     []Param
	ReturnType TypeID // NoTypeID for an implicit unit return
	IsAsync    bool
	Where      []WhereClause
	Body       ExprID

	// ItemAggregate
	AggregateKind AggregateKind
	Fields        []Field
}
