package symir

import "dada/internal/source"

// WherePredicate names the four provable facts a where-clause can assert
// about a generic parameter, mirroring the predicate lattice.
type WherePredicate uint8

const (
	WhereIsShared WherePredicate = iota
	WhereIsUnique
	WhereIsOwned
	WhereIsLent
)

// SymWhereClause records one "T: IsShared" style constraint symbolized
// against the enclosing scope.
type SymWhereClause struct {
	Var       VarID
	Predicate WherePredicate
}

// SymGenericParam is one generic parameter threaded into a signature's
// scope. Parameters from outer scopes are listed before the function's own,
// innermost last, matching the teacher's scope-stacking resolution order.
type SymGenericParam struct {
	Name source.StringID
	Var  VarID
}

// SymFunctionSignature bundles a function's symbolized interface: its
// generic scope (transitive outer parameters first, its own last), each
// input's symbol name and symbolic type, the symbolic output type, and the
// where-clauses symbolized against that scope.
//
// For async functions the output type at the caller boundary is wrapped in
// Future<T>; the body itself is checked against the unwrapped T.
type SymFunctionSignature struct {
	Generics   []SymGenericParam
	ParamNames []source.StringID
	InputTys   []TyID
	OutputTy   TyID
	IsAsync    bool
	Where      []SymWhereClause
}
