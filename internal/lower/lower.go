// Package lower turns a parsed ast.File into symir handles the check
// driver can reason about: surface type syntax into SymTy/SymPerm, and a
// function's declared signature into a symir.SymFunctionSignature.
//
// Grounded on the teacher's internal/symbols/resolve_walk.go (scope-stacked
// name resolution, generics pushed before a function's own parameters) and
// internal/types/interner.go (the primitive-name table primitive types are
// resolved against); body lowering to objectir.Node is out of scope for
// this package — see DESIGN.md's Open Questions for why.
package lower

import (
	"dada/internal/ast"
	"dada/internal/diag"
	"dada/internal/source"
	"dada/internal/symir"
)

// Scope resolves names visible while lowering one function: its own and
// any enclosing generic parameters, by interned name.
type Scope struct {
	vars map[source.StringID]symir.VarID
}

func newScope() *Scope {
	return &Scope{vars: make(map[source.StringID]symir.VarID)}
}

// primitiveBits maps the fixed-width integer/float primitive names to their
// bit width; names absent from this table are resolved as aggregates.
var primitiveBits = map[string]struct {
	kind string // "int", "uint", "float"
	bits uint8
}{
	"i8": {"int", 8}, "i16": {"int", 16}, "i32": {"int", 32}, "i64": {"int", 64},
	"u8": {"uint", 8}, "u16": {"uint", 16}, "u32": {"uint", 32}, "u64": {"uint", 64},
	"f32": {"float", 32}, "f64": {"float", 64},
}

// Lowerer carries the shared arena, interner, and reporter used while
// lowering every item of one file.
type Lowerer struct {
	File     *ast.File
	Arena    *symir.Arena
	Interner *source.Interner
	Reporter diag.Reporter
}

// New constructs a Lowerer bound to one file's arena state.
func New(file *ast.File, arena *symir.Arena, interner *source.Interner, r diag.Reporter) *Lowerer {
	return &Lowerer{File: file, Arena: arena, Interner: interner, Reporter: r}
}

// LowerSignature symbolizes one ItemFn's declared interface: its generic
// scope, parameter types, return type (wrapped in Future<T> for async
// functions, per spec.md §4.2), and where-clauses. A type name the
// interner does not know is lowered to Arena.ErrorTy and reported through
// the Lowerer's reporter rather than aborting the whole signature. Any other
// name that is neither a generic parameter nor a primitive is lowered to a
// NamedAggregate whether or not an aggregate of that name was declared; an
// undeclared name is not reported.
func (lw *Lowerer) LowerSignature(item ast.Item) symir.SymFunctionSignature {
	scope := newScope()

	generics := make([]symir.SymGenericParam, 0, len(item.Generics))
	for _, name := range item.Generics {
		v := lw.Arena.FreshVar()
		scope.vars[name] = v
		generics = append(generics, symir.SymGenericParam{Name: name, Var: v})
	}

	paramNames := make([]source.StringID, 0, len(item.Params))
	inputTys := make([]symir.TyID, 0, len(item.Params))
	for _, p := range item.Params {
		paramNames = append(paramNames, p.Name)
		inputTys = append(inputTys, lw.lowerType(scope, p.Type))
	}

	outputTy := lw.Arena.NamedTuple(nil) // implicit unit return
	if item.ReturnType != ast.NoTypeID {
		outputTy = lw.lowerType(scope, item.ReturnType)
	}
	if item.IsAsync {
		outputTy = lw.Arena.NamedFuture(outputTy)
	}

	where := make([]symir.SymWhereClause, 0, len(item.Where))
	for _, w := range item.Where {
		v, ok := scope.vars[w.Param]
		if !ok {
			continue // unresolved generic name; parser already reported the syntax, nothing further to check
		}
		where = append(where, symir.SymWhereClause{Var: v, Predicate: wherePredicateOf(w.Predicate)})
	}

	return symir.SymFunctionSignature{
		Generics:   generics,
		ParamNames: paramNames,
		InputTys:   inputTys,
		OutputTy:   outputTy,
		IsAsync:    item.IsAsync,
		Where:      where,
	}
}

func wherePredicateOf(w ast.WherePredicate) symir.WherePredicate {
	switch w {
	case ast.WhereIsUnique:
		return symir.WhereIsUnique
	case ast.WhereIsOwned:
		return symir.WhereIsOwned
	case ast.WhereIsLent:
		return symir.WhereIsLent
	default:
		return symir.WhereIsShared
	}
}

// LowerBodyType lowers a type annotation written inside item's body (for
// example a `let` binding's explicit type) against a fresh, empty scope.
// This only resolves correctly for non-generic items: a generic function's
// body-level annotations would need the exact same Var allocations
// LowerSignature made for its parameters, which this entry point has no way
// to recover, so it reports an Error type instead of risking a mismatched
// generic variable identity. Error is absorbing in tySubtype, so this never
// produces a false rejection — it just skips the check for that case.
func (lw *Lowerer) LowerBodyType(item ast.Item, id ast.TypeID) symir.TyID {
	if len(item.Generics) > 0 {
		return lw.Arena.ErrorTy(false)
	}
	return lw.lowerType(newScope(), id)
}

// LowerAggregate records a struct/class declaration's style with the
// arena, so later type lowering and codegen can look it up by name.
func (lw *Lowerer) LowerAggregate(item ast.Item) {
	style := symir.AggregateStruct
	if item.AggregateKind == ast.AggregateClass {
		style = symir.AggregateClass
	}
	lw.Arena.DeclareAggregateStyle(item.Name, style)
}

// lowerType symbolizes one surface type annotation into a SymTy handle,
// applying its permission prefix (if any) over the base type.
func (lw *Lowerer) lowerType(scope *Scope, id ast.TypeID) symir.TyID {
	if id == ast.NoTypeID {
		return lw.Arena.NamedTuple(nil)
	}
	syn := lw.File.Type(id)

	base := lw.lowerBaseType(scope, syn)
	perm, ok := lw.lowerPerm(syn)
	if !ok {
		return base
	}
	return lw.Arena.InternTy(symir.SymTy{Kind: symir.TyPerm, Perm: perm, Base: base})
}

func (lw *Lowerer) lowerBaseType(scope *Scope, syn ast.TypeSyn) symir.TyID {
	switch syn.Kind {
	case ast.TypeTuple:
		elems := make([]symir.TyID, 0, len(syn.Elems))
		for _, e := range syn.Elems {
			elems = append(elems, lw.lowerType(scope, e))
		}
		return lw.Arena.NamedTuple(elems)
	case ast.TypeNamed:
		return lw.lowerNamedType(scope, syn)
	default:
		return lw.Arena.ErrorTy(false)
	}
}

func (lw *Lowerer) lowerNamedType(scope *Scope, syn ast.TypeSyn) symir.TyID {
	name, ok := lw.Interner.Lookup(syn.Name)
	if !ok {
		return lw.errorType(syn.Span, "unresolved type name")
	}

	if v, ok := scope.vars[syn.Name]; ok {
		return lw.Arena.InternTy(symir.SymTy{Kind: symir.TyVar, Var: v})
	}

	switch name {
	case "bool":
		return lw.Arena.NamedPrimitive(symir.HeadBool)
	case "char":
		return lw.Arena.NamedPrimitive(symir.HeadChar)
	case "usize":
		return lw.Arena.NamedPrimitive(symir.HeadUsize)
	case "isize":
		return lw.Arena.NamedPrimitive(symir.HeadIsize)
	}
	if info, ok := primitiveBits[name]; ok {
		switch info.kind {
		case "int":
			return lw.Arena.NamedInt(true, info.bits)
		case "uint":
			return lw.Arena.NamedInt(false, info.bits)
		case "float":
			return lw.Arena.NamedFloat(info.bits)
		}
	}

	args := make([]symir.TyID, 0, len(syn.Args))
	for _, a := range syn.Args {
		args = append(args, lw.lowerType(scope, a))
	}
	return lw.Arena.NamedAggregate(syn.Name, args)
}

// lowerPerm symbolizes a type syntax's permission prefix, if one was
// written. The second return is false for PermNone, meaning the caller
// should use the base type directly rather than wrap it in TyPerm.
func (lw *Lowerer) lowerPerm(syn ast.TypeSyn) (symir.PermID, bool) {
	switch syn.Perm {
	case ast.PermMy:
		return lw.Arena.My(), true
	case ast.PermOur:
		return lw.Arena.Our(), true
	case ast.PermMut:
		return lw.Arena.Mutable(lw.lowerPlaces(syn.Places)), true
	case ast.PermRef:
		return lw.Arena.Referenced(lw.lowerPlaces(syn.Places)), true
	default:
		return 0, false
	}
}

func (lw *Lowerer) lowerPlaces(paths []ast.PlacePath) []symir.PlaceID {
	places := make([]symir.PlaceID, 0, len(paths))
	for _, p := range paths {
		segs := make([]symir.PlaceSegment, 0, len(p.Segments))
		for _, s := range p.Segments {
			segs = append(segs, symir.PlaceSegment{Kind: symir.PlaceSegmentField, Name: s})
		}
		places = append(places, lw.Arena.InternPlace(symir.SymPlace{Base: p.Base, Segments: segs}))
	}
	return places
}

func (lw *Lowerer) errorType(span source.Span, msg string) symir.TyID {
	if lw.Reporter != nil {
		diag.ReportError(lw.Reporter, diag.SemaUnresolvedSymbol, span, msg).Emit()
	}
	return lw.Arena.ErrorTy(true)
}
