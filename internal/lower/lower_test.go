package lower

import (
	"testing"

	"dada/internal/ast"
	"dada/internal/diag"
	"dada/internal/source"
	"dada/internal/symir"
)

func TestLowerSignaturePlainInts(t *testing.T) {
	file := ast.NewFile("t.dada")
	interner := source.NewInterner()
	arena := symir.NewArena()
	lw := New(file, arena, interner, diag.NopReporter{})

	i32 := interner.Intern("i32")
	aTy := file.AddType(ast.TypeSyn{Kind: ast.TypeNamed, Name: i32})
	bTy := file.AddType(ast.TypeSyn{Kind: ast.TypeNamed, Name: i32})
	retTy := file.AddType(ast.TypeSyn{Kind: ast.TypeNamed, Name: i32})

	item := ast.Item{
		Kind:       ast.ItemFn,
		Name:       interner.Intern("add"),
		Params:     []ast.Param{{Name: interner.Intern("a"), Type: aTy}, {Name: interner.Intern("b"), Type: bTy}},
		ReturnType: retTy,
	}

	sig := lw.LowerSignature(item)
	if len(sig.InputTys) != 2 {
		t.Fatalf("InputTys = %d, want 2", len(sig.InputTys))
	}
	wantTy := arena.NamedInt(true, 32)
	if sig.InputTys[0] != wantTy || sig.InputTys[1] != wantTy {
		t.Fatalf("param types = %v, %v; want both %v", sig.InputTys[0], sig.InputTys[1], wantTy)
	}
	if sig.OutputTy != wantTy {
		t.Fatalf("OutputTy = %v, want %v", sig.OutputTy, wantTy)
	}
}

func TestLowerSignatureAsyncWrapsFuture(t *testing.T) {
	file := ast.NewFile("t.dada")
	interner := source.NewInterner()
	arena := symir.NewArena()
	lw := New(file, arena, interner, diag.NopReporter{})

	boolName := interner.Intern("bool")
	retTy := file.AddType(ast.TypeSyn{Kind: ast.TypeNamed, Name: boolName})
	item := ast.Item{Kind: ast.ItemFn, Name: interner.Intern("check"), ReturnType: retTy, IsAsync: true}

	sig := lw.LowerSignature(item)
	want := arena.NamedFuture(arena.NamedPrimitive(symir.HeadBool))
	if sig.OutputTy != want {
		t.Fatalf("OutputTy = %v, want Future<bool> = %v", sig.OutputTy, want)
	}
}

func TestLowerSignatureImplicitUnitReturn(t *testing.T) {
	file := ast.NewFile("t.dada")
	interner := source.NewInterner()
	arena := symir.NewArena()
	lw := New(file, arena, interner, diag.NopReporter{})

	item := ast.Item{Kind: ast.ItemFn, Name: interner.Intern("run"), ReturnType: ast.NoTypeID}
	sig := lw.LowerSignature(item)
	if sig.OutputTy != arena.NamedTuple(nil) {
		t.Fatalf("OutputTy = %v, want the empty tuple", sig.OutputTy)
	}
}

func TestLowerSignatureGenericWhereClause(t *testing.T) {
	file := ast.NewFile("t.dada")
	interner := source.NewInterner()
	arena := symir.NewArena()
	lw := New(file, arena, interner, diag.NopReporter{})

	tName := interner.Intern("T")
	paramTy := file.AddType(ast.TypeSyn{Kind: ast.TypeNamed, Name: tName})
	item := ast.Item{
		Kind:       ast.ItemFn,
		Name:       interner.Intern("dup"),
		Generics:   []source.StringID{tName},
		Params:     []ast.Param{{Name: interner.Intern("x"), Type: paramTy}},
		ReturnType: paramTy,
		Where:      []ast.WhereClause{{Param: tName, Predicate: ast.WhereIsShared}},
	}

	sig := lw.LowerSignature(item)
	if len(sig.Generics) != 1 {
		t.Fatalf("Generics = %d, want 1", len(sig.Generics))
	}
	if len(sig.Where) != 1 || sig.Where[0].Var != sig.Generics[0].Var {
		t.Fatalf("Where = %+v, want one clause over the generic's var", sig.Where)
	}
	if arena.Ty(sig.InputTys[0]).Kind != symir.TyVar {
		t.Fatalf("param type kind = %v, want TyVar", arena.Ty(sig.InputTys[0]).Kind)
	}
}

func TestLowerPermissionPrefixedType(t *testing.T) {
	file := ast.NewFile("t.dada")
	interner := source.NewInterner()
	arena := symir.NewArena()
	lw := New(file, arena, interner, diag.NopReporter{})

	widget := interner.Intern("Widget")
	myWidget := file.AddType(ast.TypeSyn{Kind: ast.TypeNamed, Name: widget, Perm: ast.PermMy})
	item := ast.Item{Kind: ast.ItemFn, Name: interner.Intern("make"), ReturnType: myWidget}

	sig := lw.LowerSignature(item)
	ty := arena.Ty(sig.OutputTy)
	if ty.Kind != symir.TyPerm || ty.Perm != arena.My() {
		t.Fatalf("output ty = %+v, want a TyPerm wrapping My()", ty)
	}
}

func TestLowerAggregateRecordsStyle(t *testing.T) {
	file := ast.NewFile("t.dada")
	interner := source.NewInterner()
	arena := symir.NewArena()
	lw := New(file, arena, interner, diag.NopReporter{})

	name := interner.Intern("Counter")
	lw.LowerAggregate(ast.Item{Kind: ast.ItemAggregate, Name: name, AggregateKind: ast.AggregateClass})
	if arena.AggregateStyle(name) != symir.AggregateClass {
		t.Fatalf("AggregateStyle = %v, want AggregateClass", arena.AggregateStyle(name))
	}
}
