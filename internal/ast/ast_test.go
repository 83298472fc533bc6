package ast

import "testing"

func TestFileAddExprAndTypeAssignSequentialIDs(t *testing.T) {
	f := NewFile("test.dada")
	id0 := f.AddExpr(Expr{Kind: ExprIntLit, IntVal: 1})
	id1 := f.AddExpr(Expr{Kind: ExprIntLit, IntVal: 2})
	if id0 != 0 || id1 != 1 {
		t.Fatalf("ids = %d, %d; want 0, 1", id0, id1)
	}
	if f.Expr(id1).IntVal != 2 {
		t.Fatalf("Expr(id1).IntVal = %d, want 2", f.Expr(id1).IntVal)
	}

	t0 := f.AddType(TypeSyn{Kind: TypeNamed})
	if t0 != 0 {
		t.Fatalf("type id = %d, want 0", t0)
	}
}

func TestFindFnLocatesTopLevelFunction(t *testing.T) {
	f := NewFile("test.dada")
	const name = 42
	f.AddItem(Item{Kind: ItemAggregate, Name: 1})
	f.AddItem(Item{Kind: ItemFn, Name: name})

	found, ok := f.FindFn(name)
	if !ok || found.Kind != ItemFn {
		t.Fatalf("FindFn = %+v, %v; want the ItemFn", found, ok)
	}

	if _, ok := f.FindFn(999); ok {
		t.Fatalf("FindFn unexpectedly matched a nonexistent name")
	}
}

func TestNoIDSentinelsAreNegative(t *testing.T) {
	if NoExprID >= 0 {
		t.Fatalf("NoExprID = %d, want negative", NoExprID)
	}
	if NoTypeID >= 0 {
		t.Fatalf("NoTypeID = %d, want negative", NoTypeID)
	}
}
