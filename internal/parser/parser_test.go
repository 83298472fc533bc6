package parser

import (
	"testing"

	"dada/internal/ast"
	"dada/internal/diag"
	"dada/internal/source"
)

func parseSrc(t *testing.T, src string) (*ast.File, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.dada", []byte(src))
	file := fs.Get(id)
	interner := source.NewInterner()
	bag := diag.NewBag(50)
	out := Parse(file, interner, diag.BagReporter{Bag: bag})
	return out, bag
}

func TestParseSimpleFn(t *testing.T) {
	out, bag := parseSrc(t, `
fn add(a: Int, b: Int) -> Int {
	return a + b;
}
`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	if len(out.Items) != 1 {
		t.Fatalf("Items = %d, want 1", len(out.Items))
	}
	fn := out.Items[0]
	if fn.Kind != ast.ItemFn {
		t.Fatalf("Kind = %v, want ItemFn", fn.Kind)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("Params = %d, want 2", len(fn.Params))
	}
	if fn.ReturnType == ast.NoTypeID {
		t.Fatalf("expected a return type")
	}
	body := out.Expr(fn.Body)
	if body.Kind != ast.ExprBlock || len(body.Stmts) != 1 {
		t.Fatalf("body = %+v, want a one-statement block", body)
	}
	ret := out.Expr(body.Stmts[0])
	if ret.Kind != ast.ExprReturn {
		t.Fatalf("stmt kind = %v, want ExprReturn", ret.Kind)
	}
	binExpr := out.Expr(ret.Operand)
	if binExpr.Kind != ast.ExprBinary || binExpr.Op != ast.OpAdd {
		t.Fatalf("operand = %+v, want a + binary expr", binExpr)
	}
}

func TestParsePermissionTypesAndLet(t *testing.T) {
	out, bag := parseSrc(t, `
fn borrow(x: mut[p] Widget) -> my Widget {
	let y: our Widget = x.share();
	return y;
}
`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	fn := out.Items[0]
	paramTy := out.Type(fn.Params[0].Type)
	if paramTy.Perm != ast.PermMut {
		t.Fatalf("param perm = %v, want PermMut", paramTy.Perm)
	}
	retTy := out.Type(fn.ReturnType)
	if retTy.Perm != ast.PermMy {
		t.Fatalf("return perm = %v, want PermMy", retTy.Perm)
	}
}

func TestParseAggregateStructAndClass(t *testing.T) {
	out, bag := parseSrc(t, `
struct Point { x: Int, y: Int }
class Counter { count: Int }
`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	if len(out.Items) != 2 {
		t.Fatalf("Items = %d, want 2", len(out.Items))
	}
	if out.Items[0].AggregateKind != ast.AggregateStruct {
		t.Fatalf("Items[0].AggregateKind = %v, want AggregateStruct", out.Items[0].AggregateKind)
	}
	if out.Items[1].AggregateKind != ast.AggregateClass {
		t.Fatalf("Items[1].AggregateKind = %v, want AggregateClass", out.Items[1].AggregateKind)
	}
}

func TestParseIfWhileMatch(t *testing.T) {
	out, bag := parseSrc(t, `
fn classify(n: Int) -> Int {
	if n < 0 {
		return 0;
	} else {
		return 1;
	}
	while n > 0 {
		n = n - 1;
	}
	match n {
		0 => 1,
		=> 2,
	}
}
`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	body := out.Expr(out.Items[0].Body)
	if len(body.Stmts) != 3 {
		t.Fatalf("stmts = %d, want 3", len(body.Stmts))
	}
	ifE := out.Expr(body.Stmts[0])
	if ifE.Kind != ast.ExprIf || ifE.Else == ast.NoExprID {
		t.Fatalf("if expr = %+v", ifE)
	}
	whileE := out.Expr(body.Stmts[1])
	if whileE.Kind != ast.ExprWhile {
		t.Fatalf("while expr kind = %v", whileE.Kind)
	}
	matchE := out.Expr(body.Stmts[2])
	if matchE.Kind != ast.ExprMatch || len(matchE.Arms) != 2 {
		t.Fatalf("match expr = %+v", matchE)
	}
	if matchE.Arms[1].Cond != ast.NoExprID {
		t.Fatalf("final arm should be unconditional")
	}
}

func TestParseGenericFnWithWhereClause(t *testing.T) {
	out, bag := parseSrc(t, `
fn dup[T](x: T) -> (T, T) where T: Shared {
	return (x, x);
}
`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	fn := out.Items[0]
	if len(fn.Generics) != 1 {
		t.Fatalf("Generics = %d, want 1", len(fn.Generics))
	}
	if len(fn.Where) != 1 || fn.Where[0].Predicate != ast.WhereIsShared {
		t.Fatalf("Where = %+v", fn.Where)
	}
	retTy := out.Type(fn.ReturnType)
	if retTy.Kind != ast.TypeTuple || len(retTy.Elems) != 2 {
		t.Fatalf("return type = %+v, want a 2-tuple", retTy)
	}
}

func TestParseStructLiteralAndCall(t *testing.T) {
	out, bag := parseSrc(t, `
fn make() -> my Point {
	return Point { x: 1, y: 2 }.give();
}
`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	body := out.Expr(out.Items[0].Body)
	ret := out.Expr(body.Stmts[0])
	call := out.Expr(ret.Operand)
	if call.Kind != ast.ExprCall {
		t.Fatalf("operand kind = %v, want ExprCall", call.Kind)
	}
	field := out.Expr(call.Callee)
	if field.Kind != ast.ExprField {
		t.Fatalf("callee kind = %v, want ExprField", field.Kind)
	}
	structLit := out.Expr(field.Base)
	if structLit.Kind != ast.ExprStructLit || len(structLit.Fields) != 2 {
		t.Fatalf("struct literal = %+v", structLit)
	}
}

func TestParseReportsUnexpectedTopLevelToken(t *testing.T) {
	_, bag := parseSrc(t, `123`)
	if bag.Len() == 0 {
		t.Fatalf("expected a diagnostic for a malformed top-level declaration")
	}
}
