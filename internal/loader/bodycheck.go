package loader

import (
	"context"

	"dada/internal/ast"
	"dada/internal/check"
	"dada/internal/diag"
	"dada/internal/lower"
	"dada/internal/source"
	"dada/internal/symir"
)

// bodyScope tracks each local binding's symbolic type for one function
// body walk: parameters seed it, and a `let` extends it for the rest of the
// enclosing block.
type bodyScope struct {
	vars map[source.StringID]symir.TyID
}

func newBodyScope(sig symir.SymFunctionSignature) *bodyScope {
	vars := make(map[source.StringID]symir.TyID, len(sig.ParamNames))
	for i, name := range sig.ParamNames {
		if i < len(sig.InputTys) {
			vars[name] = sig.InputTys[i]
		}
	}
	return &bodyScope{vars: vars}
}

func (s *bodyScope) clone() *bodyScope {
	cp := make(map[source.StringID]symir.TyID, len(s.vars))
	for k, v := range s.vars {
		cp[k] = v
	}
	return &bodyScope{vars: cp}
}

// bodyChecker carries everything needed to walk one function's body: the
// driver its obligations are checked against, the lowerer for resolving
// body-level type annotations, the name table of sibling functions a call
// might target, and where to report a failed obligation.
type bodyChecker struct {
	ctx        context.Context
	driver     *check.Driver
	lw         *lower.Lowerer
	sigsByName map[source.StringID]symir.SymFunctionSignature
	reporter   diag.Reporter
}

// checkFunctionBody walks item's body (if it has one — generic where-clause
// seeding alone covers signature-only declarations), checking call
// arguments, assignments, and share conversions against the scope the
// signature declares. Expression forms this pass can't yet resolve a type
// for (anything beyond identifiers, literals, calls, blocks, and `.share`
// field accesses) are walked
// for their children and otherwise left unchecked, rather than guessed at —
// body lowering into a fully typed IR is future work (see lower package's
// doc comment on stopping at signatures).
func checkFunctionBody(ctx context.Context, driver *check.Driver, lw *lower.Lowerer, item ast.Item, sig symir.SymFunctionSignature, sigsByName map[source.StringID]symir.SymFunctionSignature, reporter diag.Reporter) {
	if item.Body == ast.NoExprID {
		return
	}
	bc := &bodyChecker{ctx: ctx, driver: driver, lw: lw, sigsByName: sigsByName, reporter: reporter}
	bc.walk(item, item.Body, newBodyScope(sig))
}

func (bc *bodyChecker) report(span source.Span, err error) {
	if err == nil {
		return
	}
	reported, ok := err.(check.Reported)
	if !ok {
		return // context cancellation or similar; nothing to surface as a diagnostic
	}
	diag.ReportError(bc.reporter, diag.SemaBorrowConflict, span, reported.Reason).Emit()
}

func (bc *bodyChecker) walk(item ast.Item, id ast.ExprID, scope *bodyScope) {
	if id == ast.NoExprID {
		return
	}
	e := bc.lw.File.Expr(id)
	switch e.Kind {
	case ast.ExprBlock:
		for _, s := range e.Stmts {
			bc.walk(item, s, scope)
		}
	case ast.ExprLet:
		bc.walk(item, e.Init, scope)
		next := scope.clone()
		bc.checkLet(item, e, next)
		bc.walk(item, e.Body, next)
	case ast.ExprAssign:
		bc.walk(item, e.Target, scope)
		bc.walk(item, e.Value, scope)
		bc.checkAssign(item, e, scope)
	case ast.ExprCall:
		bc.walk(item, e.Callee, scope)
		for _, a := range e.Args {
			bc.walk(item, a, scope)
		}
		bc.checkCall(item, e, scope)
	case ast.ExprField:
		bc.walk(item, e.Base, scope)
	case ast.ExprIf:
		bc.walk(item, e.Cond, scope)
		bc.walk(item, e.Then, scope)
		bc.walk(item, e.Else, scope)
	case ast.ExprWhile:
		bc.walk(item, e.Cond, scope)
		bc.walk(item, e.Then, scope)
	case ast.ExprMatch:
		bc.walk(item, e.Scrutinee, scope)
		for _, arm := range e.Arms {
			bc.walk(item, arm.Cond, scope)
			bc.walk(item, arm.Body, scope)
		}
	case ast.ExprBinary:
		bc.walk(item, e.Left, scope)
		bc.walk(item, e.Right, scope)
	case ast.ExprNot, ast.ExprReturn, ast.ExprAwait:
		bc.walk(item, e.Operand, scope)
	case ast.ExprTupleLit:
		for _, el := range e.Elems {
			bc.walk(item, el, scope)
		}
	case ast.ExprStructLit:
		for _, f := range e.Fields {
			bc.walk(item, f.Value, scope)
		}
	}
}

// checkLet handles one `let` binding. `let x = if cond { a } else { b };`
// with no explicit annotation is spec.md §8 scenario 6's inference
// convergence: each arm's permission splices into a fresh result variable
// and the walk binds x to that converging permission rather than either
// arm's concrete one. An explicit annotation instead checks the
// initializer against the declared type directly.
func (bc *bodyChecker) checkLet(item ast.Item, e ast.Expr, scope *bodyScope) {
	if e.LetType == ast.NoTypeID {
		if init := bc.lw.File.Expr(e.Init); init.Kind == ast.ExprIf {
			if ty, ok := bc.checkIfConverges(item, init, scope); ok {
				scope.vars[e.LetName] = ty
				return
			}
		}
		if ty, ok := bc.exprTy(e.Init, scope); ok {
			scope.vars[e.LetName] = ty
		}
		return
	}

	declaredTy := bc.lw.LowerBodyType(item, e.LetType)
	valueTy, ok := bc.exprTy(e.Init, scope)
	scope.vars[e.LetName] = declaredTy
	if !ok {
		return
	}
	err := bc.driver.RequireAssignable(bc.ctx, valueTy, declaredTy, declaredPerm(bc.driver, declaredTy), check.OrElse(func() check.Reported {
		return check.Reported{Reason: "let binding's initializer is not assignable to its declared type"}
	}))
	bc.report(e.Span, err)
}

// checkIfConverges drives Driver.RequireConverge for an if/else used
// directly as a let initializer, returning the converging type (base type
// wrapped in the fresh inference permission) the binding should carry.
func (bc *bodyChecker) checkIfConverges(item ast.Item, ifExpr ast.Expr, scope *bodyScope) (symir.TyID, bool) {
	thenTy, thenOk := bc.branchTailTy(ifExpr.Then, scope)
	elseTy, elseOk := bc.branchTailTy(ifExpr.Else, scope)
	if !thenOk || !elseOk {
		return symir.NoTyID, false
	}
	thenBase, thenPerm := splitPerm(bc.driver.Arena, thenTy)
	elseBase, elsePerm := splitPerm(bc.driver.Arena, elseTy)
	if thenBase != elseBase {
		return symir.NoTyID, false
	}

	v := bc.driver.Arena.FreshVar()
	_, err := bc.driver.RequireConverge(bc.ctx, v, thenBase, []symir.PermID{thenPerm, elsePerm}, check.OrElse(func() check.Reported {
		return check.Reported{Reason: "if/else branches do not converge to a common permission"}
	}))
	if err != nil {
		bc.report(ifExpr.Span, err)
		return symir.NoTyID, false
	}
	resultPerm := bc.driver.Arena.InternPerm(symir.SymPerm{Kind: symir.PermInfer, Var: v})
	return bc.driver.Arena.InternTy(symir.SymTy{Kind: symir.TyPerm, Perm: resultPerm, Base: thenBase}), true
}

func (bc *bodyChecker) branchTailTy(id ast.ExprID, scope *bodyScope) (symir.TyID, bool) {
	if id == ast.NoExprID {
		return symir.NoTyID, false
	}
	e := bc.lw.File.Expr(id)
	if e.Kind == ast.ExprBlock {
		if len(e.Stmts) == 0 {
			return symir.NoTyID, false
		}
		return bc.exprTy(e.Stmts[len(e.Stmts)-1], scope)
	}
	return bc.exprTy(id, scope)
}

// splitPerm separates a (possibly TyPerm-wrapped) type into its base type
// and permission, defaulting to `my` for a type with no explicit prefix.
func splitPerm(arena *symir.Arena, ty symir.TyID) (symir.TyID, symir.PermID) {
	t := arena.Ty(ty)
	if t.Kind == symir.TyPerm {
		return t.Base, t.Perm
	}
	return ty, arena.My()
}

func declaredPerm(driver *check.Driver, ty symir.TyID) symir.PermID {
	_, perm := splitPerm(driver.Arena, ty)
	return perm
}

// checkAssign requires the assigned value's type to fit the target's
// declared type and the target's permission to be provably Unique.
func (bc *bodyChecker) checkAssign(item ast.Item, e ast.Expr, scope *bodyScope) {
	target := bc.lw.File.Expr(e.Target)
	if target.Kind != ast.ExprIdent {
		return
	}
	targetTy, ok := scope.vars[target.Name]
	if !ok {
		return
	}
	valueTy, ok := bc.exprTy(e.Value, scope)
	if !ok {
		return
	}
	err := bc.driver.RequireAssignable(bc.ctx, valueTy, targetTy, declaredPerm(bc.driver, targetTy), check.OrElse(func() check.Reported {
		return check.Reported{Reason: "assigned value is not assignable to the target's declared type"}
	}))
	bc.report(e.Span, err)
}

// checkCall requires each call argument's type to fit the callee's declared
// parameter type, when the callee is a plain identifier naming a function
// declared in this file and every argument's type is resolvable.
func (bc *bodyChecker) checkCall(item ast.Item, e ast.Expr, scope *bodyScope) {
	callee := bc.lw.File.Expr(e.Callee)
	if callee.Kind != ast.ExprIdent {
		return
	}
	sig, ok := bc.sigsByName[callee.Name]
	if !ok {
		return
	}
	argTys := make([]symir.TyID, 0, len(e.Args))
	for _, a := range e.Args {
		ty, ok := bc.exprTy(a, scope)
		if !ok {
			return // can't resolve every argument's type; skip rather than risk a false reject
		}
		argTys = append(argTys, ty)
	}
	_, err := bc.driver.CheckCall(bc.ctx, argTys, sig.InputTys, check.OrElse(func() check.Reported {
		return check.Reported{Reason: "call argument is not assignable to the declared parameter type"}
	}))
	bc.report(e.Span, err)
}

// exprTy resolves the small subset of expression forms this pass can assign
// a symir.TyID to without a full body-typing pass: identifiers bound in
// scope, literals, calls to a known sibling function, `.share` field
// accesses, and blocks (by their tail expression).
func (bc *bodyChecker) exprTy(id ast.ExprID, scope *bodyScope) (symir.TyID, bool) {
	if id == ast.NoExprID {
		return symir.NoTyID, false
	}
	e := bc.lw.File.Expr(id)
	switch e.Kind {
	case ast.ExprIdent:
		ty, ok := scope.vars[e.Name]
		return ty, ok
	case ast.ExprIntLit:
		return bc.driver.Arena.NamedInt(true, 32), true
	case ast.ExprUintLit:
		return bc.driver.Arena.NamedInt(false, 32), true
	case ast.ExprFloatLit:
		return bc.driver.Arena.NamedFloat(64), true
	case ast.ExprBoolLit:
		return bc.driver.Arena.NamedPrimitive(symir.HeadBool), true
	case ast.ExprStringLit:
		return bc.stringTy(), true
	case ast.ExprCall:
		callee := bc.lw.File.Expr(e.Callee)
		if callee.Kind != ast.ExprIdent {
			return symir.NoTyID, false
		}
		sig, ok := bc.sigsByName[callee.Name]
		if !ok {
			return symir.NoTyID, false
		}
		return sig.OutputTy, true
	case ast.ExprField:
		if bc.lw.Interner.MustLookup(e.Field) != "share" {
			return symir.NoTyID, false
		}
		baseTy, ok := bc.exprTy(e.Base, scope)
		if !ok {
			return symir.NoTyID, false
		}
		base, perm := splitPerm(bc.driver.Arena, baseTy)
		sharedPerm, err := bc.driver.CheckShare(bc.ctx, perm, check.OrElse(func() check.Reported {
			return check.Reported{Reason: "share requires an owned value"}
		}))
		if err != nil {
			bc.report(e.Span, err)
			return symir.NoTyID, false
		}
		return bc.driver.Arena.InternTy(symir.SymTy{Kind: symir.TyPerm, Perm: sharedPerm, Base: base}), true
	case ast.ExprBlock:
		if len(e.Stmts) == 0 {
			return bc.driver.Arena.NamedTuple(nil), true
		}
		return bc.exprTy(e.Stmts[len(e.Stmts)-1], scope)
	default:
		return symir.NoTyID, false
	}
}

func (bc *bodyChecker) stringTy() symir.TyID {
	name := bc.lw.Interner.Intern("String")
	base := bc.driver.Arena.NamedAggregate(name, nil)
	return bc.driver.Arena.InternTy(symir.SymTy{Kind: symir.TyPerm, Perm: bc.driver.Arena.My(), Base: base})
}
