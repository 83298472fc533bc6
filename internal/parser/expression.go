package parser

import (
	"strconv"
	"strings"

	"dada/internal/ast"
	"dada/internal/diag"
	"dada/internal/token"
)

// binaryPrec gives each binary operator's precedence; higher binds tighter.
// Grounded on the teacher's op_table.go precedence-climbing shape, trimmed
// to the operators objectir.BinaryOpKind names.
var binaryPrec = map[token.Kind]int{
	token.EqEq:    1,
	token.BangEq:  1,
	token.Lt:      1,
	token.LtEq:    1,
	token.Gt:      1,
	token.GtEq:    1,
	token.Plus:    2,
	token.Minus:   2,
	token.Star:    3,
	token.Slash:   3,
	token.Percent: 3,
}

var binaryOpOf = map[token.Kind]ast.BinaryOp{
	token.Plus:    ast.OpAdd,
	token.Minus:   ast.OpSub,
	token.Star:    ast.OpMul,
	token.Slash:   ast.OpDiv,
	token.EqEq:    ast.OpEq,
	token.BangEq:  ast.OpNotEq,
	token.Lt:      ast.OpLess,
	token.LtEq:    ast.OpLessEqual,
	token.Gt:      ast.OpGreater,
	token.GtEq:    ast.OpGreaterEqual,
}

// parseBlock parses `{ stmt* }`, collecting the statement sequence into a
// single ExprBlock node whose Stmts keep source order; the body checker
// walks them in that order.
func (p *Parser) parseBlock() ast.ExprID {
	start := p.cur.Span
	p.expect(token.LBrace, "'{'")
	var stmts []ast.ExprID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		stmts = append(stmts, p.parseStmt())
	}
	p.expect(token.RBrace, "'}'")
	return p.out.AddExpr(ast.Expr{Kind: ast.ExprBlock, Span: start, Stmts: stmts})
}

// parseStmt parses one statement: `let`, `return`, or an expression
// optionally followed by `;`.
func (p *Parser) parseStmt() ast.ExprID {
	switch p.cur.Kind {
	case token.KwLet:
		return p.parseLet()
	case token.KwReturn:
		start := p.advance().Span
		var operand ast.ExprID = ast.NoExprID
		if !p.at(token.Semicolon) && !p.at(token.RBrace) {
			operand = p.parseExpr()
		}
		p.eat(token.Semicolon)
		return p.out.AddExpr(ast.Expr{Kind: ast.ExprReturn, Span: start, Operand: operand})
	default:
		e := p.parseExpr()
		p.eat(token.Semicolon)
		return e
	}
}

// parseLet parses `let name[: Type] = init;`. The `body` field is left
// NoExprID here — the statements after the let stay in the enclosing
// block's statement list, matching the surface grammar (no `in` keyword);
// no later pass fills Body in.
func (p *Parser) parseLet() ast.ExprID {
	start := p.advance().Span // 'let'
	name := p.expect(token.Ident, "a binding name")
	ty := ast.NoTypeID
	if _, ok := p.eat(token.Colon); ok {
		ty = p.parseType()
	}
	p.expect(token.Assign, "'='")
	init := p.parseExpr()
	p.eat(token.Semicolon)
	return p.out.AddExpr(ast.Expr{
		Kind: ast.ExprLet, Span: start,
		LetName: p.intern(name.Text), LetType: ty, Init: init, Body: ast.NoExprID,
	})
}

// parseExpr parses an assignment-or-lower expression.
func (p *Parser) parseExpr() ast.ExprID {
	left := p.parseBinary(0)
	if _, ok := p.eat(token.Assign); ok {
		start := p.cur.Span
		value := p.parseExpr()
		return p.out.AddExpr(ast.Expr{Kind: ast.ExprAssign, Span: start, Target: left, Value: value})
	}
	return left
}

func (p *Parser) parseBinary(minPrec int) ast.ExprID {
	left := p.parseUnary()
	for {
		prec, ok := binaryPrec[p.cur.Kind]
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.advance()
		right := p.parseBinary(prec + 1)
		left = p.out.AddExpr(ast.Expr{
			Kind: ast.ExprBinary, Span: opTok.Span,
			Op: binaryOpOf[opTok.Kind], Left: left, Right: right,
		})
	}
}

func (p *Parser) parseUnary() ast.ExprID {
	if _, ok := p.eat(token.Bang); ok {
		start := p.cur.Span
		operand := p.parseUnary()
		return p.out.AddExpr(ast.Expr{Kind: ast.ExprNot, Span: start, Operand: operand})
	}
	return p.parsePostfix()
}

// parsePostfix handles call, field access, and the surface permission
// operators (`.share`, `.lease`, `.give`), which the lexer has no special
// knowledge of — they are ordinary field names the lowering pass
// recognizes by name.
func (p *Parser) parsePostfix() ast.ExprID {
	e := p.parsePrimary()
	for {
		switch p.cur.Kind {
		case token.Dot:
			p.advance()
			field := p.expect(token.Ident, "a field or method name")
			e = p.out.AddExpr(ast.Expr{Kind: ast.ExprField, Span: field.Span, Base: e, Field: p.intern(field.Text)})
		case token.LParen:
			start := p.advance().Span
			var args []ast.ExprID
			for !p.at(token.RParen) && !p.at(token.EOF) {
				args = append(args, p.parseExpr())
				if _, ok := p.eat(token.Comma); !ok {
					break
				}
			}
			p.expect(token.RParen, "')'")
			e = p.out.AddExpr(ast.Expr{Kind: ast.ExprCall, Span: start, Callee: e, Args: args})
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() ast.ExprID {
	start := p.cur.Span
	switch p.cur.Kind {
	case token.IntLit:
		t := p.advance()
		return p.out.AddExpr(ast.Expr{Kind: ast.ExprIntLit, Span: start, IntVal: parseInt(t.Text)})
	case token.UintLit:
		t := p.advance()
		return p.out.AddExpr(ast.Expr{Kind: ast.ExprUintLit, Span: start, UintVal: parseUint(t.Text)})
	case token.FloatLit:
		t := p.advance()
		return p.out.AddExpr(ast.Expr{Kind: ast.ExprFloatLit, Span: start, FloatVal: parseFloat(t.Text)})
	case token.StringLit:
		t := p.advance()
		return p.out.AddExpr(ast.Expr{Kind: ast.ExprStringLit, Span: start, StringVal: p.intern(decodeString(t.Text))})
	case token.KwTrue, token.KwFalse:
		t := p.advance()
		return p.out.AddExpr(ast.Expr{Kind: ast.ExprBoolLit, Span: start, BoolVal: t.Kind == token.KwTrue})
	case token.KwAwait:
		p.advance()
		operand := p.parseUnary()
		return p.out.AddExpr(ast.Expr{Kind: ast.ExprAwait, Span: start, Operand: operand})
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwMatch:
		return p.parseMatch()
	case token.LBrace:
		return p.parseBlock()
	case token.LParen:
		p.advance()
		if _, ok := p.eat(token.RParen); ok {
			return p.out.AddExpr(ast.Expr{Kind: ast.ExprTupleLit, Span: start})
		}
		first := p.parseExpr()
		if _, ok := p.eat(token.Comma); !ok {
			p.expect(token.RParen, "')'")
			return first
		}
		elems := []ast.ExprID{first}
		for !p.at(token.RParen) && !p.at(token.EOF) {
			elems = append(elems, p.parseExpr())
			if _, ok := p.eat(token.Comma); !ok {
				break
			}
		}
		p.expect(token.RParen, "')'")
		return p.out.AddExpr(ast.Expr{Kind: ast.ExprTupleLit, Span: start, Elems: elems})
	case token.Ident:
		return p.parseIdentOrStructLit()
	default:
		diag.ReportError(p.reporter, diag.SynUnexpectedToken, p.cur.Span,
			"expected an expression, found \""+p.cur.Text+"\"").Emit()
		p.advance()
		return p.out.AddExpr(ast.Expr{Kind: ast.ExprError, Span: start, Reported: true})
	}
}

func (p *Parser) parseIdentOrStructLit() ast.ExprID {
	start := p.cur.Span
	name := p.advance()
	if !p.at(token.LBrace) {
		return p.out.AddExpr(ast.Expr{Kind: ast.ExprIdent, Span: start, Name: p.intern(name.Text)})
	}
	p.advance() // '{'
	var fields []ast.StructField
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fname := p.expect(token.Ident, "a field name")
		p.expect(token.Colon, "':'")
		value := p.parseExpr()
		fields = append(fields, ast.StructField{Name: p.intern(fname.Text), Value: value})
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RBrace, "'}'")
	return p.out.AddExpr(ast.Expr{
		Kind: ast.ExprStructLit, Span: start,
		StructName: p.intern(name.Text), Fields: fields,
	})
}

func (p *Parser) parseIf() ast.ExprID {
	start := p.advance().Span // 'if'
	cond := p.parseExpr()
	then := p.parseBlock()
	elseBranch := ast.NoExprID
	if _, ok := p.eat(token.KwElse); ok {
		if p.at(token.KwIf) {
			elseBranch = p.parseIf()
		} else {
			elseBranch = p.parseBlock()
		}
	}
	return p.out.AddExpr(ast.Expr{Kind: ast.ExprIf, Span: start, Cond: cond, Then: then, Else: elseBranch})
}

func (p *Parser) parseWhile() ast.ExprID {
	start := p.advance().Span // 'while'
	cond := p.parseExpr()
	body := p.parseBlock()
	return p.out.AddExpr(ast.Expr{Kind: ast.ExprWhile, Span: start, Cond: cond, Then: body})
}

// parseMatch parses `match scrutinee { cond => body, ..., => default }`.
// The final, unconditional arm has its Cond left NoExprID.
func (p *Parser) parseMatch() ast.ExprID {
	start := p.advance().Span // 'match'
	scrutinee := p.parseExpr()
	p.expect(token.LBrace, "'{'")

	var arms []ast.MatchArm
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		cond := ast.NoExprID
		if !p.at(token.FatArrow) {
			cond = p.parseExpr()
		}
		p.expect(token.FatArrow, "'=>'")
		body := p.parseExpr()
		arms = append(arms, ast.MatchArm{Cond: cond, Body: body})
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RBrace, "'}'")
	return p.out.AddExpr(ast.Expr{Kind: ast.ExprMatch, Span: start, Scrutinee: scrutinee, Arms: arms})
}

// parseInt/parseUint/parseFloat convert literal token text into values.
// The lexer has already validated the character classes, so malformed
// input here would indicate a lexer bug rather than a user error; errors
// are swallowed to zero values rather than reported a second time.
func parseInt(text string) int64 {
	v, _ := strconv.ParseInt(text, 10, 64)
	return v
}

func parseUint(text string) uint64 {
	v, _ := strconv.ParseUint(strings.TrimSuffix(text, "u"), 10, 64)
	return v
}

func parseFloat(text string) float64 {
	v, _ := strconv.ParseFloat(text, 64)
	return v
}

// decodeString strips the surrounding quotes and resolves backslash
// escapes in a scanned string-literal token's raw text.
func decodeString(text string) string {
	if len(text) >= 2 {
		text = text[1 : len(text)-1]
	}
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch != '\\' || i+1 >= len(text) {
			b.WriteByte(ch)
			continue
		}
		i++
		switch text[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(text[i])
		}
	}
	return b.String()
}
