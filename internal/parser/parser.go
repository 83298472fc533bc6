// Package parser builds an ast.File from a Dada token stream via recursive
// descent, grounded on the teacher's internal/parser (a Parser holding a
// one-token lookahead, each grammar production split into its own file,
// binary expressions parsed by precedence climbing over an operator
// table) — trimmed to Dada's much smaller surface grammar.
package parser

import (
	"dada/internal/ast"
	"dada/internal/diag"
	"dada/internal/lexer"
	"dada/internal/source"
	"dada/internal/token"
)

// Parser holds the token stream and the file under construction.
type Parser struct {
	lx       *lexer.Lexer
	interner *source.Interner
	reporter diag.Reporter

	cur  token.Token
	file *source.File
	out  *ast.File
}

// New constructs a parser over file's tokens, interning identifiers and
// string literals through interner and reporting syntax errors to r.
func New(file *source.File, interner *source.Interner, r diag.Reporter) *Parser {
	p := &Parser{
		lx:       lexer.New(file, r),
		interner: interner,
		reporter: r,
		file:     file,
		out:      ast.NewFile(file.Path),
	}
	p.cur = p.lx.Next()
	return p
}

func (p *Parser) advance() token.Token {
	t := p.cur
	p.cur = p.lx.Next()
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.cur.Kind == k }

func (p *Parser) eat(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(k token.Kind, what string) token.Token {
	if t, ok := p.eat(k); ok {
		return t
	}
	diag.ReportError(p.reporter, diag.SynUnexpectedToken, p.cur.Span,
		"expected "+what+", found \""+p.cur.Text+"\"").Emit()
	return p.cur
}

func (p *Parser) intern(text string) source.StringID {
	return p.interner.Intern(text)
}

// Parse consumes the entire token stream and returns the resulting file.
// Malformed top-level declarations are skipped to the next recognizable
// start-of-item token rather than aborting the whole parse, matching the
// lowering pass's own "emit a diagnostic and produce an Error node"
// recovery discipline.
func Parse(file *source.File, interner *source.Interner, r diag.Reporter) *ast.File {
	p := New(file, interner, r)
	for !p.at(token.EOF) {
		switch p.cur.Kind {
		case token.KwFn, token.KwAsync:
			p.out.AddItem(p.parseFn())
		case token.KwStruct, token.KwClass:
			p.out.AddItem(p.parseAggregate())
		default:
			diag.ReportError(p.reporter, diag.SynUnexpectedToken, p.cur.Span,
				"expected a top-level declaration, found \""+p.cur.Text+"\"").Emit()
			p.advance()
		}
	}
	return p.out
}
