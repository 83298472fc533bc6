package parser

import (
	"dada/internal/ast"
	"dada/internal/source"
	"dada/internal/token"
)

// parseFn parses `[async] fn name[generics](params) -> RetType where ... { body }`.
func (p *Parser) parseFn() ast.Item {
	start := p.cur.Span
	isAsync := false
	if _, ok := p.eat(token.KwAsync); ok {
		isAsync = true
	}
	p.expect(token.KwFn, "'fn'")
	name := p.expect(token.Ident, "a function name")

	var generics []source.StringID
	if _, ok := p.eat(token.LBracket); ok {
		for !p.at(token.RBracket) && !p.at(token.EOF) {
			g := p.expect(token.Ident, "a generic parameter")
			generics = append(generics, p.intern(g.Text))
			if _, ok := p.eat(token.Comma); !ok {
				break
			}
		}
		p.expect(token.RBracket, "']'")
	}

	params := p.parseParams()

	retTy := ast.NoTypeID
	if _, ok := p.eat(token.Arrow); ok {
		retTy = p.parseType()
	}

	var where []ast.WhereClause
	if _, ok := p.eat(token.KwWhere); ok {
		where = p.parseWhereList()
	}

	body := p.parseBlock()

	return ast.Item{
		Kind: ast.ItemFn, Span: start,
		Name: p.intern(name.Text), Generics: generics, Params: params,
		ReturnType: retTy, IsAsync: isAsync, Where: where, Body: body,
	}
}

func (p *Parser) parseParams() []ast.Param {
	p.expect(token.LParen, "'('")
	var params []ast.Param
	for !p.at(token.RParen) && !p.at(token.EOF) {
		name := p.expect(token.Ident, "a parameter name")
		p.expect(token.Colon, "':'")
		ty := p.parseType()
		params = append(params, ast.Param{Name: p.intern(name.Text), Type: ty})
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RParen, "')'")
	return params
}

func (p *Parser) parseWhereList() []ast.WhereClause {
	var clauses []ast.WhereClause
	for {
		name := p.expect(token.Ident, "a generic parameter")
		p.expect(token.Colon, "':'")
		predName := p.expect(token.Ident, "a predicate (Shared/Unique/Owned/Lent)")
		clauses = append(clauses, ast.WhereClause{
			Param:     p.intern(name.Text),
			Predicate: wherePredicateOf(predName.Text),
		})
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	return clauses
}

func wherePredicateOf(name string) ast.WherePredicate {
	switch name {
	case "Unique", "Move":
		return ast.WhereIsUnique
	case "Owned":
		return ast.WhereIsOwned
	case "Lent":
		return ast.WhereIsLent
	default: // "Shared" and anything unrecognized default to the weakest bound
		return ast.WhereIsShared
	}
}

// parseAggregate parses `(struct|class) Name { field: Type, ... }`.
func (p *Parser) parseAggregate() ast.Item {
	start := p.cur.Span
	kind := ast.AggregateStruct
	if _, ok := p.eat(token.KwClass); ok {
		kind = ast.AggregateClass
	} else {
		p.expect(token.KwStruct, "'struct' or 'class'")
	}
	name := p.expect(token.Ident, "an aggregate name")
	p.expect(token.LBrace, "'{'")

	var fields []ast.Field
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fname := p.expect(token.Ident, "a field name")
		p.expect(token.Colon, "':'")
		ty := p.parseType()
		fields = append(fields, ast.Field{Name: p.intern(fname.Text), Type: ty})
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RBrace, "'}'")

	return ast.Item{
		Kind: ast.ItemAggregate, Span: start,
		Name: p.intern(name.Text), AggregateKind: kind, Fields: fields,
	}
}
