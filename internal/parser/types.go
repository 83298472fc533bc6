package parser

import (
	"dada/internal/ast"
	"dada/internal/token"
)

// parseType parses one type annotation: an optional permission prefix
// (`my`/`our`/`mut[places]`/`ref[places]`) applied to a named type or a
// parenthesized tuple.
func (p *Parser) parseType() ast.TypeID {
	start := p.cur.Span
	perm, places := p.parsePermPrefix()

	if p.at(token.LParen) {
		id := p.parseTupleType()
		t := p.out.Type(id)
		t.Perm, t.Places, t.Span = perm, places, start
		return p.out.AddType(t)
	}

	name := p.expect(token.Ident, "a type name")
	nameID := p.intern(name.Text)
	var args []ast.TypeID
	if _, ok := p.eat(token.LBracket); ok {
		for !p.at(token.RBracket) && !p.at(token.EOF) {
			args = append(args, p.parseType())
			if _, ok := p.eat(token.Comma); !ok {
				break
			}
		}
		p.expect(token.RBracket, "']'")
	}
	return p.out.AddType(ast.TypeSyn{
		Kind: ast.TypeNamed, Perm: perm, Places: places,
		Name: nameID, Args: args, Span: start,
	})
}

func (p *Parser) parseTupleType() ast.TypeID {
	start := p.cur.Span
	p.expect(token.LParen, "'('")
	var elems []ast.TypeID
	for !p.at(token.RParen) && !p.at(token.EOF) {
		elems = append(elems, p.parseType())
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RParen, "')'")
	return p.out.AddType(ast.TypeSyn{Kind: ast.TypeTuple, Elems: elems, Span: start})
}

// parsePermPrefix consumes a leading `my`/`our`/`mut[...]`/`ref[...]` if
// present and returns it; absence yields PermNone, which lowering turns
// into the bare base type.
func (p *Parser) parsePermPrefix() (ast.PermKind, []ast.PlacePath) {
	switch p.cur.Kind {
	case token.KwMy:
		p.advance()
		return ast.PermMy, nil
	case token.KwOur:
		p.advance()
		return ast.PermOur, nil
	case token.KwMut:
		p.advance()
		return ast.PermMut, p.parsePlaceList()
	case token.KwRef:
		p.advance()
		return ast.PermRef, p.parsePlaceList()
	default:
		return ast.PermNone, nil
	}
}

// parsePlaceList parses the `[place0, place1, ...]` suffix on `mut`/`ref`;
// an omitted bracket list means no explicit places were given.
func (p *Parser) parsePlaceList() []ast.PlacePath {
	if _, ok := p.eat(token.LBracket); !ok {
		return nil
	}
	var places []ast.PlacePath
	for !p.at(token.RBracket) && !p.at(token.EOF) {
		places = append(places, p.parsePlacePath())
		if _, ok := p.eat(token.Comma); !ok {
			break
		}
	}
	p.expect(token.RBracket, "']'")
	return places
}

func (p *Parser) parsePlacePath() ast.PlacePath {
	base := p.expect(token.Ident, "a place")
	path := ast.PlacePath{Base: p.intern(base.Text)}
	for {
		if _, ok := p.eat(token.Dot); !ok {
			break
		}
		seg := p.expect(token.Ident, "a field name")
		path.Segments = append(path.Segments, p.intern(seg.Text))
	}
	return path
}
