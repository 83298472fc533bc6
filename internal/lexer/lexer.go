// Package lexer turns Dada source text into a token stream. Grounded on the
// teacher's internal/lexer (cursor-based scanning, a one-token lookahead
// buffer), trimmed to Dada's much smaller surface grammar — no trivia
// tracking, f-strings, or dialect evidence collection.
package lexer

import (
	"dada/internal/diag"
	"dada/internal/source"
	"dada/internal/token"
)

// Lexer converts one file's content into a stream of tokens.
type Lexer struct {
	file   *source.File
	cursor Cursor
	reporter diag.Reporter
	look   *token.Token
}

// New creates a lexer for file, reporting lexical errors to r (which may be
// diag.NopReporter{}).
func New(file *source.File, r diag.Reporter) *Lexer {
	return &Lexer{file: file, cursor: NewCursor(file), reporter: r}
}

// Next returns the next significant token. Past EOF it always returns EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	lx.skipTrivia()
	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
	}

	ch := lx.cursor.Peek()
	switch {
	case isIdentStart(ch):
		return lx.scanIdentOrKeyword()
	case isDigit(ch):
		return lx.scanNumber()
	case ch == '"':
		return lx.scanString()
	default:
		return lx.scanOperatorOrPunct()
	}
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) errLex(code diag.Code, span source.Span, msg string) {
	if lx.reporter != nil {
		lx.reporter.Report(code, diag.SevError, span, msg, nil, nil)
	}
}

func (lx *Lexer) skipTrivia() {
	for {
		switch ch := lx.cursor.Peek(); {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			lx.cursor.Bump()
		case ch == '/' && lx.cursor.PeekAt(1) == '/':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
		default:
			return
		}
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentCont(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func (lx *Lexer) scanIdentOrKeyword() token.Token {
	m := lx.cursor.Mark()
	for isIdentCont(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	span := lx.cursor.SpanFrom(m)
	text := string(lx.file.Content[span.Start:span.End])
	if kw, ok := token.Lookup(text); ok {
		return token.Token{Kind: kw, Span: span, Text: text}
	}
	return token.Token{Kind: token.Ident, Span: span, Text: text}
}

func (lx *Lexer) scanNumber() token.Token {
	m := lx.cursor.Mark()
	for isDigit(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	kind := token.IntLit
	if lx.cursor.Peek() == '.' && isDigit(lx.cursor.PeekAt(1)) {
		kind = token.FloatLit
		lx.cursor.Bump()
		for isDigit(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}
	// trailing 'u' marks an unsigned literal: 3u, 300u.
	if kind == token.IntLit && lx.cursor.Peek() == 'u' {
		lx.cursor.Bump()
		kind = token.UintLit
	}
	span := lx.cursor.SpanFrom(m)
	return token.Token{Kind: kind, Span: span, Text: string(lx.file.Content[span.Start:span.End])}
}

func (lx *Lexer) scanString() token.Token {
	m := lx.cursor.Mark()
	lx.cursor.Bump() // opening quote
	for {
		if lx.cursor.EOF() {
			span := lx.cursor.SpanFrom(m)
			lx.errLex(diag.LexUnterminatedString, span, "unterminated string literal")
			return token.Token{Kind: token.Invalid, Span: span, Text: string(lx.file.Content[span.Start:span.End])}
		}
		ch := lx.cursor.Bump()
		if ch == '\\' {
			lx.cursor.Bump()
			continue
		}
		if ch == '"' {
			break
		}
	}
	span := lx.cursor.SpanFrom(m)
	return token.Token{Kind: token.StringLit, Span: span, Text: string(lx.file.Content[span.Start:span.End])}
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	m := lx.cursor.Mark()
	ch := lx.cursor.Bump()
	kind := func() token.Kind {
		switch ch {
		case '+':
			return token.Plus
		case '-':
			if lx.cursor.Eat('>') {
				return token.Arrow
			}
			return token.Minus
		case '*':
			return token.Star
		case '/':
			return token.Slash
		case '%':
			return token.Percent
		case '=':
			if lx.cursor.Eat('=') {
				return token.EqEq
			}
			if lx.cursor.Eat('>') {
				return token.FatArrow
			}
			return token.Assign
		case '!':
			if lx.cursor.Eat('=') {
				return token.BangEq
			}
			return token.Bang
		case '<':
			if lx.cursor.Eat('=') {
				return token.LtEq
			}
			return token.Lt
		case '>':
			if lx.cursor.Eat('=') {
				return token.GtEq
			}
			return token.Gt
		case '&':
			return token.Amp
		case '.':
			return token.Dot
		case ',':
			return token.Comma
		case ':':
			if lx.cursor.Eat(':') {
				return token.ColonColon
			}
			return token.Colon
		case ';':
			return token.Semicolon
		case '(':
			return token.LParen
		case ')':
			return token.RParen
		case '{':
			return token.LBrace
		case '}':
			return token.RBrace
		case '[':
			return token.LBracket
		case ']':
			return token.RBracket
		case '?':
			return token.Question
		default:
			return token.Invalid
		}
	}()
	span := lx.cursor.SpanFrom(m)
	tok := token.Token{Kind: kind, Span: span, Text: string(lx.file.Content[span.Start:span.End])}
	if kind == token.Invalid {
		lx.errLex(diag.LexUnknownChar, span, "unexpected character "+tok.Text)
	}
	return tok
}
