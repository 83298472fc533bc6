package lexer

import (
	"testing"

	"dada/internal/diag"
	"dada/internal/source"
	"dada/internal/token"
)

func newTestFile(t *testing.T, content string) *source.File {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.dada", []byte(content))
	return fs.Get(id)
}

func tokenKinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	f := newTestFile(t, src)
	lx := New(f, diag.NopReporter{})
	var kinds []token.Kind
	for {
		tok := lx.Next()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == token.EOF {
			return kinds
		}
	}
}

func TestLexerScansKeywordsAndIdent(t *testing.T) {
	kinds := tokenKinds(t, "fn widget")
	want := []token.Kind{token.KwFn, token.Ident, token.EOF}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Fatalf("kinds[%d] = %v, want %v", i, kinds[i], k)
		}
	}
}

func TestLexerScansPermissionPrefixedType(t *testing.T) {
	kinds := tokenKinds(t, "mut[p] T")
	want := []token.Kind{token.KwMut, token.LBracket, token.Ident, token.RBracket, token.Ident, token.EOF}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
}

func TestLexerScansIntUintAndFloat(t *testing.T) {
	f := newTestFile(t, "3 3u 3.5")
	lx := New(f, diag.NopReporter{})

	intTok := lx.Next()
	if intTok.Kind != token.IntLit || intTok.Text != "3" {
		t.Fatalf("int token = %+v", intTok)
	}
	uintTok := lx.Next()
	if uintTok.Kind != token.UintLit || uintTok.Text != "3u" {
		t.Fatalf("uint token = %+v", uintTok)
	}
	floatTok := lx.Next()
	if floatTok.Kind != token.FloatLit || floatTok.Text != "3.5" {
		t.Fatalf("float token = %+v", floatTok)
	}
}

func TestLexerSkipsLineComments(t *testing.T) {
	kinds := tokenKinds(t, "fn // a comment\nlet")
	want := []token.Kind{token.KwFn, token.KwLet, token.EOF}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
}

func TestLexerScansString(t *testing.T) {
	f := newTestFile(t, `"hello\nworld"`)
	lx := New(f, diag.NopReporter{})
	tok := lx.Next()
	if tok.Kind != token.StringLit {
		t.Fatalf("kind = %v, want StringLit", tok.Kind)
	}
}

func TestLexerReportsUnterminatedString(t *testing.T) {
	f := newTestFile(t, `"unterminated`)
	bag := diag.NewBag(10)
	lx := New(f, diag.BagReporter{Bag: bag})
	tok := lx.Next()
	if tok.Kind != token.Invalid {
		t.Fatalf("kind = %v, want Invalid", tok.Kind)
	}
	if bag.Len() == 0 {
		t.Fatalf("expected a diagnostic for the unterminated string")
	}
}

func TestLexerPeekDoesNotConsume(t *testing.T) {
	f := newTestFile(t, "fn let")
	lx := New(f, diag.NopReporter{})
	peeked := lx.Peek()
	if peeked.Kind != token.KwFn {
		t.Fatalf("Peek() = %v, want KwFn", peeked.Kind)
	}
	next := lx.Next()
	if next.Kind != token.KwFn {
		t.Fatalf("Next() after Peek() = %v, want KwFn", next.Kind)
	}
	second := lx.Next()
	if second.Kind != token.KwLet {
		t.Fatalf("second Next() = %v, want KwLet", second.Kind)
	}
}

func TestLexerScansOperators(t *testing.T) {
	kinds := tokenKinds(t, "-> => == != <= >= :: ")
	want := []token.Kind{
		token.Arrow, token.FatArrow, token.EqEq, token.BangEq,
		token.LtEq, token.GtEq, token.ColonColon, token.EOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Fatalf("kinds[%d] = %v, want %v", i, kinds[i], k)
		}
	}
}
