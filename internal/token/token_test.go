package token

import "testing"

func TestLookupFindsKeywords(t *testing.T) {
	k, ok := Lookup("fn")
	if !ok || k != KwFn {
		t.Fatalf("Lookup(fn) = %v, %v; want KwFn, true", k, ok)
	}
	k, ok = Lookup("mut")
	if !ok || k != KwMut {
		t.Fatalf("Lookup(mut) = %v, %v; want KwMut, true", k, ok)
	}
}

func TestLookupRejectsOrdinaryIdent(t *testing.T) {
	if _, ok := Lookup("widget"); ok {
		t.Fatalf("Lookup(widget) unexpectedly matched a keyword")
	}
}

func TestIsKeywordAndIsPermission(t *testing.T) {
	if !KwAsync.IsKeyword() {
		t.Fatalf("KwAsync.IsKeyword() = false, want true")
	}
	if Ident.IsKeyword() {
		t.Fatalf("Ident.IsKeyword() = true, want false")
	}
	if !KwMut.IsPermission() {
		t.Fatalf("KwMut.IsPermission() = false, want true")
	}
	if KwFn.IsPermission() {
		t.Fatalf("KwFn.IsPermission() = true, want false")
	}
}

func TestIsLiteral(t *testing.T) {
	for _, k := range []Kind{IntLit, UintLit, FloatLit, StringLit} {
		if !k.IsLiteral() {
			t.Fatalf("%v.IsLiteral() = false, want true", k)
		}
	}
	if KwFn.IsLiteral() {
		t.Fatalf("KwFn.IsLiteral() = true, want false")
	}
}
