package token

import "dada/internal/source"

// Token represents a single source token with its location and text.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsIdent reports whether the token is a plain identifier (not a keyword).
func (t Token) IsIdent() bool { return t.Kind == Ident }
