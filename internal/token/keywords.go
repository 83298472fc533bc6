package token

var keywords = map[string]Kind{
	"fn":       KwFn,
	"let":      KwLet,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"for":      KwFor,
	"in":       KwIn,
	"return":   KwReturn,
	"match":    KwMatch,
	"async":    KwAsync,
	"await":    KwAwait,
	"class":    KwClass,
	"struct":   KwStruct,
	"where":    KwWhere,
	"import":   KwImport,
	"true":     KwTrue,
	"false":    KwFalse,
	"my":       KwMy,
	"our":      KwOur,
	"mut":      KwMut,
	"ref":      KwRef,
}

// Lookup reports the keyword Kind for an identifier's text, or (Ident,
// false) if text is an ordinary identifier.
func Lookup(text string) (Kind, bool) {
	k, ok := keywords[text]
	return k, ok
}
