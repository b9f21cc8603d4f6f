package token

var keywords = map[string]Kind{
	"let":     KwLet,
	"mut":     KwMut,
	"move":    KwMove,
	"copy":    KwCopy,
	"clone":   KwClone,
	"borrow":  KwBorrow,
	"push":    KwPush,
	"set":     KwSet,
	"clear":   KwClear,
	"use":     KwUse,
	"len":     KwLen,
	"consume": KwConsume,
	"assert":  KwAssert,
	"expect":  KwExpect,
	"true":    KwTrue,
	"false":   KwFalse,
}

// LookupKeyword returns the keyword kind for ident, if any.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
