package lexer

import (
	"ownsim/internal/diag"
	"ownsim/internal/token"
)

// scanIdentOrKeyword reads a name and returns a keyword token when the
// name is reserved.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	if r, size := lx.peekRune(); size == 0 || !isIdentStartRune(r) {
		lx.bumpRune()
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnknownChar, sp, "unknown character "+quoteRune(r))
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	lx.bumpRune()
	for !lx.cursor.EOF() {
		if b := lx.cursor.Peek(); b < utf8RuneSelf {
			if !isIdentContinueByte(b) {
				break
			}
			lx.cursor.Bump()
			continue
		}
		if r, _ := lx.peekRune(); !isIdentContinueRune(r) {
			break
		}
		lx.bumpRune()
	}

	sp := lx.cursor.SpanFrom(start)
	text := lx.text(sp)
	kind := token.Ident
	if k, ok := token.LookupKeyword(text); ok {
		kind = k
	}
	return token.Token{Kind: kind, Span: sp, Text: text}
}
