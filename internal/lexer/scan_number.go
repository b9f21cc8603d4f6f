package lexer

import (
	"ownsim/internal/diag"
	"ownsim/internal/token"
)

// scanNumber accepts 0, 123, 1_000, 2.5, 1e3 and 1.5e-3. Signs are
// separate Minus tokens.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	lx.digits()

	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '.' && isDec(b1) {
		kind = token.FloatLit
		lx.cursor.Bump()
		lx.digits()
	}

	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		kind = token.FloatLit
		lx.cursor.Bump()
		if b := lx.cursor.Peek(); b == '+' || b == '-' {
			lx.cursor.Bump()
		}
		if !isDec(lx.cursor.Peek()) {
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexBadNumber, sp, "expected digit after exponent")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		}
		lx.digits()
	}

	// 12abc is one bad token rather than a number followed by a name
	if isIdentStartByte(lx.cursor.Peek()) {
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexBadNumber, sp, "malformed number literal "+lx.text(sp))
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) digits() {
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
}
