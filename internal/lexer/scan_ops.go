package lexer

import (
	"ownsim/internal/diag"
	"ownsim/internal/token"
)

// pairs are matched before singles so "->" never lexes as "-" ">".
var (
	pairs = map[[2]byte]token.Kind{
		{'-', '>'}: token.Arrow,
		{'=', '='}: token.EqEq,
	}
	singles = map[byte]token.Kind{
		'=': token.Assign,
		'-': token.Minus,
		'&': token.Amp,
		',': token.Comma,
		';': token.Semicolon,
		'(': token.LParen,
		')': token.RParen,
		'{': token.LBrace,
		'}': token.RBrace,
	}
)

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	kind := token.Invalid
	if b0, b1, ok := lx.cursor.Peek2(); ok {
		if k, hit := pairs[[2]byte{b0, b1}]; hit {
			lx.cursor.Bump()
			lx.cursor.Bump()
			kind = k
		}
	}
	if kind == token.Invalid {
		if k, hit := singles[lx.cursor.Peek()]; hit {
			lx.cursor.Bump()
			kind = k
		}
	}

	if kind == token.Invalid {
		r, _ := lx.peekRune()
		lx.bumpRune()
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnknownChar, sp, "unknown character "+quoteRune(r))
		return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}
