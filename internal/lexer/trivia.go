package lexer

import "ownsim/internal/token"

// collectLeadingTrivia gathers whitespace and comments before a token.
// Runs of spaces/tabs and runs of newlines each become a single trivia;
// "#" and "//" comments run to the end of the line.
func (lx *Lexer) collectLeadingTrivia() {
	lx.leading = lx.leading[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		switch b := lx.cursor.Peek(); {
		case b == ' ' || b == '\t' || b == '\r':
			for b2 := lx.cursor.Peek(); b2 == ' ' || b2 == '\t' || b2 == '\r'; b2 = lx.cursor.Peek() {
				lx.cursor.Bump()
			}
			lx.leading = append(lx.leading, lx.trivia(token.TriviaSpace, start))

		case b == '\n':
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.leading = append(lx.leading, lx.trivia(token.TriviaNewline, start))

		case b == '#' || lx.atSlashSlash():
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
			lx.leading = append(lx.leading, lx.trivia(token.TriviaLineComment, start))

		default:
			return
		}
	}
}

func (lx *Lexer) atSlashSlash() bool {
	b0, b1, ok := lx.cursor.Peek2()
	return ok && b0 == '/' && b1 == '/'
}

func (lx *Lexer) trivia(kind token.TriviaKind, start Mark) token.Trivia {
	sp := lx.cursor.SpanFrom(start)
	return token.Trivia{Kind: kind, Span: sp, Text: lx.text(sp)}
}
