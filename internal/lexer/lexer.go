package lexer

import (
	"ownsim/internal/source"
	"ownsim/internal/token"
)

// Lexer turns one script file into tokens. Whitespace and comments are
// attached to the following token as leading trivia.
type Lexer struct {
	file    *source.File
	cursor  Cursor
	opts    Options
	leading []token.Trivia

	peeked  token.Token
	hasPeek bool
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{file: file, cursor: NewCursor(file), opts: opts}
}

// Next consumes and returns the next token. Once the input is exhausted
// every call yields EOF.
func (lx *Lexer) Next() token.Token {
	if lx.hasPeek {
		lx.hasPeek = false
		return lx.peeked
	}
	lx.collectLeadingTrivia()
	tok := lx.scan()
	tok.Leading, lx.leading = lx.leading, nil
	return tok
}

// Peek returns what Next will return without consuming it.
func (lx *Lexer) Peek() token.Token {
	if !lx.hasPeek {
		lx.peeked = lx.Next()
		lx.hasPeek = true
	}
	return lx.peeked
}

// All lexes the rest of the file. The final token is always EOF.
func (lx *Lexer) All() []token.Token {
	var toks []token.Token
	for tok := lx.Next(); ; tok = lx.Next() {
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func (lx *Lexer) scan() token.Token {
	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
	}
	switch ch := lx.cursor.Peek(); {
	case ch >= utf8RuneSelf || isIdentStartByte(ch):
		return lx.scanIdentOrKeyword()
	case isDec(ch):
		return lx.scanNumber()
	case ch == '"':
		return lx.scanQuoted('"', token.StringLit)
	case ch == '\'':
		return lx.scanQuoted('\'', token.CharLit)
	default:
		return lx.scanOperatorOrPunct()
	}
}

func (lx *Lexer) emptySpan() source.Span {
	off := lx.cursor.Off
	return source.Span{File: lx.file.ID, Start: off, End: off}
}

func (lx *Lexer) text(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}
