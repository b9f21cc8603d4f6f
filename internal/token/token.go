package token

import "ownsim/internal/source"

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a value literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, StringLit, CharLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a script keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwLet && t.Kind <= KwFalse
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// AfterNewline reports whether a newline separates the token from the one before it.
func (t Token) AfterNewline() bool {
	for _, tr := range t.Leading {
		if tr.Kind == TriviaNewline {
			return true
		}
	}
	return false
}
