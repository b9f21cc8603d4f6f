package token

import "ownsim/internal/source"

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment // "# ..." or "// ..."
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaSpace:
		return "space"
	case TriviaNewline:
		return "newline"
	case TriviaLineComment:
		return "comment"
	default:
		return "unknown"
	}
}

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}
