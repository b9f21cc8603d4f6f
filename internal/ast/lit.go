package ast

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"ownsim/internal/source"
)

type LitKind uint8

const (
	LitInvalid LitKind = iota
	LitInt
	LitFloat
	LitBool
	LitChar
	LitString
	LitTuple
)

// Lit is a literal value as written in a script.
type Lit struct {
	Kind  LitKind
	Span  source.Span
	Int   int64
	Float float64
	Bool  bool
	Char  rune
	Text  string // decoded string contents
	Elems []Lit  // tuple elements
}

// IsScalar reports whether the literal denotes a copyable scalar.
// Strings and tuples holding strings are not scalars.
func (l Lit) IsScalar() bool {
	switch l.Kind {
	case LitInt, LitFloat, LitBool, LitChar:
		return true
	case LitTuple:
		for _, e := range l.Elems {
			if !e.IsScalar() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the literal in script syntax.
func (l Lit) String() string {
	switch l.Kind {
	case LitInt:
		return strconv.FormatInt(l.Int, 10)
	case LitFloat:
		s := strconv.FormatFloat(l.Float, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEIN") {
			s += ".0"
		}
		return s
	case LitBool:
		return strconv.FormatBool(l.Bool)
	case LitChar:
		return Quote(string(l.Char), '\'')
	case LitString:
		return Quote(l.Text, '"')
	case LitTuple:
		parts := make([]string, len(l.Elems))
		for i, e := range l.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "<invalid>"
	}
}

// Quote wraps text in q using the escapes the script lexer understands.
func Quote(text string, q rune) string {
	var sb strings.Builder
	sb.WriteRune(q)
	for _, r := range text {
		switch {
		case r == q || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == 0:
			sb.WriteString(`\0`)
		case !unicode.IsPrint(r):
			fmt.Fprintf(&sb, `\u{%X}`, r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteRune(q)
	return sb.String()
}
