package lexer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"ownsim/internal/diag"
	"ownsim/internal/token"
)

// scanQuoted scans "..." or '...'. Escapes are validated here and decoded
// later by Unquote. A char literal must hold exactly one character.
func (lx *Lexer) scanQuoted(quote byte, kind token.Kind) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	unterminated := diag.LexUnterminatedString
	what := "string"
	if kind == token.CharLit {
		unterminated = diag.LexUnterminatedChar
		what = "char"
	}

	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case b == quote:
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			text := lx.text(sp)
			if _, err := Unquote(text); err != nil {
				lx.errLex(diag.LexBadEscape, sp, err.Error())
				return token.Token{Kind: token.Invalid, Span: sp, Text: text}
			}
			if kind == token.CharLit {
				if s, _ := Unquote(text); utf8.RuneCountInString(s) != 1 {
					lx.errLex(unterminated, sp, "char literal must contain exactly one character")
					return token.Token{Kind: token.Invalid, Span: sp, Text: text}
				}
			}
			return token.Token{Kind: kind, Span: sp, Text: text}
		case b == '\\':
			lx.cursor.Bump()
			if lx.cursor.EOF() {
				continue
			}
			lx.bumpRune()
		case b == '\n':
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(unterminated, sp, "newline in "+what+" literal")
			lx.skipBrokenLiteral(quote)
			sp = lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		default:
			lx.bumpRune()
		}
	}

	sp := lx.cursor.SpanFrom(start)
	lx.errLex(unterminated, sp, "unterminated "+what+" literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}

// skipBrokenLiteral consumes the rest of a literal split by a newline: the
// newline itself, then up to and including the closing quote on the next
// line, or up to the end of that line. The tail is already reported, so a
// closing quote must not open another literal.
func (lx *Lexer) skipBrokenLiteral(quote byte) {
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case '\n':
			return
		case quote:
			lx.cursor.Bump()
			return
		case '\\':
			lx.cursor.Bump()
			if !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.bumpRune()
			}
		default:
			lx.bumpRune()
		}
	}
}

var errBadQuote = errors.New("literal is not quoted")

// Unquote decodes the text of a string or char literal, quotes included.
// Supported escapes: \n \t \r \0 \\ \" \' and \u{XXXX}.
func Unquote(lit string) (string, error) {
	if len(lit) < 2 || lit[0] != lit[len(lit)-1] || (lit[0] != '"' && lit[0] != '\'') {
		return "", errBadQuote
	}
	body := lit[1 : len(lit)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", errors.New("trailing backslash in literal")
		}
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case '\\', '"', '\'':
			sb.WriteByte(body[i])
		case 'u':
			end := strings.IndexByte(body[i:], '}')
			if i+1 >= len(body) || body[i+1] != '{' || end < 0 {
				return "", errors.New(`expected \u{XXXX}`)
			}
			hex := body[i+2 : i+end]
			for j := 0; j < len(hex); j++ {
				if !isHex(hex[j]) {
					return "", fmt.Errorf(`invalid hex digit in \u{%s}`, hex)
				}
			}
			v, err := strconv.ParseUint(hex, 16, 32)
			if err != nil || hex == "" || !utf8.ValidRune(rune(v)) {
				return "", fmt.Errorf(`invalid code point \u{%s}`, hex)
			}
			sb.WriteRune(rune(v))
			i += end
		default:
			return "", fmt.Errorf(`unknown escape sequence \%c`, body[i])
		}
	}
	return sb.String(), nil
}

func quoteRune(r rune) string {
	return strconv.QuoteRune(r)
}
