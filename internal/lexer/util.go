package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"
)

const utf8RuneSelf = utf8.RuneSelf

// peekRune decodes the rune at the cursor; size is 0 at the end.
func (lx *Lexer) peekRune() (r rune, size int) {
	c := &lx.cursor
	if c.EOF() {
		return utf8.RuneError, 0
	}
	if b := c.Peek(); b < utf8.RuneSelf {
		return rune(b), 1
	}
	return utf8.DecodeRune(lx.file.Content[c.Off:c.Limit])
}

func (lx *Lexer) bumpRune() {
	_, size := lx.peekRune()
	n, err := safecast.Conv[uint32](size)
	if err != nil {
		panic(fmt.Errorf("lexer: rune size %d: %w", size, err))
	}
	lx.cursor.Off += n
}

// Names are ASCII letters, digits and '_' plus any Unicode letter or digit.
func isIdentStartByte(b byte) bool {
	return b == '_' || ('a' <= b|0x20 && b|0x20 <= 'z')
}

func isIdentContinueByte(b byte) bool { return isIdentStartByte(b) || isDec(b) }

func isIdentStartRune(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentContinueRune(r rune) bool { return isIdentStartRune(r) || unicode.IsDigit(r) }

func isDec(b byte) bool { return '0' <= b && b <= '9' }

func isHex(b byte) bool { return isDec(b) || ('a' <= b|0x20 && b|0x20 <= 'f') }
