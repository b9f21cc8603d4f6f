package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents a binding name.
	Ident

	KwLet     // let
	KwMut     // mut
	KwMove    // move
	KwCopy    // copy
	KwClone   // clone
	KwBorrow  // borrow
	KwPush    // push
	KwSet     // set
	KwClear   // clear
	KwUse     // use
	KwLen     // len
	KwConsume // consume
	KwAssert  // assert
	KwExpect  // expect
	KwTrue    // true
	KwFalse   // false

	IntLit    // 42, 1_000
	FloatLit  // 2.5, 1e3
	StringLit // "text"
	CharLit   // 'c'

	Assign    // =
	EqEq      // ==
	Arrow     // ->
	Minus     // -
	Amp       // &
	Comma     // ,
	Semicolon // ;
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
)

var kindNames = [...]string{
	Invalid:   "invalid",
	EOF:       "end of file",
	Ident:     "identifier",
	KwLet:     "'let'",
	KwMut:     "'mut'",
	KwMove:    "'move'",
	KwCopy:    "'copy'",
	KwClone:   "'clone'",
	KwBorrow:  "'borrow'",
	KwPush:    "'push'",
	KwSet:     "'set'",
	KwClear:   "'clear'",
	KwUse:     "'use'",
	KwLen:     "'len'",
	KwConsume: "'consume'",
	KwAssert:  "'assert'",
	KwExpect:  "'expect'",
	KwTrue:    "'true'",
	KwFalse:   "'false'",
	IntLit:    "integer literal",
	FloatLit:  "float literal",
	StringLit: "string literal",
	CharLit:   "char literal",
	Assign:    "'='",
	EqEq:      "'=='",
	Arrow:     "'->'",
	Minus:     "'-'",
	Amp:       "'&'",
	Comma:     "','",
	Semicolon: "';'",
	LParen:    "'('",
	RParen:    "')'",
	LBrace:    "'{'",
	RBrace:    "'}'",
}

// String returns a human-readable name used in syntax diagnostics.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// StartsStatement reports whether a statement can begin with this kind.
func (k Kind) StartsStatement() bool {
	switch k {
	case KwLet, KwMove, KwCopy, KwClone, KwBorrow, KwPush, KwSet, KwClear,
		KwUse, KwLen, KwConsume, KwAssert, KwExpect, LBrace:
		return true
	default:
		return false
	}
}
