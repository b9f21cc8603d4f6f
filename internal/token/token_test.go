package token_test

import (
	"testing"

	"ownsim/internal/token"
)

func TestLookupKeyword(t *testing.T) {
	cases := map[string]token.Kind{
		"let":     token.KwLet,
		"move":    token.KwMove,
		"borrow":  token.KwBorrow,
		"consume": token.KwConsume,
		"expect":  token.KwExpect,
		"true":    token.KwTrue,
	}
	for lexeme, want := range cases {
		got, ok := token.LookupKeyword(lexeme)
		if !ok || got != want {
			t.Fatalf("LookupKeyword(%q) = %v, %v; want %v", lexeme, got, ok, want)
		}
	}
	for _, s := range []string{"Let", "MOVE", "fn", "s2"} {
		if _, ok := token.LookupKeyword(s); ok {
			t.Fatalf("LookupKeyword(%q) returned ok=true", s)
		}
	}
}

func TestKindClassification(t *testing.T) {
	if !(token.Token{Kind: token.KwFalse}).IsKeyword() {
		t.Fatal("false must be a keyword")
	}
	if (token.Token{Kind: token.IntLit}).IsKeyword() {
		t.Fatal("int literal is not a keyword")
	}
	if !(token.Token{Kind: token.CharLit}).IsLiteral() {
		t.Fatal("char literal must be a literal")
	}
	for _, k := range []token.Kind{token.KwLet, token.KwExpect, token.LBrace} {
		if !k.StartsStatement() {
			t.Fatalf("%v should start a statement", k)
		}
	}
	if token.Ident.StartsStatement() {
		t.Fatal("identifier does not start a statement")
	}
	if got := token.Arrow.String(); got != "'->'" {
		t.Fatalf("Arrow.String() = %q", got)
	}
}

func TestAfterNewline(t *testing.T) {
	tok := token.Token{Kind: token.KwUse, Leading: []token.Trivia{
		{Kind: token.TriviaSpace},
		{Kind: token.TriviaNewline},
	}}
	if !tok.AfterNewline() {
		t.Fatal("expected newline before token")
	}
}
