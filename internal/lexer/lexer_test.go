package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ownsim/internal/diag"
	"ownsim/internal/source"
	"ownsim/internal/token"
)

func lexAll(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.own", []byte(src))
	bag := diag.NewBag(0)
	lx := New(fs.Get(id), Options{Reporter: diag.BagReporter{Bag: bag}})
	return lx.All(), bag
}

type kt struct {
	Kind token.Kind
	Text string
}

func kinds(toks []token.Token) []kt {
	out := make([]kt, 0, len(toks))
	for _, tok := range toks {
		out = append(out, kt{tok.Kind, tok.Text})
	}
	return out
}

func TestLexStatements(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []kt
	}{
		{
			name: "let buffer",
			src:  `let mut s = "hello"`,
			want: []kt{{token.KwLet, "let"}, {token.KwMut, "mut"}, {token.Ident, "s"}, {token.Assign, "="}, {token.StringLit, `"hello"`}, {token.EOF, ""}},
		},
		{
			name: "move arrow",
			src:  "move s -> mut s2",
			want: []kt{{token.KwMove, "move"}, {token.Ident, "s"}, {token.Arrow, "->"}, {token.KwMut, "mut"}, {token.Ident, "s2"}, {token.EOF, ""}},
		},
		{
			name: "borrow mut",
			src:  "borrow w = &mut s",
			want: []kt{{token.KwBorrow, "borrow"}, {token.Ident, "w"}, {token.Assign, "="}, {token.Amp, "&"}, {token.KwMut, "mut"}, {token.Ident, "s"}, {token.EOF, ""}},
		},
		{
			name: "tuple and numbers",
			src:  "let t = (1, -2.5, 1e3, 'c', true)",
			want: []kt{
				{token.KwLet, "let"}, {token.Ident, "t"}, {token.Assign, "="}, {token.LParen, "("},
				{token.IntLit, "1"}, {token.Comma, ","}, {token.Minus, "-"}, {token.FloatLit, "2.5"}, {token.Comma, ","},
				{token.FloatLit, "1e3"}, {token.Comma, ","}, {token.CharLit, "'c'"}, {token.Comma, ","},
				{token.KwTrue, "true"}, {token.RParen, ")"}, {token.EOF, ""},
			},
		},
		{
			name: "assert and scope",
			src:  "{ assert y == 6; }",
			want: []kt{{token.LBrace, "{"}, {token.KwAssert, "assert"}, {token.Ident, "y"}, {token.EqEq, "=="}, {token.IntLit, "6"}, {token.Semicolon, ";"}, {token.RBrace, "}"}, {token.EOF, ""}},
		},
		{
			name: "comments are trivia",
			src:  "# header\nuse s // trailing\n",
			want: []kt{{token.KwUse, "use"}, {token.Ident, "s"}, {token.EOF, ""}},
		},
		{
			name: "unicode identifier",
			src:  "use строка",
			want: []kt{{token.KwUse, "use"}, {token.Ident, "строка"}, {token.EOF, ""}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, bag := lexAll(t, tt.src)
			if bag.Len() != 0 {
				t.Fatalf("unexpected diagnostics: %+v", bag.Items())
			}
			if diff := cmp.Diff(tt.want, kinds(toks)); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLexSpansMatchText(t *testing.T) {
	src := "let  x = 42\nclone a -> b"
	toks, _ := lexAll(t, src)
	for _, tok := range toks {
		if got := src[tok.Span.Start:tok.Span.End]; got != tok.Text {
			t.Errorf("span %v covers %q, token text %q", tok.Span, got, tok.Text)
		}
	}
}

func TestLexTrivia(t *testing.T) {
	toks, _ := lexAll(t, "let x = 1 # one\n\n  use x")
	use := toks[4]
	if use.Kind != token.KwUse {
		t.Fatalf("token 4 = %v, want 'use'", use.Kind)
	}
	var got []token.TriviaKind
	for _, tr := range use.Leading {
		got = append(got, tr.Kind)
	}
	want := []token.TriviaKind{token.TriviaSpace, token.TriviaLineComment, token.TriviaNewline, token.TriviaSpace}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("trivia mismatch (-want +got):\n%s", diff)
	}
	if !use.AfterNewline() {
		t.Error("use should follow a newline")
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"unterminated string", `let s = "abc`, diag.LexUnterminatedString},
		{"newline in string", "let s = \"ab\nc\"", diag.LexUnterminatedString},
		{"empty char", "let c = ''", diag.LexUnterminatedChar},
		{"bad escape", `let s = "a\q"`, diag.LexBadEscape},
		{"bad exponent", "let f = 1e", diag.LexBadNumber},
		{"number with suffix", "let n = 12ab", diag.LexBadNumber},
		{"unknown char", "let x = 1 @", diag.LexUnknownChar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, bag := lexAll(t, tt.src)
			if bag.Count(tt.code) != 1 {
				t.Fatalf("want one %v, got %+v", tt.code.ID(), bag.Items())
			}
			if toks[len(toks)-1].Kind != token.EOF {
				t.Fatal("lexer must always finish with EOF")
			}
		})
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{`"hello"`, "hello", false},
		{`", world"`, ", world", false},
		{`"a\nb\t\"c\""`, "a\nb\t\"c\"", false},
		{`'\''`, "'", false},
		{`"\u{48}\u{1F600}"`, "H\U0001F600", false},
		{`"\u{zz}"`, "", true},
		{`"\x"`, "", true},
		{`abc`, "", true},
	}
	for _, tt := range tests {
		got, err := Unquote(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unquote(%s) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Unquote(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("p.own", []byte("use a"))
	lx := New(fs.Get(id), Options{})
	if lx.Peek().Kind != token.KwUse || lx.Peek().Kind != token.KwUse {
		t.Fatal("peek must be idempotent")
	}
	if lx.Next().Kind != token.KwUse || lx.Next().Kind != token.Ident {
		t.Fatal("next after peek returned wrong sequence")
	}
	if lx.Next().Kind != token.EOF || lx.Next().Kind != token.EOF {
		t.Fatal("EOF must repeat")
	}
}

func TestNewlineInStringRecovers(t *testing.T) {
	toks, bag := lexAll(t, "let s = \"ab\nc\"\nuse s\n")
	if n := bag.Count(diag.LexUnterminatedString); n != 1 {
		t.Fatalf("want one LEX1002, got %+v", bag.Items())
	}
	var got []kt
	for _, tok := range toks {
		got = append(got, kt{tok.Kind, tok.Text})
	}
	want := []kt{
		{token.KwLet, "let"},
		{token.Ident, "s"},
		{token.Assign, "="},
		{token.Invalid, "\"ab\nc\""},
		{token.KwUse, "use"},
		{token.Ident, "s"},
		{token.EOF, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}
