package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ownsim/internal/ast"
	"ownsim/internal/diag"
	"ownsim/internal/ownership"
	"ownsim/internal/source"
)

func parseSource(t *testing.T, name, src string) (*ast.Builder, Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, []byte(src))
	b := ast.NewBuilder()
	bag := diag.NewBag(0)
	res := Parse(fs.Get(id), b, Options{Reporter: diag.BagReporter{Bag: bag}})
	return b, res, bag
}

func formatted(b *ast.Builder, s *ast.Script) []string {
	return strings.Split(strings.TrimSuffix(b.FormatScript(s), "\n"), "\n")
}

func TestParseStatements(t *testing.T) {
	src := `
# the tutorial in miniature
let mut s = "hello"
let x = 5; let f = -2.5
let c = 'c'
let t = (1, true, (2, 'z'),)
move s -> mut s2
copy x -> mut y
clone s2 -> s3
borrow r = &s3
borrow w = &mut s2
push w ", world"
set y = 6
clear s2
use s2
len r
consume s3
assert y == 6
expect UseAfterMove use s
`
	b, res, bag := parseSource(t, "all.own", src)
	if !res.Ok() || bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []string{
		`let mut s = "hello"`,
		`let x = 5`,
		`let f = -2.5`,
		`let c = 'c'`,
		`let t = (1, true, (2, 'z'))`,
		`move s -> mut s2`,
		`copy x -> mut y`,
		`clone s2 -> s3`,
		`borrow r = &s3`,
		`borrow w = &mut s2`,
		`push w ", world"`,
		`set y = 6`,
		`clear s2`,
		`use s2`,
		`len r`,
		`consume s3`,
		`assert y == 6`,
		`expect UseAfterMove use s`,
	}
	if diff := cmp.Diff(want, formatted(b, res.Script)); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}
}

func TestParseNestedScopes(t *testing.T) {
	src := "let s = \"a\"\n{\n  borrow r = &s\n  {\n    len r\n  }\n}\nuse s\n"
	b, res, bag := parseSource(t, "scopes.own", src)
	if !res.Ok() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if len(res.Script.Body) != 3 {
		t.Fatalf("got %d top-level statements, want 3", len(res.Script.Body))
	}
	outer := b.Stmt(res.Script.Body[1])
	if outer.Kind != ast.StmtScope || len(outer.Body) != 2 {
		t.Fatalf("outer scope = %+v", outer)
	}
	inner := b.Stmt(outer.Body[1])
	if inner.Kind != ast.StmtScope || b.Stmt(inner.Body[0]).Kind != ast.StmtLen {
		t.Fatalf("inner scope = %+v", inner)
	}
	if got := b.Count(res.Script.Body); got != 6 {
		t.Errorf("Count = %d, want 6", got)
	}
}

func TestParseExpect(t *testing.T) {
	b, res, _ := parseSource(t, "e.own", "expect alias_conflict borrow b = &mut x")
	st := b.Stmt(res.Script.Body[0])
	if st.Kind != ast.StmtExpect || st.Expect != ownership.AliasConflict {
		t.Fatalf("got %+v", st)
	}
	if inner := b.Stmt(st.Inner); inner.Kind != ast.StmtBorrow || !inner.Mut {
		t.Fatalf("inner = %+v", inner)
	}
}

func TestParseSpans(t *testing.T) {
	src := "let x = 5\nmove s -> t"
	b, res, _ := parseSource(t, "spans.own", src)
	mv := b.Stmt(res.Script.Body[1])
	if got := src[mv.Span.Start:mv.Span.End]; got != "move s -> t" {
		t.Errorf("move span covers %q", got)
	}
	if got := src[mv.Source.Span.Start:mv.Source.Span.End]; got != "s" {
		t.Errorf("source span covers %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		codes []diag.Code
		stmts int
	}{
		{"missing arrow", "move s t\nuse t", []diag.Code{diag.SynExpectArrow}, 1},
		{"missing assign", "let x 5", []diag.Code{diag.SynExpectAssign}, 0},
		{"missing ref", "borrow r = s", []diag.Code{diag.SynExpectRef}, 0},
		{"string in tuple", `let t = (1, "a")`, []diag.Code{diag.SynTupleNotScalar}, 0},
		{"unknown kind", "expect Boom use s", []diag.Code{diag.SynUnknownErrorKind}, 1},
		{"nested expect", "expect NotMutable expect NotMutable use s", []diag.Code{diag.SynNestedExpect}, 1},
		{"unclosed scope", "{ use s", []diag.Code{diag.SynUnclosedBrace}, 0},
		{"stray brace", "use s }", []diag.Code{diag.SynUnmatchedBrace}, 1},
		{"not a statement", "s2 = 5\nuse s2", []diag.Code{diag.SynUnexpectedToken}, 1},
		{"push number", "push s 5", []diag.Code{diag.SynExpectValue}, 0},
		{"int overflow", "let x = 99999999999999999999", []diag.Code{diag.LexBadNumber}, 0},
		{"lexer error", "let s = \"abc", []diag.Code{diag.LexUnterminatedString}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res, bag := parseSource(t, "bad.own", tt.src)
			var got []diag.Code
			for _, d := range bag.Items() {
				got = append(got, d.Code)
			}
			if diff := cmp.Diff(tt.codes, got); diff != "" {
				t.Errorf("codes mismatch (-want +got):\n%s", diff)
			}
			if res.Ok() {
				t.Error("result should not be ok")
			}
			if len(res.Script.Body) != tt.stmts {
				t.Errorf("recovered %d statements, want %d", len(res.Script.Body), tt.stmts)
			}
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	src := "let mut s = \"tab\\tquote\\\"\"\n{\n    borrow w = &mut s\n    push w \"!\"\n}\nlet t = (1.5, 'q')\n"
	b, res, bag := parseSource(t, "rt.own", src)
	if !res.Ok() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	printed := b.FormatScript(res.Script)
	b2, res2, bag2 := parseSource(t, "rt2.own", printed)
	if !res2.Ok() {
		t.Fatalf("reparse failed: %+v", bag2.Items())
	}
	if diff := cmp.Diff(printed, b2.FormatScript(res2.Script)); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}
