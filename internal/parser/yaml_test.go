package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ownsim/internal/diag"
)

func TestParseYAMLSteps(t *testing.T) {
	src := `steps:
  - op: let
    name: s
    mut: true
    value: hello
  - op: let
    name: x
    value: 5
  - op: let
    name: t
    value: [1, 2.5, true]
  - op: let
    name: c
    char: "z"
  - op: move
    src: s
    dst: s2
  - op: scope
    body:
      - op: borrow
        name: r
        owner: s2
      - op: len
        name: r
  - op: use
    name: s
    expect: UseAfterMove
  - op: push
    name: s2
    text: ", world"
`
	b, res, bag := parseSource(t, "steps.yaml", src)
	if !res.Ok() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []string{
		`let mut s = "hello"`,
		`let x = 5`,
		`let t = (1, 2.5, true)`,
		`let c = 'z'`,
		`move s -> s2`,
		`{`,
		`    borrow r = &s2`,
		`    len r`,
		`}`,
		`expect UseAfterMove use s`,
		`push s2 ", world"`,
	}
	if diff := cmp.Diff(want, formatted(b, res.Script)); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
}

func TestParseYAMLSpans(t *testing.T) {
	src := "steps:\n  - op: use\n    name: abc\n"
	b, res, _ := parseSource(t, "span.yml", src)
	st := b.Stmt(res.Script.Body[0])
	if got := src[st.Target.Span.Start:st.Target.Span.End]; got != "abc" {
		t.Errorf("name span covers %q", got)
	}
	if got := src[st.Span.Start:st.Span.End]; got != "use" {
		t.Errorf("op span covers %q", got)
	}
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"not yaml", "steps: [\n", diag.SynMalformedDocument},
		{"no steps", "other: 1\n", diag.SynMissingField},
		{"unknown op", "steps:\n  - op: jump\n", diag.SynUnknownStep},
		{"missing name", "steps:\n  - op: use\n", diag.SynMissingField},
		{"bad field", "steps:\n  - op: use\n    name: s\n    dst: t\n", diag.SynUnexpectedToken},
		{"string in tuple", "steps:\n  - op: let\n    name: t\n    value: [1, a]\n", diag.SynTupleNotScalar},
		{"bad expect", "steps:\n  - op: use\n    name: s\n    expect: Nope\n", diag.SynUnknownErrorKind},
		{"long char", "steps:\n  - op: let\n    name: c\n    char: ab\n", diag.LexUnterminatedChar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res, bag := parseSource(t, "bad.yaml", tt.src)
			if res.Ok() {
				t.Fatal("expected errors")
			}
			if bag.Count(tt.code) == 0 {
				t.Errorf("want %s, got %+v", tt.code.ID(), bag.Items())
			}
		})
	}
}

func TestIsYAML(t *testing.T) {
	for path, want := range map[string]bool{"a.yaml": true, "b.YML": true, "c.own": false, "d": false} {
		if IsYAML(path) != want {
			t.Errorf("IsYAML(%q) != %v", path, want)
		}
	}
}

func TestParseYAMLAliases(t *testing.T) {
	src := `steps:
  - op: let
    name: s
    value: &greeting hello
  - op: let
    name: t
    value: *greeting
  - op: let
    name: p
    value: &pair [1, 2]
  - op: assert
    name: p
    value: *pair
  - &show
    op: use
    name: s
  - *show
`
	b, res, bag := parseSource(t, "aliases.yaml", src)
	if !res.Ok() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []string{
		`let s = "hello"`,
		`let t = "hello"`,
		`let p = (1, 2)`,
		`assert p == (1, 2)`,
		`use s`,
		`use s`,
	}
	if diff := cmp.Diff(want, formatted(b, res.Script)); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}
}
