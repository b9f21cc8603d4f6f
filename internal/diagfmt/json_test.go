package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"ownsim/internal/diag"
	"ownsim/internal/source"
)

func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("let s = \"a\"\n  use \"unterminated\n")
	fileID := fs.AddVirtual("/tmp/scripts/test.own", content)

	bag := diag.NewBag(10)
	bag.Add(diag.New(
		diag.SevError,
		diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 18, End: 31},
		"Unterminated string literal",
	))

	var buf bytes.Buffer
	err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename})
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("count = %d, diagnostics = %d", output.Count, len(output.Diagnostics))
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "LEX1002" {
		t.Errorf("severity/code = %s/%s", d.Severity, d.Code)
	}
	if d.Location == nil {
		t.Fatal("missing location")
	}
	if d.Location.File != "test.own" {
		t.Errorf("file = %s", d.Location.File)
	}
	if d.Location.StartByte != 18 || d.Location.EndByte != 31 {
		t.Errorf("bytes = %d..%d", d.Location.StartByte, d.Location.EndByte)
	}
	if d.Location.StartLine != 2 || d.Location.StartCol != 7 {
		t.Errorf("position = %d:%d", d.Location.StartLine, d.Location.StartCol)
	}
}

func TestJSONNotesAndMax(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.own", []byte("let x = 42\nlet x = 43\n"))

	bag := diag.NewBag(10)
	for range 3 {
		bag.Add(diag.New(diag.SevWarning, diag.OwnRedeclarationShadow,
			source.Span{File: fileID, Start: 15, End: 16}, "'x' shadows an earlier binding").
			WithNote(source.Span{File: fileID, Start: 4, End: 5}, "previous declaration here").
			WithHelp("rename it"))
	}

	tests := []struct {
		name      string
		opts      JSONOpts
		wantCount int
		wantNotes int
	}{
		{name: "all with notes", opts: JSONOpts{IncludeNotes: true}, wantCount: 3, wantNotes: 1},
		{name: "truncated", opts: JSONOpts{Max: 2}, wantCount: 2, wantNotes: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := BuildDiagnosticsOutput(bag, fs, tt.opts)
			if out.Count != tt.wantCount {
				t.Fatalf("count = %d, want %d", out.Count, tt.wantCount)
			}
			if got := len(out.Diagnostics[0].Notes); got != tt.wantNotes {
				t.Errorf("notes = %d, want %d", got, tt.wantNotes)
			}
			if out.Diagnostics[0].Help != "rename it" {
				t.Errorf("help = %q", out.Diagnostics[0].Help)
			}
		})
	}
}

func TestJSONTimingNotesAlwaysIncluded(t *testing.T) {
	bag := diag.NewBag(2)
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, "timings").
		WithNote(source.Span{}, `{"total_ms":1}`))

	out := BuildDiagnosticsOutput(bag, source.NewFileSet(), JSONOpts{})
	d := out.Diagnostics[0]
	if d.Location != nil {
		t.Errorf("timings should have no location, got %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != `{"total_ms":1}` {
		t.Errorf("notes = %+v", d.Notes)
	}
}
