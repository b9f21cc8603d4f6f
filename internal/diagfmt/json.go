package diagfmt

import (
	"encoding/json"
	"io"

	"ownsim/internal/diag"
	"ownsim/internal/source"
)

// LocationJSON is a byte range, plus line and column when positions are
// requested.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
}

type DiagnosticJSON struct {
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Location *LocationJSON `json:"location,omitempty"`
	Notes    []NoteJSON    `json:"notes,omitempty"`
	Help     string        `json:"help,omitempty"`
}

// DiagnosticsOutput is the diagnostics section of JSON output. Dropped
// counts diagnostics the bag refused once it was full.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Dropped     int              `json:"dropped,omitempty"`
}

func makeLocation(span source.Span, fs *source.FileSet, mode PathMode, positions bool) *LocationJSON {
	if !located(span, fs) {
		return nil
	}
	loc := LocationJSON{
		File:      formatPath(fs.Get(span.File), fs, mode),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if positions {
		from, to := fs.Resolve(span)
		loc.StartLine, loc.StartCol = from.Line, from.Col
		loc.EndLine, loc.EndCol = to.Line, to.Col
	}
	return &loc
}

func diagnosticJSON(d diag.Diagnostic, fs *source.FileSet, opts JSONOpts) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Message:  d.Message,
		Help:     d.Help,
		Location: makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
	}
	// timing notes carry the payload itself
	if !opts.IncludeNotes && d.Code != diag.ObsTimings {
		return out
	}
	for _, n := range d.Notes {
		out.Notes = append(out.Notes, NoteJSON{
			Message:  n.Msg,
			Location: makeLocation(n.Span, fs, opts.PathMode, opts.IncludePositions),
		})
	}
	return out
}

// BuildDiagnosticsOutput converts bag, keeping at most opts.Max entries
// when Max is positive.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: []DiagnosticJSON{}}
	if bag == nil {
		return out
	}
	items := bag.Items()
	if opts.Max > 0 && len(items) > opts.Max {
		items = items[:opts.Max]
	}
	for _, d := range items {
		out.Diagnostics = append(out.Diagnostics, diagnosticJSON(d, fs, opts))
	}
	out.Count = len(out.Diagnostics)
	out.Dropped = bag.Dropped()
	return out
}

// JSON writes the diagnostics of bag as one indented document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	return encode(w, BuildDiagnosticsOutput(bag, fs, opts))
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
