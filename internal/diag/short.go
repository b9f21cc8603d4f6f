package diag

import (
	"fmt"
	"strings"

	"ownsim/internal/source"
)

// FormatShort renders diagnostics one per line:
//
//	<severity> <CODE> <path>:<line>:<col> <message>
//
// Notes follow their diagnostic with severity "note". Messages are flattened
// to a single line so the output stays diffable.
func FormatShort(items []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for i := range items {
		d := &items[i]
		writeShortLine(&b, strings.ToLower(d.Severity.String()), d.Code, d.Primary, d.Message, fs)
		if !includeNotes {
			continue
		}
		for _, note := range d.Notes {
			writeShortLine(&b, "note", d.Code, note.Span, note.Msg, fs)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func writeShortLine(b *strings.Builder, sev string, code Code, span source.Span, msg string, fs *source.FileSet) {
	path := "?"
	if f := fs.Get(span.File); f != nil {
		path = f.DisplayPath(fs.BaseDir())
	}
	start, _ := fs.Resolve(span)
	fmt.Fprintf(b, "%s %s %s:%d:%d %s\n", sev, code.ID(), path, start.Line, start.Col, flatten(msg))
}

func flatten(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
