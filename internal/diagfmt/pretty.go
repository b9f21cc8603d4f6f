package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"ownsim/internal/diag"
	"ownsim/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	code, path      *color.Color
	gutter, note    *color.Color
	help, dim       *color.Color
	ok, bold        *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgHiYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.FgYellow, color.Bold),
		path:   color.New(color.FgCyan),
		gutter: color.New(color.FgHiBlue, color.Bold),
		note:   color.New(color.FgHiBlue),
		help:   color.New(color.FgGreen, color.Bold),
		dim:    color.New(color.Faint),
		ok:     color.New(color.FgGreen),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.gutter, p.note, p.help, p.dim, p.ok, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty prints every diagnostic in bag as
//
//	ERROR OWN3001: message
//	  --> path:line:col
//	   |
//	 3 | use s
//	   | ^^^^^
//
// followed by notes and help. Call bag.Sort first for a stable order.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, p, d, fs, opts)
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "\n%s\n", p.note.Sprintf("%d more diagnostic(s) not shown (limit %d)", n, bag.Cap()))
	}
}

func prettyOne(w io.Writer, p palette, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	sev := p.severity(d.Severity)
	fmt.Fprintf(w, "%s %s: %s\n", sev.Sprint(d.Severity.String()), p.code.Sprint(d.Code.ID()), d.Message)

	if located(d.Primary, fs) {
		writeExcerpt(w, p, sev, d.Primary, fs, opts, "")
	}

	if d.Code == diag.ObsTimings {
		// the note is a JSON payload, not prose
		return
	}
	for _, n := range d.Notes {
		if opts.ShowNotes && located(n.Span, fs) {
			fmt.Fprintf(w, "%s\n", p.note.Sprint("note:"))
			writeExcerpt(w, p, p.note, n.Span, fs, opts, n.Msg)
			continue
		}
		loc := ""
		if located(n.Span, fs) {
			loc = " " + p.path.Sprint(location(n.Span, fs, opts.PathMode))
		}
		fmt.Fprintf(w, "  %s%s %s\n", p.note.Sprint("note:"), loc, n.Msg)
	}
	if d.Help != "" {
		fmt.Fprintf(w, "  %s %s\n", p.help.Sprint("help:"), d.Help)
	}
}

func location(span source.Span, fs *source.FileSet, mode PathMode) string {
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", formatPath(fs.Get(span.File), fs, mode), start.Line, start.Col)
}

// writeExcerpt prints the lines of span with a caret underline. Columns are
// measured in display cells so wide characters stay aligned.
func writeExcerpt(w io.Writer, p palette, mark *color.Color, span source.Span, fs *source.FileSet, opts PrettyOpts, label string) {
	file := fs.Get(span.File)
	start, end := fs.Resolve(span)
	if end.Line < start.Line {
		end = start
	}

	first := start.Line
	last := end.Line
	if ctx := uint32(max(opts.Context, 0)); ctx > 0 {
		first = max(1, first-min(ctx, first-1))
		last += ctx
		if total := uint32(len(file.LineIdx)) + 1; last > total {
			last = total
		}
	}

	width := len(strconv.FormatUint(uint64(last), 10))
	pad := strings.Repeat(" ", width)
	fmt.Fprintf(w, "%s%s %s\n", pad, p.gutter.Sprint("-->"), p.path.Sprint(location(span, fs, opts.PathMode)))
	fmt.Fprintf(w, "%s %s\n", pad, p.gutter.Sprint("|"))

	for line := first; line <= last; line++ {
		text := strings.ReplaceAll(file.GetLine(line), "\t", "    ")
		fmt.Fprintf(w, "%s %s %s\n", p.gutter.Sprintf("%*d", width, line), p.gutter.Sprint("|"), text)
		if line < start.Line || line > end.Line {
			continue
		}
		raw := file.GetLine(line)
		from := 0
		if line == start.Line {
			from = int(start.Col) - 1
		}
		to := len(raw)
		if line == end.Line {
			to = int(end.Col) - 1
		}
		from = min(max(from, 0), len(raw))
		to = min(max(to, from), len(raw))
		lead := cellWidth(raw[:from])
		carets := max(cellWidth(raw[from:to]), 1)
		underline := strings.Repeat(" ", lead) + mark.Sprint(strings.Repeat("^", carets))
		if label != "" && line == end.Line {
			underline += " " + mark.Sprint(label)
		}
		fmt.Fprintf(w, "%s %s %s\n", pad, p.gutter.Sprint("|"), underline)
	}
}

func cellWidth(s string) int {
	return runewidth.StringWidth(strings.ReplaceAll(s, "\t", "    "))
}
