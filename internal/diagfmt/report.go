package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"ownsim/internal/diag"
	"ownsim/internal/driver"
	"ownsim/internal/observ"
	"ownsim/internal/ownership"
)

// PrettyResult prints the per-step trace of one evaluated script, the
// bindings as they stood before the root scope closed, and its diagnostics.
func PrettyResult(w io.Writer, res *driver.Result, opts PrettyOpts) {
	p := newPalette(opts.Color)
	title := res.Path
	if res.File != nil {
		title = formatPath(res.File, res.FileSet, opts.PathMode)
	}
	fmt.Fprintln(w, p.bold.Sprint(title))

	for _, o := range res.Outcomes {
		writeOutcome(w, p, o, opts)
	}
	if res.Halted {
		fmt.Fprintf(w, "  %s\n", p.warn.Sprint("stopped at the first failure"))
	}

	if len(res.Bindings) > 0 {
		fmt.Fprintln(w)
		WriteBindings(w, res.Bindings, opts)
	}

	if res.Bag != nil && res.Bag.Len() > 0 {
		fmt.Fprintln(w)
		Pretty(w, res.Bag, res.FileSet, opts)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, Summary(res, opts.Color))
}

func writeOutcome(w io.Writer, p palette, o driver.Outcome, opts PrettyOpts) {
	indent := strings.Repeat("    ", o.Depth)
	mark := p.ok.Sprint("✓")
	if o.Status.Failed() {
		mark = p.err.Sprint("✗")
	}
	line := fmt.Sprintf("  %s %3d  %s%s", mark, o.Index+1, indent, o.Text)

	var tail string
	switch o.Status {
	case driver.StatusRejected:
		tail = p.err.Sprint(o.Err.Kind.String())
	case driver.StatusExpected:
		tail = p.dim.Sprint("rejected as expected")
	case driver.StatusUnexpectedSuccess:
		tail = p.err.Sprint("accepted, expected " + o.Expect.String())
	case driver.StatusWrongKind:
		tail = p.err.Sprintf("%s, expected %s", o.Err.Kind, o.Expect)
	default:
		if o.Detail != "" {
			tail = p.dim.Sprint("= " + o.Detail)
		}
	}
	if tail != "" {
		line += "  " + tail
	}
	fmt.Fprintln(w, line)

	if opts.ShowEvents {
		for _, ev := range o.Events {
			fmt.Fprintf(w, "         %s%s %s\n", indent, p.dim.Sprint("·"), DescribeEvent(ev))
		}
	}
}

// BindingHeader names the binding table columns.
var BindingHeader = []string{"NAME", "KIND", "MUT", "STATE", "VALUE", "LEN", "BORROWS", "SCOPE"}

// BindingRow renders one binding as table cells in BindingHeader order.
func BindingRow(b ownership.BindingView) []string {
	mut := ""
	if b.Mutable {
		mut = "mut"
	}
	state := b.State.String()
	if b.MovedTo != "" {
		state += " -> " + b.MovedTo
	}
	if b.State == ownership.StateOwned && !b.Visible && b.Live {
		state += " (shadowed)"
	}
	length := ""
	if b.Kind == ownership.ValueBuffer {
		length = strconv.Itoa(b.Len)
	}
	var borrows []string
	if b.MutBorrowed {
		borrows = append(borrows, "&mut")
	}
	if b.Shared > 0 {
		borrows = append(borrows, fmt.Sprintf("&x%d", b.Shared))
	}
	return []string{
		b.Name,
		b.Kind.String(),
		mut,
		state,
		b.Value,
		length,
		strings.Join(borrows, " "),
		strconv.FormatUint(uint64(b.Scope), 10),
	}
}

// WriteBindings prints bindings as an aligned table. Widths are measured
// in display cells; opts.Width truncates long cells.
func WriteBindings(w io.Writer, bindings []ownership.BindingView, opts PrettyOpts) {
	p := newPalette(opts.Color)
	rows := make([][]string, 0, len(bindings))
	for _, b := range bindings {
		rows = append(rows, BindingRow(b))
	}
	widths := make([]int, len(BindingHeader))
	for i, h := range BindingHeader {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if opts.Width > 0 {
				cell = runewidth.Truncate(cell, int(opts.Width), "…")
				row[i] = cell
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	writeRow := func(cells []string, style func(string) string) {
		var sb strings.Builder
		sb.WriteString("  ")
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString("  ")
			}
			if i == len(cells)-1 {
				sb.WriteString(style(cell))
				continue
			}
			sb.WriteString(style(runewidth.FillRight(cell, widths[i])))
		}
		fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}
	writeRow(BindingHeader, func(s string) string { return p.bold.Sprint(s) })
	for _, row := range rows {
		writeRow(row, func(s string) string { return s })
	}
}

// Summary is the one-line tally printed after a run.
func Summary(res *driver.Result, colored bool) string {
	p := newPalette(colored)
	if !res.Parsed {
		errs := 0
		if res.Bag != nil {
			for _, d := range res.Bag.Items() {
				if d.Severity == diag.SevError {
					errs++
				}
			}
		}
		return p.err.Sprintf("not evaluated: %d error(s)", errs)
	}
	counts := res.Counts()
	parts := []string{fmt.Sprintf("%d steps", len(res.Outcomes))}
	for _, st := range []driver.Status{
		driver.StatusOK, driver.StatusExpected, driver.StatusRejected,
		driver.StatusUnexpectedSuccess, driver.StatusWrongKind,
	} {
		if n := counts[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, st))
		}
	}
	text := strings.Join(parts, ", ")
	if res.Failed() {
		return p.err.Sprint("FAIL ") + text
	}
	return p.ok.Sprint("ok ") + text
}

// OutcomeJSON is one step in JSON run output.
type OutcomeJSON struct {
	Index    int           `json:"index"`
	Op       string        `json:"op"`
	Text     string        `json:"text"`
	Status   string        `json:"status"`
	Expect   string        `json:"expect,omitempty"`
	Kind     string        `json:"kind,omitempty"`
	Message  string        `json:"message,omitempty"`
	Detail   string        `json:"detail,omitempty"`
	Location *LocationJSON `json:"location,omitempty"`
	Events   []string      `json:"events,omitempty"`
}

// BindingJSON is one binding in JSON run output.
type BindingJSON struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Mutable bool   `json:"mutable"`
	State   string `json:"state"`
	Value   string `json:"value"`
	Len     int    `json:"len,omitempty"`
	MovedTo string `json:"moved_to,omitempty"`
	Scope   uint32 `json:"scope"`
}

// ResultJSON is one script in JSON run output.
type ResultJSON struct {
	Path        string            `json:"path"`
	Parsed      bool              `json:"parsed"`
	Failed      bool              `json:"failed"`
	Halted      bool              `json:"halted,omitempty"`
	Outcomes    []OutcomeJSON     `json:"outcomes"`
	Bindings    []BindingJSON     `json:"bindings,omitempty"`
	Diagnostics DiagnosticsOutput `json:"diagnostics"`
	Timing      *observ.Report    `json:"timing,omitempty"`
}

// RunOutput is the root of JSON run output.
type RunOutput struct {
	Results []ResultJSON `json:"results"`
	Failed  int          `json:"failed"`
}

// BuildResultJSON converts one result.
func BuildResultJSON(res *driver.Result, opts JSONOpts) ResultJSON {
	out := ResultJSON{
		Path:        res.Path,
		Parsed:      res.Parsed,
		Failed:      res.Failed(),
		Halted:      res.Halted,
		Outcomes:    make([]OutcomeJSON, 0, len(res.Outcomes)),
		Diagnostics: BuildDiagnosticsOutput(res.Bag, res.FileSet, opts),
	}
	if res.File != nil {
		out.Path = formatPath(res.File, res.FileSet, opts.PathMode)
	}
	for _, o := range res.Outcomes {
		oj := OutcomeJSON{
			Index:    o.Index,
			Op:       o.Op,
			Text:     o.Text,
			Status:   o.Status.String(),
			Detail:   o.Detail,
			Location: makeLocation(o.Span, res.FileSet, opts.PathMode, opts.IncludePositions),
		}
		if o.Expect != ownership.NoError {
			oj.Expect = o.Expect.String()
		}
		if o.Err != nil {
			oj.Kind = o.Err.Kind.String()
			oj.Message = o.Err.Message
		}
		if opts.IncludeEvents {
			for _, ev := range o.Events {
				oj.Events = append(oj.Events, DescribeEvent(ev))
			}
		}
		out.Outcomes = append(out.Outcomes, oj)
	}
	for _, b := range res.Bindings {
		out.Bindings = append(out.Bindings, BindingJSON{
			Name:    b.Name,
			Kind:    b.Kind.String(),
			Mutable: b.Mutable,
			State:   b.State.String(),
			Value:   b.Value,
			Len:     b.Len,
			MovedTo: b.MovedTo,
			Scope:   uint32(b.Scope),
		})
	}
	if len(res.Timing.Phases) > 0 {
		t := res.Timing
		out.Timing = &t
	}
	return out
}

// ResultsJSON writes every result as one JSON document.
func ResultsJSON(w io.Writer, results []*driver.Result, opts JSONOpts) error {
	out := RunOutput{Results: make([]ResultJSON, 0, len(results))}
	for _, res := range results {
		rj := BuildResultJSON(res, opts)
		if rj.Failed {
			out.Failed++
		}
		out.Results = append(out.Results, rj)
	}
	return encode(w, out)
}
