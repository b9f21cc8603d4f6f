package diag

import "ownsim/internal/source"

// Reporter receives diagnostics from the lexer, parser and evaluator.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// BagReporter stores reports in Bag. A nil Bag discards them.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// NopReporter discards every report.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// ReportBuilder holds a diagnostic until Emit hands it to its reporter.
// The methods are safe on a nil builder.
type ReportBuilder struct {
	to   Reporter
	d    Diagnostic
	sent bool
}

// NewReportBuilder starts a diagnostic of any severity bound for r.
func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{to: r, d: New(sev, code, primary, msg)}
}

// ReportError starts an error for r.
func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

// ReportWarning starts a warning for r.
func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b != nil {
		b.d = b.d.WithNote(sp, msg)
	}
	return b
}

func (b *ReportBuilder) WithHelp(help string) *ReportBuilder {
	if b != nil {
		b.d = b.d.WithHelp(help)
	}
	return b
}

// Emit reports the diagnostic. Later calls do nothing.
func (b *ReportBuilder) Emit() {
	if b == nil || b.sent {
		return
	}
	b.sent = true
	if b.to != nil {
		b.to.Report(b.d)
	}
}

// Diagnostic returns what Emit would report.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.d
}
