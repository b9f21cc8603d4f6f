package diag

import (
	"ownsim/internal/source"
)

// Note attaches secondary context to a diagnostic, e.g. "value moved here".
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is a single finding produced by the lexer, parser, or evaluator.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	// Help is a short suggestion shown under the message ("clone instead of move").
	Help string
}
