// Package diag defines the diagnostic model shared by the lexer, the parsers
// and the evaluator.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings: syntax
//     problems in a script and rejected ownership operations.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not perform any terminal formatting or IO. Rendering
// lives in internal/diagfmt; FormatShort is the one plain-text rendering kept
// here because tests and the check command compare it verbatim.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error.
//   - Code: compact numeric identifier with a stable string form
//     (LEX1xxx, SYN2xxx, OWN3xxx, IO4xxx, OBS6xxx).
//   - Message: short, human oriented text.
//   - Primary: the span of the offending statement.
//   - Notes: secondary spans such as "value moved here".
//   - Help: one-line suggestion ("clone the buffer instead of moving it").
//
// # Emitting diagnostics
//
// Producers use a Reporter. ReportError/ReportWarning return a ReportBuilder
// that can chain WithNote / WithHelp before Emit. BagReporter aggregates into
// a Bag, which supports limits, sorting and deduplication.
package diag
