package driver

import (
	"ownsim/internal/ownership"
	"ownsim/internal/source"
)

// Status is the verdict for one evaluated step.
type Status uint8

const (
	// StatusOK means the operation was accepted.
	StatusOK Status = iota
	// StatusRejected means the store refused the operation; it was left unchanged.
	StatusRejected
	// StatusExpected means an 'expect' step was rejected with the expected kind.
	StatusExpected
	// StatusUnexpectedSuccess means an 'expect' step was accepted.
	StatusUnexpectedSuccess
	// StatusWrongKind means an 'expect' step was rejected with another kind.
	StatusWrongKind
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRejected:
		return "rejected"
	case StatusExpected:
		return "expected"
	case StatusUnexpectedSuccess:
		return "unexpected-success"
	case StatusWrongKind:
		return "wrong-kind"
	default:
		return "unknown"
	}
}

// Failed reports whether the status counts against the script.
func (s Status) Failed() bool {
	return s == StatusRejected || s == StatusUnexpectedSuccess || s == StatusWrongKind
}

// Outcome records what one step did.
type Outcome struct {
	Index  int
	Op     string // statement kind, or "scope_enter", "scope_exit", "close"
	Text   string // the statement in script syntax
	Span   source.Span
	Depth  int
	Status Status
	Expect ownership.ErrorKind
	Err    *ownership.Error
	// Detail is the observed value for reads ("hello", "5") when there is one.
	Detail string
	Events []ownership.Event
}
