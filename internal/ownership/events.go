package ownership

import "ownsim/internal/source"

// EventKind identifies the type of event recorded by the store.
type EventKind uint8

const (
	EvDeclare EventKind = iota + 1
	EvShadow
	EvMove
	EvCopy
	EvClone
	EvBorrowStart
	EvBorrowEnd
	EvWrite
	EvUse
	EvDrop
	EvScopeEnter
	EvScopeExit
)

func (k EventKind) String() string {
	switch k {
	case EvDeclare:
		return "declare"
	case EvShadow:
		return "shadow"
	case EvMove:
		return "move"
	case EvCopy:
		return "copy"
	case EvClone:
		return "clone"
	case EvBorrowStart:
		return "borrow_start"
	case EvBorrowEnd:
		return "borrow_end"
	case EvWrite:
		return "write"
	case EvUse:
		return "use"
	case EvDrop:
		return "drop"
	case EvScopeEnter:
		return "scope_enter"
	case EvScopeExit:
		return "scope_exit"
	default:
		return "unknown"
	}
}

// Event is a log entry appended for every committed operation.
// Rejected operations never produce events.
type Event struct {
	Seq  int
	Kind EventKind

	// Binding is the binding acted on: the declared name, the move source,
	// the borrowed owner, the dropped binding.
	Binding BindingID
	Name    string

	// Target is the second binding involved when there is one: the move/copy/clone
	// destination, the borrow handle, or the binding a shadow hides.
	Target     BindingID
	TargetName string

	// Borrow and BorrowKind are set for borrow_start/borrow_end.
	Borrow     BorrowID
	BorrowKind BorrowKind

	// Buffer is set for events touching an owned buffer.
	Buffer BufferID

	Scope ScopeID
	Span  source.Span
	Note  string
}
