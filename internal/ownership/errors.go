package ownership

import (
	"errors"
	"fmt"
	"strings"

	"ownsim/internal/source"
)

// ErrorKind classifies a rejected operation. ErrorKind implements error so
// callers can write errors.Is(err, ownership.UseAfterMove).
type ErrorKind uint8

const (
	NoError ErrorKind = iota
	UseAfterMove
	AliasConflict
	NotMutable
	RedeclarationShadow
	UnknownBinding
	KindMismatch
	AssertionFailed
	ScopeMismatch
	StoreClosed
)

var errorKindNames = [...]string{
	NoError:             "NoError",
	UseAfterMove:        "UseAfterMove",
	AliasConflict:       "AliasConflict",
	NotMutable:          "NotMutable",
	RedeclarationShadow: "RedeclarationShadow",
	UnknownBinding:      "UnknownBinding",
	KindMismatch:        "KindMismatch",
	AssertionFailed:     "AssertionFailed",
	ScopeMismatch:       "ScopeMismatch",
	StoreClosed:         "StoreClosed",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return "Unknown"
}

func (k ErrorKind) Error() string { return k.String() }

// ParseErrorKind accepts both "UseAfterMove" and "use_after_move".
func ParseErrorKind(s string) (ErrorKind, bool) {
	norm := strings.ToLower(strings.ReplaceAll(s, "_", ""))
	for i, name := range errorKindNames {
		if i == int(NoError) {
			continue
		}
		if strings.ToLower(name) == norm {
			return ErrorKind(i), true
		}
	}
	return NoError, false
}

// Error describes a rejected operation. The store is unchanged when one is returned.
type Error struct {
	Kind    ErrorKind
	Op      string
	Name    string
	Message string
	Span    source.Span
	// Related points at the earlier move or borrow that caused the rejection.
	Related     source.Span
	RelatedNote string
	Help        string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches ErrorKind targets.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// KindOf extracts the ErrorKind from err, or NoError.
func KindOf(err error) ErrorKind {
	if err == nil {
		return NoError
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k ErrorKind
	if errors.As(err, &k) {
		return k
	}
	return NoError
}
