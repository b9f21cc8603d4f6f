package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// lexical
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexUnterminatedChar   Code = 1003
	LexBadNumber          Code = 1004
	LexBadEscape          Code = 1005

	// syntax
	SynUnexpectedToken   Code = 2001
	SynUnclosedBrace     Code = 2002
	SynUnmatchedBrace    Code = 2003
	SynExpectIdentifier  Code = 2004
	SynExpectValue       Code = 2005
	SynExpectArrow       Code = 2006
	SynExpectAssign      Code = 2007
	SynExpectRef         Code = 2008
	SynUnknownErrorKind  Code = 2009
	SynTupleNotScalar    Code = 2010
	SynNestedExpect      Code = 2011
	SynUnknownStep       Code = 2012
	SynMissingField      Code = 2013
	SynMalformedDocument Code = 2014

	// ownership rules
	OwnUseAfterMove        Code = 3001
	OwnAliasConflict       Code = 3002
	OwnNotMutable          Code = 3003
	OwnRedeclarationShadow Code = 3004
	OwnUnknownBinding      Code = 3005
	OwnKindMismatch        Code = 3006
	OwnAssertionFailed     Code = 3007
	OwnScopeMismatch       Code = 3008
	OwnStoreClosed         Code = 3009
	OwnExpectedRejection   Code = 3010
	OwnRejectionMismatch   Code = 3011

	// io
	IOLoadFileError Code = 4001

	// observability
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		LexUnknownChar:        "Unknown character",
		LexUnterminatedString: "Unterminated string literal",
		LexUnterminatedChar:   "Unterminated character literal",
		LexBadNumber:          "Malformed number literal",
		LexBadEscape:          "Unknown escape sequence",

		SynUnexpectedToken:   "Unexpected token",
		SynUnclosedBrace:     "Unclosed scope brace",
		SynUnmatchedBrace:    "Unmatched closing brace",
		SynExpectIdentifier:  "Expected identifier",
		SynExpectValue:       "Expected value",
		SynExpectArrow:       "Expected '->'",
		SynExpectAssign:      "Expected '='",
		SynExpectRef:         "Expected '&' or '&mut'",
		SynUnknownErrorKind:  "Unknown rejection kind",
		SynTupleNotScalar:    "Tuple element is not a scalar",
		SynNestedExpect:      "Nested expect",
		SynUnknownStep:       "Unknown step operation",
		SynMissingField:      "Missing step field",
		SynMalformedDocument: "Malformed script document",

		OwnUseAfterMove:        "Use after move",
		OwnAliasConflict:       "Alias conflict",
		OwnNotMutable:          "Binding is not mutable",
		OwnRedeclarationShadow: "Redeclaration shadows a binding",
		OwnUnknownBinding:      "Unknown binding",
		OwnKindMismatch:        "Operation does not fit the value kind",
		OwnAssertionFailed:     "Assertion failed",
		OwnScopeMismatch:       "Scope mismatch",
		OwnStoreClosed:         "Store is closed",
		OwnExpectedRejection:   "Expected rejection did not happen",
		OwnRejectionMismatch:   "Rejected with a different kind",

		IOLoadFileError: "I/O load file error",

		ObsTimings: "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("OWN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
