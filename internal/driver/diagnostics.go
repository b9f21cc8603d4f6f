package driver

import (
	"ownsim/internal/diag"
	"ownsim/internal/ownership"
	"ownsim/internal/source"
)

var kindCodes = map[ownership.ErrorKind]diag.Code{
	ownership.UseAfterMove:        diag.OwnUseAfterMove,
	ownership.AliasConflict:       diag.OwnAliasConflict,
	ownership.NotMutable:          diag.OwnNotMutable,
	ownership.RedeclarationShadow: diag.OwnRedeclarationShadow,
	ownership.UnknownBinding:      diag.OwnUnknownBinding,
	ownership.KindMismatch:        diag.OwnKindMismatch,
	ownership.AssertionFailed:     diag.OwnAssertionFailed,
	ownership.ScopeMismatch:       diag.OwnScopeMismatch,
	ownership.StoreClosed:         diag.OwnStoreClosed,
}

// CodeFor maps a rejection kind to its diagnostic code.
func CodeFor(kind ownership.ErrorKind) diag.Code {
	if c, ok := kindCodes[kind]; ok {
		return c
	}
	return diag.UnknownCode
}

func reportRejection(rep diag.Reporter, err *ownership.Error) {
	b := diag.ReportError(rep, CodeFor(err.Kind), err.Span, err.Message)
	if err.Related != (source.Span{}) && err.RelatedNote != "" {
		b = b.WithNote(err.Related, err.RelatedNote)
	}
	if err.Help != "" {
		b = b.WithHelp(err.Help)
	}
	b.Emit()
}
