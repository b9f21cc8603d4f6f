package lexer

import (
	"ownsim/internal/diag"
	"ownsim/internal/source"
)

type Options struct {
	Reporter diag.Reporter // nil drops lexical errors; lexing continues either way
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter == nil {
		return
	}
	diag.ReportError(lx.opts.Reporter, code, sp, msg).Emit()
}
