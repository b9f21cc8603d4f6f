package parser

import (
	"ownsim/internal/ast"
	"ownsim/internal/diag"
	"ownsim/internal/source"
	"ownsim/internal/token"
)

// countingReporter forwards lexical diagnostics and counts the errors.
type countingReporter struct {
	next   diag.Reporter
	errors uint
}

func (r *countingReporter) Report(d diag.Diagnostic) {
	if d.Severity == diag.SevError {
		r.errors++
	}
	if r.next != nil {
		r.next.Report(d)
	}
}

// advance consumes the next token and remembers its span.
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// diagnosticSpan points at the current token, or just after the last
// consumed one when the current token is EOF or sits on a later line.
func (p *Parser) diagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF || peek.AfterNewline() {
		if p.lastSpan.End > 0 {
			return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
		}
	}
	return peek.Span
}

// expect consumes a token of kind k or reports code with msg.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.diagnosticSpan()
	if p.at(token.Invalid) {
		// the lexer already reported this token
		return token.Token{Kind: token.Invalid, Span: sp}, false
	}
	p.report(code, diag.SevError, sp, msg+", found "+p.lx.Peek().Kind.String())
	return token.Token{Kind: token.Invalid, Span: sp, Text: p.lx.Peek().Text}, false
}

func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.diagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if sev == diag.SevError {
		if p.opts.Enough() {
			return false
		}
		p.opts.CurrentErrors++
	}
	if p.opts.Reporter == nil {
		return false
	}
	diag.NewReportBuilder(p.opts.Reporter, sev, code, sp, msg).Emit()
	return true
}

// parseIdent expects an identifier.
func (p *Parser) parseIdent(what string) (ast.Ident, bool) {
	tok, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected "+what)
	if !ok {
		return ast.Ident{}, false
	}
	return ast.Ident{Name: tok.Text, Span: tok.Span}, true
}
