package parser

import (
	"ownsim/internal/ast"
	"ownsim/internal/diag"
	"ownsim/internal/ownership"
	"ownsim/internal/token"
)

// parseStmt dispatches on the leading keyword. It always consumes at least
// one token.
func (p *Parser) parseStmt() (ast.StmtID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.KwLet:
		return p.parseLet()
	case token.KwMove:
		return p.parseTransfer(ast.StmtMove)
	case token.KwCopy:
		return p.parseTransfer(ast.StmtCopy)
	case token.KwClone:
		return p.parseTransfer(ast.StmtClone)
	case token.KwBorrow:
		return p.parseBorrow()
	case token.KwPush:
		return p.parsePush()
	case token.KwSet:
		return p.parseAssignLike(ast.StmtSet, token.Assign, diag.SynExpectAssign, "expected '='")
	case token.KwAssert:
		return p.parseAssignLike(ast.StmtAssert, token.EqEq, diag.SynUnexpectedToken, "expected '=='")
	case token.KwClear:
		return p.parseUnary(ast.StmtClear)
	case token.KwUse:
		return p.parseUnary(ast.StmtUse)
	case token.KwLen:
		return p.parseUnary(ast.StmtLen)
	case token.KwConsume:
		return p.parseUnary(ast.StmtConsume)
	case token.KwExpect:
		return p.parseExpect()
	case token.LBrace:
		return p.parseScope()
	case token.Invalid:
		p.advance()
		return ast.NoStmtID, false
	default:
		p.report(diag.SynUnexpectedToken, diag.SevError, tok.Span, "expected a statement, found "+tok.Kind.String())
		p.advance()
		return ast.NoStmtID, false
	}
}

func (p *Parser) newStmt(st ast.Stmt) ast.StmtID {
	st.Span = st.Span.Cover(p.lastSpan)
	return p.arenas.Stmts.New(st)
}

// let [mut] name = value
func (p *Parser) parseLet() (ast.StmtID, bool) {
	kw := p.advance()
	mut := false
	if p.at(token.KwMut) {
		p.advance()
		mut = true
	}
	name, ok := p.parseIdent("binding name after 'let'")
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.Assign, diag.SynExpectAssign, "expected '=' after binding name"); !ok {
		return ast.NoStmtID, false
	}
	val, ok := p.parseValue(true)
	if !ok {
		return ast.NoStmtID, false
	}
	return p.newStmt(ast.Stmt{Kind: ast.StmtLet, Span: kw.Span, Target: name, Mut: mut, Value: val}), true
}

// move|copy|clone src -> [mut] dst
func (p *Parser) parseTransfer(kind ast.StmtKind) (ast.StmtID, bool) {
	kw := p.advance()
	src, ok := p.parseIdent("source binding after '" + kw.Text + "'")
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.Arrow, diag.SynExpectArrow, "expected '->' after source binding"); !ok {
		return ast.NoStmtID, false
	}
	mut := false
	if p.at(token.KwMut) {
		p.advance()
		mut = true
	}
	dst, ok := p.parseIdent("destination binding after '->'")
	if !ok {
		return ast.NoStmtID, false
	}
	return p.newStmt(ast.Stmt{Kind: kind, Span: kw.Span, Source: src, Target: dst, Mut: mut}), true
}

// borrow handle = &[mut] owner
func (p *Parser) parseBorrow() (ast.StmtID, bool) {
	kw := p.advance()
	handle, ok := p.parseIdent("handle name after 'borrow'")
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.Assign, diag.SynExpectAssign, "expected '=' after handle name"); !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.Amp, diag.SynExpectRef, "expected '&' or '&mut'"); !ok {
		return ast.NoStmtID, false
	}
	mut := false
	if p.at(token.KwMut) {
		p.advance()
		mut = true
	}
	owner, ok := p.parseIdent("owner binding after '&'")
	if !ok {
		return ast.NoStmtID, false
	}
	return p.newStmt(ast.Stmt{Kind: ast.StmtBorrow, Span: kw.Span, Target: handle, Source: owner, Mut: mut}), true
}

// push target "text"
func (p *Parser) parsePush() (ast.StmtID, bool) {
	kw := p.advance()
	target, ok := p.parseIdent("binding after 'push'")
	if !ok {
		return ast.NoStmtID, false
	}
	val, ok := p.parseValue(true)
	if !ok {
		return ast.NoStmtID, false
	}
	if val.Kind != ast.LitString {
		p.report(diag.SynExpectValue, diag.SevError, val.Span, "push takes a string literal")
		return ast.NoStmtID, false
	}
	return p.newStmt(ast.Stmt{Kind: ast.StmtPush, Span: kw.Span, Target: target, Text: val.Text}), true
}

// set target = value / assert target == value
func (p *Parser) parseAssignLike(kind ast.StmtKind, sep token.Kind, code diag.Code, msg string) (ast.StmtID, bool) {
	kw := p.advance()
	target, ok := p.parseIdent("binding after '" + kw.Text + "'")
	if !ok {
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(sep, code, msg); !ok {
		return ast.NoStmtID, false
	}
	val, ok := p.parseValue(true)
	if !ok {
		return ast.NoStmtID, false
	}
	return p.newStmt(ast.Stmt{Kind: kind, Span: kw.Span, Target: target, Value: val}), true
}

// clear|use|len|consume target
func (p *Parser) parseUnary(kind ast.StmtKind) (ast.StmtID, bool) {
	kw := p.advance()
	target, ok := p.parseIdent("binding after '" + kw.Text + "'")
	if !ok {
		return ast.NoStmtID, false
	}
	return p.newStmt(ast.Stmt{Kind: kind, Span: kw.Span, Target: target}), true
}

// expect Kind stmt
func (p *Parser) parseExpect() (ast.StmtID, bool) {
	kw := p.advance()
	name, ok := p.parseIdent("rejection kind after 'expect'")
	if !ok {
		return ast.NoStmtID, false
	}
	kind, known := ownership.ParseErrorKind(name.Name)
	if !known || kind == ownership.NoError {
		p.report(diag.SynUnknownErrorKind, diag.SevError, name.Span, "unknown rejection kind '"+name.Name+"'")
		return ast.NoStmtID, false
	}
	switch p.lx.Peek().Kind {
	case token.KwExpect:
		p.err(diag.SynNestedExpect, "'expect' cannot wrap another 'expect'")
		return ast.NoStmtID, false
	case token.LBrace:
		p.err(diag.SynNestedExpect, "'expect' wraps a single statement, not a scope")
		return ast.NoStmtID, false
	}
	inner, ok := p.parseStmt()
	if !ok {
		return ast.NoStmtID, false
	}
	return p.newStmt(ast.Stmt{Kind: ast.StmtExpect, Span: kw.Span, Expect: kind, Inner: inner}), true
}

// { stmts }
func (p *Parser) parseScope() (ast.StmtID, bool) {
	open := p.advance()
	body := p.parseStmts(token.RBrace)
	if !p.at(token.RBrace) {
		p.report(diag.SynUnclosedBrace, diag.SevError, open.Span, "scope opened here is never closed")
		return ast.NoStmtID, false
	}
	p.advance()
	return p.newStmt(ast.Stmt{Kind: ast.StmtScope, Span: open.Span, Body: body}), true
}
