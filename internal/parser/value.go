package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"ownsim/internal/ast"
	"ownsim/internal/diag"
	"ownsim/internal/lexer"
	"ownsim/internal/token"
)

// parseValue parses a literal: int, float, bool, char, string or a tuple of
// scalars. Strings are only allowed when allowString is set.
func (p *Parser) parseValue(allowString bool) (ast.Lit, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit, token.FloatLit:
		p.advance()
		return p.number(tok, false)
	case token.Minus:
		p.advance()
		num := p.lx.Peek()
		if num.Kind != token.IntLit && num.Kind != token.FloatLit {
			p.err(diag.SynExpectValue, "expected a number after '-'")
			return ast.Lit{}, false
		}
		p.advance()
		lit, ok := p.number(num, true)
		lit.Span = tok.Span.Cover(num.Span)
		return lit, ok
	case token.KwTrue, token.KwFalse:
		p.advance()
		return ast.Lit{Kind: ast.LitBool, Span: tok.Span, Bool: tok.Kind == token.KwTrue}, true
	case token.CharLit:
		p.advance()
		text, err := lexer.Unquote(tok.Text)
		if err != nil {
			p.report(diag.LexBadEscape, diag.SevError, tok.Span, err.Error())
			return ast.Lit{}, false
		}
		r, _ := utf8.DecodeRuneInString(text)
		return ast.Lit{Kind: ast.LitChar, Span: tok.Span, Char: r}, true
	case token.StringLit:
		p.advance()
		text, err := lexer.Unquote(tok.Text)
		if err != nil {
			p.report(diag.LexBadEscape, diag.SevError, tok.Span, err.Error())
			return ast.Lit{}, false
		}
		lit := ast.Lit{Kind: ast.LitString, Span: tok.Span, Text: text}
		if !allowString {
			p.report(diag.SynTupleNotScalar, diag.SevError, tok.Span, "a string is an owned buffer and cannot be a tuple element")
			return lit, false
		}
		return lit, true
	case token.LParen:
		return p.parseTuple()
	case token.Invalid:
		p.advance()
		return ast.Lit{}, false
	default:
		p.err(diag.SynExpectValue, "expected a value, found "+tok.Kind.String())
		return ast.Lit{}, false
	}
}

func (p *Parser) number(tok token.Token, neg bool) (ast.Lit, bool) {
	text := strings.ReplaceAll(tok.Text, "_", "")
	if neg {
		text = "-" + text
	}
	if tok.Kind == token.IntLit {
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			p.report(diag.LexBadNumber, diag.SevError, tok.Span, "integer literal "+text+" does not fit in 64 bits")
			return ast.Lit{}, false
		}
		return ast.Lit{Kind: ast.LitInt, Span: tok.Span, Int: v}, true
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.report(diag.LexBadNumber, diag.SevError, tok.Span, "malformed float literal "+text)
		return ast.Lit{}, false
	}
	return ast.Lit{Kind: ast.LitFloat, Span: tok.Span, Float: v}, true
}

// (a, b, ...) with an optional trailing comma. "(x)" is just x; "(x,)" is a
// one-element tuple.
func (p *Parser) parseTuple() (ast.Lit, bool) {
	open := p.advance()
	var elems []ast.Lit
	trailingComma := false
	for !p.at(token.RParen) {
		el, ok := p.parseValue(false)
		if !ok {
			p.resyncUntil(token.RParen)
			if p.at(token.RParen) {
				p.advance()
			}
			return ast.Lit{}, false
		}
		elems = append(elems, el)
		trailingComma = false
		if !p.at(token.Comma) {
			break
		}
		p.advance()
		trailingComma = true
	}
	closeTok, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ',' or ')' in tuple")
	if !ok {
		return ast.Lit{}, false
	}
	if len(elems) == 1 && !trailingComma {
		return elems[0], true
	}
	return ast.Lit{Kind: ast.LitTuple, Span: open.Span.Cover(closeTok.Span), Elems: elems}, true
}
