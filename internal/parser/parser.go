package parser

import (
	"path/filepath"
	"slices"
	"strings"

	"ownsim/internal/ast"
	"ownsim/internal/diag"
	"ownsim/internal/lexer"
	"ownsim/internal/source"
	"ownsim/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough reports whether the error limit has been reached.
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	Script *ast.Script
	Errors uint
}

// Ok reports whether the script parsed without errors.
func (r Result) Ok() bool { return r.Errors == 0 }

// Parser holds the state for one text script.
type Parser struct {
	lx       *lexer.Lexer
	arenas   *ast.Builder
	file     *source.File
	opts     Options
	lastSpan source.Span // span of the last consumed token
}

// IsYAML reports whether path names a YAML script.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Parse picks the text or YAML parser from the file extension.
func Parse(file *source.File, arenas *ast.Builder, opts Options) Result {
	if IsYAML(file.Path) {
		return ParseYAML(file, arenas, opts)
	}
	cr := &countingReporter{next: opts.Reporter}
	lx := lexer.New(file, lexer.Options{Reporter: cr})
	res := ParseFile(file, lx, arenas, opts)
	res.Errors += cr.errors
	return res
}

// ParseFile parses a text script from lx. Errors the lexer reports are not
// counted in the result; Parse counts both.
func ParseFile(file *source.File, lx *lexer.Lexer, arenas *ast.Builder, opts Options) Result {
	p := Parser{
		lx:     lx,
		arenas: arenas,
		file:   file,
		opts:   opts,
	}
	p.lastSpan = source.Span{File: file.ID}

	script := &ast.Script{File: file.ID}
	start := p.lx.Peek().Span
	script.Body = p.parseStmts(token.EOF)
	script.Span = start.Cover(p.lx.Peek().Span)
	return Result{Script: script, Errors: p.opts.CurrentErrors}
}

// parseStmts reads statements until end (EOF or '}').
func (p *Parser) parseStmts(end token.Kind) []ast.StmtID {
	var out []ast.StmtID
	for !p.at(token.EOF) && !p.at(end) {
		if p.opts.Enough() {
			p.resyncUntil(token.EOF)
			break
		}
		if p.at(token.Semicolon) {
			p.advance()
			continue
		}
		if p.at(token.RBrace) {
			// only reachable at top level
			p.err(diag.SynUnmatchedBrace, "unmatched '}'")
			p.advance()
			continue
		}
		id, ok := p.parseStmt()
		if !ok {
			p.resync()
			continue
		}
		out = append(out, id)
	}
	return out
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// resync skips to the start of the next statement, a ';', a '}' or EOF.
func (p *Parser) resync() {
	for !p.atOr(token.EOF, token.Semicolon, token.RBrace) && !p.lx.Peek().Kind.StartsStatement() {
		p.advance()
	}
	if p.at(token.Semicolon) {
		p.advance()
	}
}

func (p *Parser) resyncUntil(kinds ...token.Kind) {
	for !p.at(token.EOF) && !p.atOr(kinds...) {
		p.advance()
	}
}
