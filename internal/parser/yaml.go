package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf8"

	"fortio.org/safecast"
	"gopkg.in/yaml.v3"

	"ownsim/internal/ast"
	"ownsim/internal/diag"
	"ownsim/internal/ownership"
	"ownsim/internal/source"
)

// yamlParser turns a document of the form
//
//	steps:
//	  - op: let
//	    name: s
//	    mut: true
//	    value: hello
//
// into the same AST the text parser builds. The YAML tag of "value" picks
// the literal kind: !!str is a buffer, !!int, !!float and !!bool are
// scalars, a sequence is a tuple. "char" holds a single character.
type yamlParser struct {
	file   *source.File
	arenas *ast.Builder
	opts   Options
}

var yamlStepFields = map[ast.StmtKind][]string{
	ast.StmtLet:     {"name", "mut", "value", "char"},
	ast.StmtMove:    {"src", "dst", "mut"},
	ast.StmtCopy:    {"src", "dst", "mut"},
	ast.StmtClone:   {"src", "dst", "mut"},
	ast.StmtBorrow:  {"name", "owner", "mut"},
	ast.StmtPush:    {"name", "text"},
	ast.StmtSet:     {"name", "value", "char"},
	ast.StmtAssert:  {"name", "value", "char"},
	ast.StmtClear:   {"name"},
	ast.StmtUse:     {"name"},
	ast.StmtLen:     {"name"},
	ast.StmtConsume: {"name"},
	ast.StmtScope:   {"body"},
}

// ParseYAML parses a YAML step script.
func ParseYAML(file *source.File, arenas *ast.Builder, opts Options) Result {
	p := &yamlParser{file: file, arenas: arenas, opts: opts}
	script := &ast.Script{File: file.ID, Span: p.whole()}

	var doc yaml.Node
	if err := yaml.Unmarshal(file.Content, &doc); err != nil {
		p.report(diag.SynMalformedDocument, p.errorSpan(err), err.Error())
		return Result{Script: script, Errors: p.opts.CurrentErrors}
	}
	if len(doc.Content) == 0 {
		return Result{Script: script}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		p.report(diag.SynMalformedDocument, p.span(root), "expected a mapping with a 'steps' list")
		return Result{Script: script, Errors: p.opts.CurrentErrors}
	}
	steps := lookup(root, "steps")
	if steps == nil {
		p.report(diag.SynMissingField, p.span(root), "missing 'steps' list")
		return Result{Script: script, Errors: p.opts.CurrentErrors}
	}
	script.Body = p.steps(steps)
	return Result{Script: script, Errors: p.opts.CurrentErrors}
}

func (p *yamlParser) steps(seq *yaml.Node) []ast.StmtID {
	if seq.Kind != yaml.SequenceNode {
		p.report(diag.SynMalformedDocument, p.span(seq), "expected a list of steps")
		return nil
	}
	var out []ast.StmtID
	for _, n := range seq.Content {
		if p.opts.Enough() {
			break
		}
		if id, ok := p.step(n); ok {
			out = append(out, id)
		}
	}
	return out
}

func (p *yamlParser) step(n *yaml.Node) (ast.StmtID, bool) {
	n = unalias(n)
	if n.Kind != yaml.MappingNode {
		p.report(diag.SynMalformedDocument, p.span(n), "a step must be a mapping")
		return ast.NoStmtID, false
	}
	opNode := lookup(n, "op")
	if opNode == nil {
		p.report(diag.SynMissingField, p.span(n), "step has no 'op'")
		return ast.NoStmtID, false
	}
	kind, ok := ast.LookupStmtKind(opNode.Value)
	if !ok || kind == ast.StmtExpect {
		p.report(diag.SynUnknownStep, p.span(opNode), fmt.Sprintf("unknown op %q", opNode.Value))
		return ast.NoStmtID, false
	}
	if !p.checkFields(n, kind) {
		return ast.NoStmtID, false
	}

	st := ast.Stmt{Kind: kind, Span: p.span(opNode)}
	if kind == ast.StmtScope {
		body := lookup(n, "body")
		if body != nil {
			st.Body = p.steps(body)
		}
	} else if !p.fill(n, &st) {
		return ast.NoStmtID, false
	}
	id := p.arenas.Stmts.New(st)

	expect := lookup(n, "expect")
	if expect == nil {
		return id, true
	}
	ek, known := ownership.ParseErrorKind(expect.Value)
	if !known || ek == ownership.NoError {
		p.report(diag.SynUnknownErrorKind, p.span(expect), fmt.Sprintf("unknown rejection kind %q", expect.Value))
		return ast.NoStmtID, false
	}
	if kind == ast.StmtScope {
		p.report(diag.SynNestedExpect, p.span(expect), "'expect' wraps a single step, not a scope")
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.New(ast.Stmt{Kind: ast.StmtExpect, Span: st.Span, Expect: ek, Inner: id}), true
}

func (p *yamlParser) checkFields(n *yaml.Node, kind ast.StmtKind) bool {
	allowed := yamlStepFields[kind]
	ok := true
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if key == "op" || key == "expect" {
			continue
		}
		found := false
		for _, a := range allowed {
			if a == key {
				found = true
				break
			}
		}
		if !found {
			p.report(diag.SynUnexpectedToken, p.span(n.Content[i]), fmt.Sprintf("field %q is not valid for op %q", key, kind))
			ok = false
		}
	}
	return ok
}

func (p *yamlParser) fill(n *yaml.Node, st *ast.Stmt) bool {
	ident := func(field string) (ast.Ident, bool) {
		v := lookup(n, field)
		if v == nil || v.Kind != yaml.ScalarNode || v.Value == "" {
			p.report(diag.SynMissingField, st.Span, fmt.Sprintf("op %q needs a %q field", st.Kind, field))
			return ast.Ident{}, false
		}
		return ast.Ident{Name: v.Value, Span: p.span(v)}, true
	}
	var ok bool
	switch st.Kind {
	case ast.StmtMove, ast.StmtCopy, ast.StmtClone:
		if st.Source, ok = ident("src"); !ok {
			return false
		}
		if st.Target, ok = ident("dst"); !ok {
			return false
		}
	case ast.StmtBorrow:
		if st.Target, ok = ident("name"); !ok {
			return false
		}
		if st.Source, ok = ident("owner"); !ok {
			return false
		}
	default:
		if st.Target, ok = ident("name"); !ok {
			return false
		}
	}

	if m := lookup(n, "mut"); m != nil {
		b, err := strconv.ParseBool(m.Value)
		if err != nil || m.ShortTag() != "!!bool" {
			p.report(diag.SynExpectValue, p.span(m), "'mut' must be true or false")
			return false
		}
		st.Mut = b
	}

	switch st.Kind {
	case ast.StmtPush:
		t := lookup(n, "text")
		if t == nil || t.Kind != yaml.ScalarNode {
			p.report(diag.SynMissingField, st.Span, "op \"push\" needs a \"text\" field")
			return false
		}
		st.Text = t.Value
	case ast.StmtLet, ast.StmtSet, ast.StmtAssert:
		lit, ok := p.value(n, st)
		if !ok {
			return false
		}
		st.Value = lit
	}
	return true
}

func (p *yamlParser) value(n *yaml.Node, st *ast.Stmt) (ast.Lit, bool) {
	if c := lookup(n, "char"); c != nil {
		if utf8.RuneCountInString(c.Value) != 1 {
			p.report(diag.LexUnterminatedChar, p.span(c), "'char' must hold exactly one character")
			return ast.Lit{}, false
		}
		r, _ := utf8.DecodeRuneInString(c.Value)
		return ast.Lit{Kind: ast.LitChar, Span: p.span(c), Char: r}, true
	}
	v := lookup(n, "value")
	if v == nil {
		p.report(diag.SynMissingField, st.Span, fmt.Sprintf("op %q needs a \"value\" or \"char\" field", st.Kind))
		return ast.Lit{}, false
	}
	return p.lit(v, true)
}

func (p *yamlParser) lit(v *yaml.Node, allowString bool) (ast.Lit, bool) {
	sp := p.span(v)
	v = unalias(v)
	switch v.Kind {
	case yaml.SequenceNode:
		lit := ast.Lit{Kind: ast.LitTuple, Span: sp}
		for _, el := range v.Content {
			e, ok := p.lit(el, false)
			if !ok {
				return ast.Lit{}, false
			}
			lit.Elems = append(lit.Elems, e)
		}
		return lit, true
	case yaml.ScalarNode:
	default:
		p.report(diag.SynExpectValue, sp, "expected a scalar, a string or a list")
		return ast.Lit{}, false
	}

	switch v.ShortTag() {
	case "!!int":
		var i int64
		if err := v.Decode(&i); err != nil {
			p.report(diag.LexBadNumber, sp, err.Error())
			return ast.Lit{}, false
		}
		return ast.Lit{Kind: ast.LitInt, Span: sp, Int: i}, true
	case "!!float":
		var f float64
		if err := v.Decode(&f); err != nil {
			p.report(diag.LexBadNumber, sp, fmt.Sprintf("malformed float %q", v.Value))
			return ast.Lit{}, false
		}
		return ast.Lit{Kind: ast.LitFloat, Span: sp, Float: f}, true
	case "!!bool":
		var b bool
		if err := v.Decode(&b); err != nil {
			p.report(diag.SynExpectValue, sp, err.Error())
			return ast.Lit{}, false
		}
		return ast.Lit{Kind: ast.LitBool, Span: sp, Bool: b}, true
	case "!!str":
		if !allowString {
			p.report(diag.SynTupleNotScalar, sp, "a string is an owned buffer and cannot be a tuple element")
			return ast.Lit{}, false
		}
		return ast.Lit{Kind: ast.LitString, Span: sp, Text: v.Value}, true
	default:
		p.report(diag.SynExpectValue, sp, fmt.Sprintf("unsupported value tag %s", v.ShortTag()))
		return ast.Lit{}, false
	}
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return unalias(m.Content[i+1])
		}
	}
	return nil
}

// unalias follows *name references to the anchored node. yaml.v3 rejects
// undefined anchors while decoding, so a resolved alias is never nil.
func unalias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func (p *yamlParser) span(n *yaml.Node) source.Span {
	line, err := safecast.Conv[uint32](n.Line)
	if err != nil {
		line = 0
	}
	col, err := safecast.Conv[uint32](n.Column)
	if err != nil {
		col = 0
	}
	start := p.file.Offset(source.LineCol{Line: line, Col: col})
	end := start
	if n.Kind == yaml.ScalarNode {
		width := len(n.Value)
		if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
			width += 2
		}
		if w, err := safecast.Conv[uint32](width); err == nil {
			end = min(start+w, p.whole().End)
		}
	}
	return source.Span{File: p.file.ID, Start: start, End: end}
}

func (p *yamlParser) whole() source.Span {
	n, err := safecast.Conv[uint32](len(p.file.Content))
	if err != nil {
		panic(fmt.Errorf("file too large: %w", err))
	}
	return source.Span{File: p.file.ID, Start: 0, End: n}
}

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

// errorSpan points at the line named in a yaml.v3 error, if any.
func (p *yamlParser) errorSpan(err error) source.Span {
	m := yamlLineRe.FindStringSubmatch(err.Error())
	if m == nil {
		return source.Span{File: p.file.ID}
	}
	line, convErr := strconv.ParseUint(m[1], 10, 32)
	if convErr != nil {
		return source.Span{File: p.file.ID}
	}
	off := p.file.Offset(source.LineCol{Line: uint32(line), Col: 1})
	return source.Span{File: p.file.ID, Start: off, End: off}
}

func (p *yamlParser) report(code diag.Code, sp source.Span, msg string) {
	if p.opts.Enough() {
		return
	}
	p.opts.CurrentErrors++
	if p.opts.Reporter != nil {
		diag.ReportError(p.opts.Reporter, code, sp, msg).Emit()
	}
}
