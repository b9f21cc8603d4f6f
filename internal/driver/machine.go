package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"ownsim/internal/ast"
	"ownsim/internal/diag"
	"ownsim/internal/ownership"
	"ownsim/internal/source"
	"ownsim/internal/trace"
)

type instrKind uint8

const (
	instrStmt instrKind = iota
	instrEnter
	instrExit
	instrClose
)

type instr struct {
	kind  instrKind
	stmt  ast.StmtID
	span  source.Span
	depth int
}

// Machine evaluates a parsed script one step at a time against a fresh
// store. Nested scopes become enter/exit steps and the last step closes
// the root scope.
type Machine struct {
	arenas   *ast.Builder
	store    *ownership.Store
	opts     Options
	rep      diag.Reporter
	prog     []instr
	pc       int
	scopes   []ownership.ScopeID
	outcomes []Outcome
	final    []ownership.BindingView
	halted   bool
}

// NewMachine prepares script for evaluation. Diagnostics for rejected
// steps go to rep.
func NewMachine(arenas *ast.Builder, script *ast.Script, opts Options, rep diag.Reporter, tracer trace.Tracer) *Machine {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	m := &Machine{
		arenas: arenas,
		store:  ownership.New(ownership.Config{Shadowing: opts.Shadowing, Tracer: tracer}),
		opts:   opts,
		rep:    rep,
	}
	m.flatten(script.Body, 0)
	end := source.Span{File: script.File, Start: script.Span.End, End: script.Span.End}
	m.prog = append(m.prog, instr{kind: instrClose, span: end})
	return m
}

func (m *Machine) flatten(ids []ast.StmtID, depth int) {
	for _, id := range ids {
		st := m.arenas.Stmt(id)
		if st == nil {
			continue
		}
		if st.Kind != ast.StmtScope {
			m.prog = append(m.prog, instr{kind: instrStmt, stmt: id, span: st.Span, depth: depth})
			continue
		}
		m.prog = append(m.prog, instr{kind: instrEnter, stmt: id, span: st.Span, depth: depth})
		m.flatten(st.Body, depth+1)
		m.prog = append(m.prog, instr{kind: instrExit, stmt: id, span: st.Span, depth: depth})
	}
}

// Store exposes the store being driven.
func (m *Machine) Store() *ownership.Store { return m.store }

// Outcomes returns the outcomes recorded so far.
func (m *Machine) Outcomes() []Outcome { return m.outcomes }

// Final returns the bindings as they were just before the root scope closed.
func (m *Machine) Final() []ownership.BindingView { return m.final }

// Done reports whether every step has run.
func (m *Machine) Done() bool { return m.pc >= len(m.prog) }

// Halted reports whether FailFast cut the script short.
func (m *Machine) Halted() bool { return m.halted }

// Steps returns the total number of steps, the closing step included.
func (m *Machine) Steps() int { return len(m.prog) }

// Position returns the index of the next step.
func (m *Machine) Position() int { return m.pc }

// Peek describes the next step without running it.
func (m *Machine) Peek() (text string, span source.Span, ok bool) {
	if m.Done() {
		return "", source.Span{}, false
	}
	in := m.prog[m.pc]
	return m.describe(in), in.span, true
}

func (m *Machine) describe(in instr) string {
	switch in.kind {
	case instrEnter:
		return "{"
	case instrExit:
		return "}"
	case instrClose:
		return "end of script"
	default:
		return m.arenas.Format(in.stmt)
	}
}

// Run executes the remaining steps.
func (m *Machine) Run(ctx context.Context) error {
	for !m.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.Step()
	}
	return nil
}

// Step runs the next step and returns its outcome.
func (m *Machine) Step() (Outcome, bool) {
	if m.Done() {
		return Outcome{}, false
	}
	in := m.prog[m.pc]
	m.pc++

	before := m.store.EventCount()
	out := Outcome{
		Index: len(m.outcomes),
		Text:  m.describe(in),
		Span:  in.span,
		Depth: in.depth,
	}

	var err error
	subject := out.Text
	switch in.kind {
	case instrEnter:
		out.Op = "scope_enter"
		var id ownership.ScopeID
		if id, err = m.store.At(in.span).EnterScope(); err == nil {
			m.scopes = append(m.scopes, id)
		}
	case instrExit:
		out.Op = "scope_exit"
		id := m.scopes[len(m.scopes)-1]
		m.scopes = m.scopes[:len(m.scopes)-1]
		err = m.store.At(in.span).EndScope(id)
	case instrClose:
		out.Op = "close"
		m.final = m.store.Snapshot()
		err = m.store.At(in.span).Close()
	default:
		st := m.arenas.Stmt(in.stmt)
		out.Op = st.Kind.String()
		if st.Kind == ast.StmtExpect {
			out.Expect = st.Expect
			subject = m.arenas.Format(st.Inner)
			out.Detail, err = m.exec(m.arenas.Stmt(st.Inner))
		} else {
			out.Detail, err = m.exec(st)
		}
	}

	m.judge(&out, err, subject)
	out.Events = m.store.EventsSince(before)
	m.warnShadow(out.Events)
	m.outcomes = append(m.outcomes, out)

	if m.opts.FailFast && out.Status.Failed() && !m.halted {
		m.halted = true
		m.skipToEnd()
	}
	return out, true
}

// skipToEnd drops the remaining statements but keeps the closing step.
func (m *Machine) skipToEnd() {
	if last := len(m.prog) - 1; m.pc < last {
		m.pc = last
	}
}

func (m *Machine) judge(out *Outcome, err error, subject string) {
	var oerr *ownership.Error
	if err != nil && !errors.As(err, &oerr) {
		oerr = &ownership.Error{Kind: ownership.NoError, Op: out.Op, Message: err.Error(), Span: out.Span}
	}
	out.Err = oerr

	if out.Expect == ownership.NoError {
		if oerr == nil {
			out.Status = StatusOK
			return
		}
		out.Status = StatusRejected
		reportRejection(m.rep, oerr)
		return
	}

	switch {
	case oerr == nil:
		out.Status = StatusUnexpectedSuccess
		diag.ReportError(m.rep, diag.OwnExpectedRejection, out.Span,
			fmt.Sprintf("expected %s, but '%s' was accepted", out.Expect, subject)).
			WithHelp("the store accepted this operation; remove the 'expect' or change the script").
			Emit()
	case oerr.Kind == out.Expect:
		out.Status = StatusExpected
	default:
		out.Status = StatusWrongKind
		b := diag.ReportError(m.rep, diag.OwnRejectionMismatch, out.Span,
			fmt.Sprintf("expected %s, but the operation was rejected with %s", out.Expect, oerr.Kind)).
			WithNote(oerr.Span, oerr.Message)
		if oerr.Related != (source.Span{}) && oerr.RelatedNote != "" {
			b = b.WithNote(oerr.Related, oerr.RelatedNote)
		}
		b.Emit()
	}
}

func (m *Machine) warnShadow(events []ownership.Event) {
	if m.opts.Shadowing != ownership.ShadowWarn {
		return
	}
	for _, ev := range events {
		if ev.Kind != ownership.EvShadow {
			continue
		}
		b := diag.ReportWarning(m.rep, diag.OwnRedeclarationShadow, ev.Span,
			fmt.Sprintf("'%s' shadows an earlier binding in the same scope", ev.Name))
		if old, ok := m.store.Binding(ev.Target); ok && old.Declared != (source.Span{}) {
			b = b.WithNote(old.Declared, "previous declaration here")
		}
		b.WithHelp("the earlier value stays alive until the scope ends").Emit()
	}
}

// exec applies one statement to the store and returns the observed value
// for reads.
func (m *Machine) exec(st *ast.Stmt) (string, error) {
	s := m.store.At(st.Span)
	var err error
	switch st.Kind {
	case ast.StmtLet:
		_, err = s.Declare(st.Target.Name, litValue(st.Value), st.Mut)
	case ast.StmtMove:
		_, err = s.Move(st.Source.Name, st.Target.Name, st.Mut)
	case ast.StmtCopy:
		_, err = s.Copy(st.Source.Name, st.Target.Name, st.Mut)
	case ast.StmtClone:
		_, err = s.Clone(st.Source.Name, st.Target.Name, st.Mut)
	case ast.StmtBorrow:
		if st.Mut {
			_, err = s.BorrowMut(st.Source.Name, st.Target.Name)
		} else {
			_, err = s.BorrowShared(st.Source.Name, st.Target.Name)
		}
	case ast.StmtPush:
		err = s.Mutate(st.Target.Name, ownership.Push(st.Text))
	case ast.StmtSet:
		err = s.Mutate(st.Target.Name, ownership.Set(litValue(st.Value)))
	case ast.StmtClear:
		err = s.Mutate(st.Target.Name, ownership.Clear())
	case ast.StmtUse:
		v, rerr := s.Read(st.Target.Name)
		if rerr != nil {
			return "", rerr
		}
		return v.String(), nil
	case ast.StmtLen:
		n, lerr := s.Len(st.Target.Name)
		if lerr != nil {
			return "", lerr
		}
		return strconv.Itoa(n), nil
	case ast.StmtConsume:
		err = s.Consume(st.Target.Name)
	case ast.StmtAssert:
		err = s.Assert(st.Target.Name, litValue(st.Value))
	default:
		err = fmt.Errorf("statement %s cannot be evaluated here", st.Kind)
	}
	return "", err
}

// litValue converts a parsed literal into a store value.
func litValue(l ast.Lit) ownership.Value {
	if l.Kind == ast.LitString {
		return ownership.BufferValue(l.Text)
	}
	return ownership.ScalarValue(litScalar(l))
}

func litScalar(l ast.Lit) ownership.Scalar {
	switch l.Kind {
	case ast.LitInt:
		return ownership.IntScalar(l.Int)
	case ast.LitFloat:
		return ownership.FloatScalar(l.Float)
	case ast.LitBool:
		return ownership.BoolScalar(l.Bool)
	case ast.LitChar:
		return ownership.CharScalar(l.Char)
	case ast.LitTuple:
		elems := make([]ownership.Scalar, len(l.Elems))
		for i, e := range l.Elems {
			elems[i] = litScalar(e)
		}
		return ownership.TupleScalar(elems...)
	default:
		return ownership.Scalar{}
	}
}
