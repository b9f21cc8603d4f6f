package ast

import (
	"ownsim/internal/ownership"
	"ownsim/internal/source"
)

type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtLet              // let [mut] name = value
	StmtMove             // move src -> [mut] dst
	StmtCopy             // copy src -> [mut] dst
	StmtClone            // clone src -> [mut] dst
	StmtBorrow           // borrow handle = &[mut] owner
	StmtPush             // push target "text"
	StmtSet              // set target = value
	StmtClear            // clear target
	StmtUse              // use target
	StmtLen              // len target
	StmtConsume          // consume target
	StmtAssert           // assert target == value
	StmtScope            // { body }
	StmtExpect           // expect Kind stmt
)

var stmtKindNames = [...]string{
	StmtInvalid: "invalid",
	StmtLet:     "let",
	StmtMove:    "move",
	StmtCopy:    "copy",
	StmtClone:   "clone",
	StmtBorrow:  "borrow",
	StmtPush:    "push",
	StmtSet:     "set",
	StmtClear:   "clear",
	StmtUse:     "use",
	StmtLen:     "len",
	StmtConsume: "consume",
	StmtAssert:  "assert",
	StmtScope:   "scope",
	StmtExpect:  "expect",
}

func (k StmtKind) String() string {
	if int(k) < len(stmtKindNames) {
		return stmtKindNames[k]
	}
	return "unknown"
}

// LookupStmtKind maps an op name ("let", "move", ...) to its kind.
func LookupStmtKind(name string) (StmtKind, bool) {
	for k, n := range stmtKindNames {
		if n == name && StmtKind(k) != StmtInvalid {
			return StmtKind(k), true
		}
	}
	return StmtInvalid, false
}

// Ident is a binding name with its location.
type Ident struct {
	Name string
	Span source.Span
}

// Stmt is one script statement. Which fields are set depends on Kind:
//
//	let:     Target, Mut, Value
//	move/copy/clone: Source, Target, Mut
//	borrow:  Target (handle), Source (owner), Mut
//	push:    Target, Text
//	set:     Target, Value
//	assert:  Target, Value
//	clear/use/len/consume: Target
//	scope:   Body
//	expect:  Expect, Inner
type Stmt struct {
	Kind   StmtKind
	Span   source.Span
	Target Ident
	Source Ident
	Mut    bool
	Value  Lit
	Text   string
	Body   []StmtID
	Expect ownership.ErrorKind
	Inner  StmtID
}

type Stmts struct {
	Arena *Arena[Stmt]
}

func NewStmts(capHint uint) *Stmts {
	return &Stmts{Arena: NewArena[Stmt](capHint)}
}

func (s *Stmts) New(stmt Stmt) StmtID {
	return StmtID(s.Arena.Allocate(stmt))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}
