package ast

import "ownsim/internal/source"

// Script is a parsed file: its top-level statements in order.
type Script struct {
	File source.FileID
	Span source.Span
	Body []StmtID
}

// Builder owns the statement arena shared by every script it parses.
type Builder struct {
	Stmts *Stmts
}

func NewBuilder() *Builder {
	return &Builder{Stmts: NewStmts(64)}
}

// Stmt returns the statement for id or nil.
func (b *Builder) Stmt(id StmtID) *Stmt {
	return b.Stmts.Get(id)
}

// Count returns the number of statements in ids including nested ones.
func (b *Builder) Count(ids []StmtID) int {
	n := 0
	for _, id := range ids {
		st := b.Stmt(id)
		if st == nil {
			continue
		}
		n++
		switch st.Kind {
		case StmtScope:
			n += b.Count(st.Body)
		case StmtExpect:
			if st.Inner.IsValid() {
				n += b.Count([]StmtID{st.Inner})
			}
		}
	}
	return n
}
