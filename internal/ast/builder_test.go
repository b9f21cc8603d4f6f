package ast

import "testing"

func TestCountNested(t *testing.T) {
	b := NewBuilder()
	use := b.Stmts.New(Stmt{Kind: StmtUse, Target: Ident{Name: "s"}})
	wrapped := b.Stmts.New(Stmt{Kind: StmtExpect, Inner: use})
	dangling := b.Stmts.New(Stmt{Kind: StmtExpect})
	scope := b.Stmts.New(Stmt{Kind: StmtScope, Body: []StmtID{wrapped, dangling}})

	if got := b.Count([]StmtID{scope}); got != 4 {
		t.Fatalf("Count = %d, want 4", got)
	}
	if NoStmtID.IsValid() || !use.IsValid() {
		t.Fatal("only allocated ids are valid")
	}
}
