package ast

type StmtID uint32

const NoStmtID StmtID = 0

// IsValid reports whether id names a statement.
func (id StmtID) IsValid() bool { return id != NoStmtID }
