package ast

import "strings"

// Format renders a statement back into script syntax. Scopes span
// several lines indented by depth.
func (b *Builder) Format(id StmtID) string {
	var sb strings.Builder
	b.format(&sb, id, 0)
	return sb.String()
}

// FormatScript renders a whole script, one statement per line.
func (b *Builder) FormatScript(s *Script) string {
	var sb strings.Builder
	for _, id := range s.Body {
		b.format(&sb, id, 0)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (b *Builder) format(sb *strings.Builder, id StmtID, depth int) {
	st := b.Stmt(id)
	if st == nil {
		sb.WriteString("<nil>")
		return
	}
	mut := func(m bool) string {
		if m {
			return "mut "
		}
		return ""
	}
	switch st.Kind {
	case StmtLet:
		sb.WriteString("let " + mut(st.Mut) + st.Target.Name + " = " + st.Value.String())
	case StmtMove, StmtCopy, StmtClone:
		sb.WriteString(st.Kind.String() + " " + st.Source.Name + " -> " + mut(st.Mut) + st.Target.Name)
	case StmtBorrow:
		sb.WriteString("borrow " + st.Target.Name + " = &" + mut(st.Mut) + st.Source.Name)
	case StmtPush:
		sb.WriteString("push " + st.Target.Name + " " + Quote(st.Text, '"'))
	case StmtSet:
		sb.WriteString("set " + st.Target.Name + " = " + st.Value.String())
	case StmtAssert:
		sb.WriteString("assert " + st.Target.Name + " == " + st.Value.String())
	case StmtClear, StmtUse, StmtLen, StmtConsume:
		sb.WriteString(st.Kind.String() + " " + st.Target.Name)
	case StmtExpect:
		sb.WriteString("expect " + st.Expect.String() + " ")
		b.format(sb, st.Inner, depth)
	case StmtScope:
		sb.WriteString("{\n")
		for _, child := range st.Body {
			sb.WriteString(strings.Repeat("    ", depth+1))
			b.format(sb, child, depth+1)
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Repeat("    ", depth) + "}")
	default:
		sb.WriteString("<invalid>")
	}
}
