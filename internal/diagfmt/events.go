package diagfmt

import (
	"fmt"

	"ownsim/internal/ownership"
)

// DescribeEvent renders a store event as a short phrase.
func DescribeEvent(ev ownership.Event) string {
	switch ev.Kind {
	case ownership.EvDeclare:
		return "declare " + ev.Name
	case ownership.EvShadow:
		return fmt.Sprintf("%s shadows #%d", ev.Name, ev.Target)
	case ownership.EvMove, ownership.EvCopy, ownership.EvClone:
		if ev.TargetName == "" {
			return fmt.Sprintf("%s %s (%s)", ev.Kind, ev.Name, ev.Note)
		}
		return fmt.Sprintf("%s %s -> %s", ev.Kind, ev.Name, ev.TargetName)
	case ownership.EvBorrowStart, ownership.EvBorrowEnd:
		ref := "&"
		if ev.BorrowKind == ownership.BorrowMut {
			ref = "&mut "
		}
		return fmt.Sprintf("%s %s = %s%s", ev.Kind, ev.TargetName, ref, ev.Name)
	case ownership.EvWrite:
		return fmt.Sprintf("write %s (%s)", ev.Name, ev.Note)
	case ownership.EvUse:
		if ev.Note != "" {
			return fmt.Sprintf("use %s (%s)", ev.Name, ev.Note)
		}
		return "use " + ev.Name
	case ownership.EvDrop:
		return fmt.Sprintf("drop %s (buffer #%d released)", ev.Name, ev.Buffer)
	case ownership.EvScopeEnter, ownership.EvScopeExit:
		return fmt.Sprintf("%s #%d", ev.Kind, ev.Scope)
	default:
		return ev.Kind.String()
	}
}
