package trace

import "time"

// Kind is what an event marks.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event; smaller is coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // a command or a whole check
	ScopePass                    // load, parse, eval
	ScopeScript                  // one script file
	ScopeNode                    // one store operation
)

var scopeNames = [...]string{ScopeDriver: "driver", ScopePass: "pass", ScopeScript: "script", ScopeNode: "node"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64 // 0 for points
	ParentID uint64 // 0 at the top
	Script   string // script path, set by ForScript
	Name     string // "parse", "eval", "own.move", ...
	Detail   string
	Extra    map[string]string
}
