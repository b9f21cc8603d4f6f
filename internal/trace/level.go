package trace

import (
	"fmt"
	"strings"
)

// Level controls which scopes are recorded.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // kept in memory for dumps only, nothing emitted
	LevelPhase        // commands and passes
	LevelDetail       // plus per-script work
	LevelDebug        // plus every store operation
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// finest is the finest scope each level lets through.
var finest = [...]Scope{LevelPhase: ScopePass, LevelDetail: ScopeScript, LevelDebug: ScopeNode}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the level names case-insensitively.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if s == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass at level l.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(finest) {
		return false
	}
	return scope != 0 && scope <= finest[l]
}
