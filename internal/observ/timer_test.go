package observ

import (
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	cur := time.Unix(0, 0)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(2 * time.Millisecond)

	parse := tm.Begin("parse")
	tm.End(parse, "12 stmts")
	eval := tm.Begin("eval")
	tm.End(eval, "")
	tm.End(42, "ignored")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(rep.Phases))
	}
	if rep.Phases[0].Name != "parse" || rep.Phases[0].Note != "12 stmts" {
		t.Fatalf("unexpected first phase: %+v", rep.Phases[0])
	}
	if rep.Phases[0].DurationMS != 2 || rep.TotalMS != 4 {
		t.Fatalf("durations: phase=%v total=%v", rep.Phases[0].DurationMS, rep.TotalMS)
	}
}

func TestEmptyTimer(t *testing.T) {
	if rep := NewTimer().Report(); rep.TotalMS != 0 || rep.Phases != nil {
		t.Fatalf("empty report = %+v", rep)
	}
}
