// Package observ measures how long each stage of a script evaluation takes.
package observ

import "time"

// PhaseReport is one finished phase in milliseconds.
type PhaseReport struct {
	Name       string  `json:"name" msgpack:"name"`
	DurationMS float64 `json:"duration_ms" msgpack:"duration_ms"`
	Note       string  `json:"note,omitempty" msgpack:"note,omitempty"`
}

// Report lists phases in the order they began. TotalMS sums them, so
// time between phases is not counted.
type Report struct {
	TotalMS float64       `json:"total_ms" msgpack:"total_ms"`
	Phases  []PhaseReport `json:"phases" msgpack:"phases"`
}

type phase struct {
	name    string
	started time.Time
	took    time.Duration
	note    string
}

// Timer records named phases for a single script. It is not safe for
// concurrent use; each evaluation owns its own.
type Timer struct {
	phases []phase
	now    func() time.Time
}

func NewTimer() *Timer { return &Timer{now: time.Now} }

// Begin opens a phase and returns the handle End expects.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, phase{name: name, started: t.now()})
	return len(t.phases) - 1
}

// End closes the phase opened as idx. A handle Begin never returned is
// ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.took = t.now().Sub(p.started)
	p.note = note
}

// Report converts what was recorded. A timer with no phases yields the
// zero Report.
func (t *Timer) Report() Report {
	var r Report
	var total time.Duration
	for _, p := range t.phases {
		total += p.took
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: millis(p.took), Note: p.note})
	}
	r.TotalMS = millis(total)
	return r
}

func millis(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
