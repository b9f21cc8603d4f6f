package trace

import (
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64

	// now is replaced in tests.
	now = time.Now
)

// NextSeq returns the next global event number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// Span is an open begin/end pair. A nil or disabled span is inert.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

func accepts(t Tracer, scope Scope) bool {
	return t != nil && t.Enabled() && t.Level().ShouldEmit(scope)
}

// Begin opens a span below parent (0 for none) and emits its begin event.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !accepts(t, scope) {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		id:      spanCounter.Add(1),
		parent:  parent,
		scope:   scope,
		name:    name,
		started: now(),
	}
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	ev := &Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
	}
	if kind == KindSpanEnd {
		ev.Extra = s.extra
	}
	return ev
}

// End emits the end event and returns the span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	at := now()
	s.tracer.Emit(s.event(KindSpanEnd, at, detail))
	return at.Sub(s.started)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID is 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits a single instant event.
func Point(t Tracer, scope Scope, name, detail string, extra map[string]string) {
	if !accepts(t, scope) {
		return
	}
	t.Emit(&Event{
		Time:   now(),
		Seq:    NextSeq(),
		Kind:   KindPoint,
		Scope:  scope,
		Name:   name,
		Detail: detail,
		Extra:  extra,
	})
}
