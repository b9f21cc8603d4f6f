package trace

import (
	"errors"
	"io"
	"sync"
)

const defaultRingSize = 4096

// StreamTracer formats each event and writes it at once.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
}

// NewStreamTracer writes events at level to w.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	return &StreamTracer{w: w, level: level, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	line := FormatEvent(ev, t.format)
	t.mu.Lock()
	_, _ = t.w.Write(line) // best effort
	t.mu.Unlock()
}

func (t *StreamTracer) Flush() error {
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes the writer when it is an io.Closer.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }

// RingTracer keeps the newest events in a fixed-size buffer.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	next  int // slot the next event goes to
	count int // events held, at most len(buf)
	level Level
}

// NewRingTracer holds up to capacity events (default 4096).
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = defaultRingSize
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	t.buf[t.next] = *ev
	t.next = (t.next + 1) % len(t.buf)
	t.count = min(t.count+1, len(t.buf))
	t.mu.Unlock()
}

// Snapshot copies the held events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, 0, t.count)
	start := (t.next - t.count + len(t.buf)) % len(t.buf)
	for i := range t.count {
		out = append(out, t.buf[(start+i)%len(t.buf)])
	}
	return out
}

// Dump writes the held events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }

// MultiTracer copies every event to each of its tracers.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{tracers: tracers, level: level}
}

func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

func (t *MultiTracer) Flush() error {
	errs := make([]error, 0, len(t.tracers))
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Close() error {
	errs := make([]error, 0, len(t.tracers))
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

// Ring is the first RingTracer among t's tracers, or nil.
func (t *MultiTracer) Ring() *RingTracer {
	for _, tr := range t.tracers {
		if r, ok := tr.(*RingTracer); ok {
			return r
		}
	}
	return nil
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }

// scriptTracer stamps the script path on everything passing through.
type scriptTracer struct {
	Tracer
	script string
}

// ForScript wraps t so every event it receives names script.
func ForScript(t Tracer, script string) Tracer {
	if t == nil || !t.Enabled() {
		return Nop
	}
	return scriptTracer{Tracer: t, script: script}
}

func (t scriptTracer) Emit(ev *Event) {
	if ev.Script == "" {
		ev.Script = t.script
	}
	t.Tracer.Emit(ev)
}
