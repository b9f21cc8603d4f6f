package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeScript, false},
		{LevelDetail, ScopeScript, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "ERROR", "phase", "Detail", "debug"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopeNode, name, "", nil)
	}
	evs := r.Snapshot()
	if len(evs) != 3 {
		t.Fatalf("got %d events, want 3", len(evs))
	}
	var names []string
	for _, ev := range evs {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ","); got != "c,d,e" {
		t.Errorf("ring order = %s, want c,d,e", got)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	span := Begin(st, ScopePass, "parse", 0)
	Point(st, ScopeNode, "own.move", "", nil)
	span.WithExtra("stmts", "4").End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (node point filtered):\n%s", len(lines), buf.String())
	}
	var end jsonEvent
	if err := json.Unmarshal([]byte(lines[1]), &end); err != nil {
		t.Fatal(err)
	}
	if end.Kind != "end" || end.Detail != "ok" || end.Extra["stmts"] != "4" {
		t.Errorf("unexpected end event: %+v", end)
	}
}

func TestTextFormatSortsExtra(t *testing.T) {
	ev := &Event{Seq: 7, Kind: KindPoint, Scope: ScopeNode, Name: "own.drop", Extra: map[string]string{"b": "2", "a": "1"}}
	got := string(FormatEvent(ev, FormatText))
	if !strings.Contains(got, "own.drop {a=1, b=2}") {
		t.Errorf("text format = %q", got)
	}
}

func TestStartNestsSpans(t *testing.T) {
	r := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	ctx, outer := Start(ctx, ScopeDriver, "run")
	_, inner := Start(ctx, ScopePass, "eval")
	inner.End("")
	outer.End("")

	evs := r.Snapshot()
	if len(evs) != 4 {
		t.Fatalf("got %d events, want 4", len(evs))
	}
	if evs[1].ParentID != outer.ID() {
		t.Errorf("inner parent = %d, want %d", evs[1].ParentID, outer.ID())
	}
}

func TestNopContext(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Error("empty context should yield Nop")
	}
	_, span := Start(context.Background(), ScopePass, "x")
	if span.End("") != 0 {
		t.Error("nop span should report zero duration")
	}
}

func TestForScriptStampsEvents(t *testing.T) {
	r := NewRingTracer(8, LevelDebug)
	st := ForScript(r, "a.own")
	Point(st, ScopeNode, "own.move", "", nil)
	Begin(st, ScopePass, "eval", 0).End("")

	for _, ev := range r.Snapshot() {
		if ev.Script != "a.own" {
			t.Errorf("event %s has script %q", ev.Name, ev.Script)
		}
	}
	if got := string(FormatEvent(&r.Snapshot()[0], FormatText)); !strings.HasSuffix(got, " @a.own\n") {
		t.Errorf("text format = %q", got)
	}
	if ForScript(Nop, "a.own") != Nop {
		t.Error("wrapping Nop should stay Nop")
	}
}

func TestSpanDurationUsesClock(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := base
	now = func() time.Time { return tick }
	defer func() { now = time.Now }()

	r := NewRingTracer(4, LevelPhase)
	span := Begin(r, ScopePass, "parse", 0)
	tick = base.Add(3 * time.Millisecond)
	if d := span.End(""); d != 3*time.Millisecond {
		t.Errorf("duration = %v, want 3ms", d)
	}
}

func TestNewPicksMode(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	multi, ok := tr.(*MultiTracer)
	if !ok || multi.Ring() == nil {
		t.Fatalf("ModeBoth built %T", tr)
	}
	Begin(tr, ScopePass, "load", 0).End("")
	if len(multi.Ring().Snapshot()) != 2 || !strings.Contains(buf.String(), "load") {
		t.Errorf("events not fanned out: ring=%d stream=%q", len(multi.Ring().Snapshot()), buf.String())
	}

	if tr, _ := New(Config{Level: LevelOff}); tr != Nop {
		t.Errorf("LevelOff built %T", tr)
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
