package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Format is how events are rendered.
type Format uint8

const (
	FormatAuto   Format = iota // from the output path
	FormatText                 // one readable line per event
	FormatNDJSON               // one JSON object per line
)

// ParseFormat accepts auto, text, ndjson and json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

func formatFor(path string) Format {
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".json") {
		return FormatNDJSON
	}
	return FormatText
}

// FormatEvent renders ev as one newline-terminated line.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return eventJSON(ev)
	}
	return eventText(ev)
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	Script   string            `json:"script,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func eventJSON(ev *Event) []byte {
	data, err := json.Marshal(jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Script:   ev.Script,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

var kindMarks = [...]string{KindSpanBegin: "→", KindSpanEnd: "←", KindPoint: "•"}

// eventText renders "#seq [scope] mark name (detail) {k=v, ...} @script".
func eventText(ev *Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%-5d [%s] ", ev.Seq, ev.Scope)
	if ev.ParentID > 0 {
		sb.WriteString("  ")
	}
	if int(ev.Kind) < len(kindMarks) && kindMarks[ev.Kind] != "" {
		sb.WriteString(kindMarks[ev.Kind])
		sb.WriteByte(' ')
	}
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		pairs := make([]string, 0, len(ev.Extra))
		for _, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			pairs = append(pairs, k+"="+ev.Extra[k])
		}
		fmt.Fprintf(&sb, " {%s}", strings.Join(pairs, ", "))
	}
	if ev.Script != "" {
		sb.WriteString(" @")
		sb.WriteString(ev.Script)
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
