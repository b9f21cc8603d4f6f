package driver

import (
	"encoding/json"
	"fmt"

	"ownsim/internal/diag"
	"ownsim/internal/observ"
	"ownsim/internal/source"
)

type timingPayload struct {
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

func (r *Result) begin(name string) int {
	if r.timer == nil {
		return -1
	}
	return r.timer.Begin(name)
}

func (r *Result) end(idx int, note string) {
	if r.timer == nil || idx < 0 {
		return
	}
	r.timer.End(idx, note)
}

// appendTimingDiagnostic stores the phase report as an info diagnostic whose
// note carries the JSON payload. It is added even when the bag is full.
func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	msg := fmt.Sprintf("timings: total %.2f ms", payload.TotalMS)
	if payload.Path != "" {
		msg += " for " + payload.Path
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	entry := diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message:  msg,
		Notes:    []diag.Note{{Span: source.Span{}, Msg: string(data)}},
	}
	// The timing entry is kept even when the bag is already full.
	if bag.Len() < bag.Cap() {
		bag.Add(entry)
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
