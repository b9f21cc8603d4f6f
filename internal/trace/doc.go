// Package trace records structured events for the ownsim driver and store.
//
// Events are grouped by scope, from coarse to fine:
//
//   - ScopeDriver: CLI commands
//   - ScopePass: load, parse, eval
//   - ScopeScript: one script file
//   - ScopeNode: single store operations
//
// The level decides which scopes are emitted. LevelPhase keeps driver and
// pass spans, LevelDetail adds per-script spans and LevelDebug adds every
// store operation.
//
// Tracers travel through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, trace.ForScript(tracer, path))
//	ctx, span := trace.Start(ctx, trace.ScopePass, "parse")
//	defer span.End("")
//
// ForScript stamps the script path on each event, so the events of scripts
// checked in parallel can share one output.
//
// A RingTracer keeps the last events in memory so they can be dumped after a
// failure; a StreamTracer writes them as text or NDJSON as they happen.
package trace
