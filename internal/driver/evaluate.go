package driver

import (
	"context"
	"fmt"

	"ownsim/internal/ast"
	"ownsim/internal/diag"
	"ownsim/internal/observ"
	"ownsim/internal/ownership"
	"ownsim/internal/parser"
	"ownsim/internal/source"
	"ownsim/internal/trace"
)

// Result is everything one evaluated script produced.
type Result struct {
	Path    string
	FileSet *source.FileSet
	File    *source.File
	Builder *ast.Builder
	Script  *ast.Script
	Bag     *diag.Bag

	Outcomes []Outcome
	// Bindings is the store as it was just before the root scope closed.
	Bindings []ownership.BindingView
	Buffers  []ownership.BufferView
	Events   []ownership.Event
	Timing   observ.Report

	// Parsed is false when syntax errors kept the script from running.
	Parsed bool
	// Halted is true when FailFast stopped evaluation early.
	Halted bool

	timer *observ.Timer
}

// Failed reports whether any step failed or the script did not parse.
func (r *Result) Failed() bool {
	if r == nil || !r.Parsed || r.Bag.HasErrors() {
		return true
	}
	for _, o := range r.Outcomes {
		if o.Status.Failed() {
			return true
		}
	}
	return false
}

// Counts tallies outcomes by status.
func (r *Result) Counts() map[Status]int {
	counts := make(map[Status]int, 5)
	for _, o := range r.Outcomes {
		counts[o.Status]++
	}
	return counts
}

// EvaluateFile loads path and evaluates it.
func EvaluateFile(ctx context.Context, path string, opts Options) (*Result, error) {
	_, span := trace.Start(ctx, trace.ScopePass, "load")
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	span.End(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return Evaluate(ctx, fs, fileID, opts)
}

// EvaluateSource evaluates an in-memory script. The name picks the parser:
// names ending in .yaml or .yml are parsed as YAML.
func EvaluateSource(ctx context.Context, name string, content []byte, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual(name, content)
	return Evaluate(ctx, fs, fileID, opts)
}

// Evaluate parses the file and, when it parsed cleanly, runs it against a
// fresh store.
func Evaluate(ctx context.Context, fs *source.FileSet, fileID source.FileID, opts Options) (*Result, error) {
	m, res, err := Prepare(ctx, fs, fileID, opts)
	if err != nil || m == nil {
		return res, err
	}

	evalIdx := res.begin("eval")
	_, span := trace.Start(ctx, trace.ScopePass, "eval")
	runErr := m.Run(ctx)
	span.End(fmt.Sprintf("steps=%d", len(m.Outcomes())))
	res.end(evalIdx, fmt.Sprintf("steps=%d", len(m.Outcomes())))
	if runErr != nil {
		return nil, runErr
	}
	res.Collect(m)
	return res, nil
}

// Prepare parses the file and returns a machine ready to step through it.
// The machine is nil when the script has syntax errors; res.Bag holds them.
func Prepare(ctx context.Context, fs *source.FileSet, fileID source.FileID, opts Options) (*Machine, *Result, error) {
	file := fs.Get(fileID)
	if file == nil {
		return nil, nil, fmt.Errorf("unknown file id %d", fileID)
	}
	ctx = trace.WithTracer(ctx, trace.ForScript(trace.FromContext(ctx), file.Path))
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "script")
	defer span.End(file.Path)

	res := &Result{
		Path:    file.Path,
		FileSet: fs,
		File:    file,
		Builder: ast.NewBuilder(),
		Bag:     diag.NewBag(opts.MaxDiagnostics),
	}
	if opts.Timings {
		res.timer = observ.NewTimer()
	}
	rep := diag.BagReporter{Bag: res.Bag}

	parseIdx := res.begin("parse")
	_, pspan := trace.Start(ctx, trace.ScopePass, "parse")
	pr := parser.Parse(file, res.Builder, parser.Options{Reporter: rep})
	res.Script = pr.Script
	pspan.End(fmt.Sprintf("errors=%d", pr.Errors))
	stmts := 0
	if pr.Script != nil {
		stmts = res.Builder.Count(pr.Script.Body)
	}
	res.end(parseIdx, fmt.Sprintf("stmts=%d", stmts))

	if !pr.Ok() || pr.Script == nil {
		res.finish()
		return nil, res, nil
	}
	res.Parsed = true
	m := NewMachine(res.Builder, pr.Script, opts, rep, trace.FromContext(ctx))
	return m, res, nil
}

// Collect copies the machine's state into the result.
func (r *Result) Collect(m *Machine) {
	r.Outcomes = m.Outcomes()
	r.Bindings = m.Final()
	r.Buffers = m.Store().Buffers()
	r.Events = m.Store().Events()
	r.Halted = m.Halted()
	r.finish()
}

func (r *Result) finish() {
	if r.timer == nil {
		return
	}
	r.Timing = r.timer.Report()
	appendTimingDiagnostic(r.Bag, timingPayload{
		Path:    r.Path,
		TotalMS: r.Timing.TotalMS,
		Phases:  r.Timing.Phases,
	})
}
