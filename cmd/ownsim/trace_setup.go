package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ownsim/internal/trace"
)

type traceFlags struct {
	output string
	level  trace.Level
	mode   trace.StorageMode
	ring   int
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	pf := cmd.Root().PersistentFlags()
	var (
		tf          traceFlags
		level, mode string
		err         error
	)
	if tf.output, err = pf.GetString("trace"); err != nil {
		return tf, err
	}
	if level, err = pf.GetString("trace-level"); err != nil {
		return tf, err
	}
	if mode, err = pf.GetString("trace-mode"); err != nil {
		return tf, err
	}
	if tf.ring, err = pf.GetInt("trace-ring-size"); err != nil {
		return tf, err
	}
	if tf.level, err = trace.ParseLevel(level); err != nil {
		return tf, fmt.Errorf("--trace-level: %w", err)
	}
	if tf.mode, err = trace.ParseMode(mode); err != nil {
		return tf, fmt.Errorf("--trace-mode: %w", err)
	}
	// --trace alone turns on phase events
	if tf.level == trace.LevelOff && tf.output != "" {
		tf.level = trace.LevelPhase
	}
	return tf, nil
}

// setupTracing installs the tracer selected by the trace flags in the
// command context and opens a span covering the command. The cleanup
// closes that span and releases the tracer.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tf, err := readTraceFlags(cmd)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if tf.level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(ctx, trace.Nop))
		return func() {}, nil
	}

	tracer, err := trace.New(trace.Config{
		Level:      tf.level,
		Mode:       tf.mode,
		OutputPath: tf.output,
		RingSize:   tf.ring,
	})
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	cmd.SetContext(trace.WithTracer(ctx, tracer))
	span := trace.Begin(tracer, trace.ScopeDriver, cmd.Name(), 0)

	stderr := cmd.ErrOrStderr()
	return func() {
		span.End("")
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(stderr, "trace: %v\n", err)
		}
		if tf.mode == trace.ModeRing && tf.output != "" {
			if ring := ringOf(tracer); ring != nil {
				if err := dumpRing(stderr, ring, tf.output); err != nil {
					fmt.Fprintf(stderr, "trace: %v\n", err)
				}
			}
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(stderr, "trace: %v\n", err)
		}
	}, nil
}

func ringOf(t trace.Tracer) *trace.RingTracer {
	if r, ok := t.(*trace.RingTracer); ok {
		return r
	}
	if m, ok := t.(*trace.MultiTracer); ok {
		return m.Ring()
	}
	return nil
}

// dumpRing writes what the ring retained to path, or to stderr for "-".
// A .ndjson or .json path selects NDJSON.
func dumpRing(stderr io.Writer, ring *trace.RingTracer, path string) error {
	format := trace.FormatText
	switch filepath.Ext(path) {
	case ".ndjson", ".json":
		format = trace.FormatNDJSON
	}
	if path == "-" {
		return ring.Dump(stderr, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ring.Dump(f, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
