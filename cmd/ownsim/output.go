package main

import (
	"fmt"
	"io"

	"ownsim/internal/diagfmt"
	"ownsim/internal/driver"
)

// writeResults prints results in the chosen format and reports whether any
// of them failed.
func writeResults(out io.Writer, results []*driver.Result, s settings, showEvents bool) (bool, error) {
	failed := false
	for _, res := range results {
		if res.Failed() {
			failed = true
		}
	}
	if s.Format == "json" {
		if err := diagfmt.ResultsJSON(out, results, s.jsonOpts(showEvents)); err != nil {
			return failed, fmt.Errorf("failed to format results: %w", err)
		}
		return failed, nil
	}

	opts := s.prettyOpts(showEvents)
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if s.Quiet {
			writeQuiet(out, res, opts)
		} else {
			diagfmt.PrettyResult(out, res, opts)
		}
	}
	return failed, nil
}

// writeQuiet prints only diagnostics and the summary line.
func writeQuiet(out io.Writer, res *driver.Result, opts diagfmt.PrettyOpts) {
	if res.Bag != nil && res.Bag.Len() > 0 {
		diagfmt.Pretty(out, res.Bag, res.FileSet, opts)
	}
	fmt.Fprintf(out, "%s: %s\n", res.Path, diagfmt.Summary(res, opts.Color))
}
