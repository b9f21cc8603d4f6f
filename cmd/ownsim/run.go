package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ownsim/internal/driver"
	"ownsim/internal/snapshot"
)

type runOptions struct {
	snapshot string
	watch    bool
	events   bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run [flags] <script.own|script.yaml>",
		Short: "Evaluate one script and print each step",
		Long: `Evaluate a script against a fresh ownership store. Every statement is
reported as accepted, rejected, or rejected as expected; the bindings left
before the root scope closes and all diagnostics follow.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", "", "write a binary snapshot of the final store to this path")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "re-run whenever the script changes")
	cmd.Flags().BoolVar(&opts.events, "events", false, "list store events under each step")
	return cmd
}

func runScript(cmd *cobra.Command, path string, opts runOptions) error {
	s, err := resolveSettings(cmd, []string{path})
	if err != nil {
		return err
	}
	failed, err := runOnce(cmd, path, s, opts)
	if err != nil {
		return err
	}
	if !opts.watch {
		if failed {
			return errFailed
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	out := cmd.OutOrStdout()
	if !s.Quiet {
		fmt.Fprintf(out, "\nwatching %s (ctrl+c to stop)\n", path)
	}
	return watchFile(ctx, path, func() {
		fmt.Fprintln(out)
		if _, err := runOnce(cmd, path, s, opts); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "ownsim: %v\n", err)
		}
	})
}

func runOnce(cmd *cobra.Command, path string, s settings, opts runOptions) (bool, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := driver.EvaluateFile(ctx, path, s.driverOptions())
	if err != nil {
		return false, err
	}
	failed, err := writeResults(cmd.OutOrStdout(), []*driver.Result{res}, s, opts.events)
	if err != nil {
		return failed, err
	}
	if opts.snapshot != "" {
		snap := snapshot.FromResult(res, s.Shadowing)
		if snap == nil {
			return failed, fmt.Errorf("no snapshot written: %s did not parse", path)
		}
		if err := snapshot.Save(opts.snapshot, snap); err != nil {
			return failed, fmt.Errorf("write snapshot: %w", err)
		}
		if !s.Quiet && s.Format != "json" {
			fmt.Fprintf(cmd.OutOrStdout(), "snapshot written to %s\n", opts.snapshot)
		}
	}
	return failed, nil
}
