package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ownsim/internal/driver"
	"ownsim/internal/ui"
)

type checkOptions struct {
	ui      string
	verbose bool
	events  bool
}

func newCheckCmd() *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check [flags] <file|directory>...",
		Short: "Evaluate many scripts in parallel",
		Long: `Evaluate every script given, walking directories for *.own, *.yaml and
*.yml files. Each script runs against its own store. The command fails when
any script has a failed step or does not parse.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.ui, "ui", "auto", "progress view (auto|on|off)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "print the full step report of every script")
	cmd.Flags().BoolVar(&opts.events, "events", false, "list store events under each step (with --verbose)")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts checkOptions) error {
	s, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}
	mode, err := readUIMode(opts.ui)
	if err != nil {
		return err
	}
	paths, err := driver.ExpandPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no scripts found in %v", args)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	dopts := s.driverOptions()

	var results []*driver.Result
	if shouldUseTUI(mode, s.Format) {
		results, err = checkWithUI(ctx, paths, dopts)
	} else {
		results, err = driver.CheckFiles(ctx, paths, dopts)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	out := cmd.OutOrStdout()
	var failed bool
	if opts.verbose || s.Format == "json" {
		failed, err = writeResults(out, results, s, opts.events)
		if err != nil {
			return err
		}
	} else {
		quiet := s
		quiet.Quiet = true
		if failed, err = writeResults(out, results, quiet, false); err != nil {
			return err
		}
	}
	if failed {
		return errFailed
	}
	return nil
}

type checkOutcome struct {
	results []*driver.Result
	err     error
}

func checkWithUI(ctx context.Context, paths []string, opts driver.Options) ([]*driver.Result, error) {
	// two events per file, so workers never block on a UI that quit early
	events := make(chan driver.FileEvent, 2*len(paths))
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		o := opts
		o.OnFile = func(ev driver.FileEvent) { events <- ev }
		res, err := driver.CheckFiles(ctx, paths, o)
		outcomeCh <- checkOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("checking scripts", paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
