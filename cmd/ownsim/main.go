package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ownsim/internal/version"
)

// cleanups stop the tracer and profilers of the running command, most
// recent first.
var cleanups []func()

func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// errFailed marks a command whose scripts failed; the reports were already
// printed, so main exits without another message.
var errFailed = errors.New("one or more scripts failed")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ownsim",
		Short:         "Ownership and borrowing simulator",
		Long:          `ownsim evaluates scripts of moves, copies, clones and borrows against an ownership-checked value store`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			stopProfiling, err := setupProfiling(cmd)
			if err != nil {
				return err
			}
			cleanups = append(cleanups, stopProfiling)
			stopTracing, err := setupTracing(cmd)
			if err != nil {
				runCleanups()
				return err
			}
			cleanups = append(cleanups, stopTracing)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			runCleanups()
		},
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newTokenizeCmd())
	root.AddCommand(newStepCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newExamplesCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())

	flags := root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	flags.String("format", "pretty", "output format (pretty|json)")
	flags.String("shadowing", "allow", "same-scope redeclaration policy (allow|warn|deny)")
	flags.Bool("fail-fast", false, "stop a script at its first unexpected rejection")
	flags.Int("jobs", 0, "max parallel workers for multiple scripts (0=auto)")
	flags.String("path-mode", "auto", "how file paths are printed (auto|absolute|relative|basename)")
	flags.String("config", "", "path to ownsim.toml (default: search upward from the script)")
	flags.String("trace", "", "trace output file (\"-\" for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "events kept in ring mode")
	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")

	return root
}

func main() {
	err := newRootCmd().Execute()
	runCleanups()
	if err == nil {
		return
	}
	if !errors.Is(err, errFailed) {
		fmt.Fprintf(os.Stderr, "ownsim: %v\n", err)
	}
	os.Exit(1)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
