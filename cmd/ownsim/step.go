package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ownsim/internal/diagfmt"
	"ownsim/internal/driver"
	"ownsim/internal/examples"
	"ownsim/internal/source"
	"ownsim/internal/ui"
)

func newStepCmd() *cobra.Command {
	var example string
	cmd := &cobra.Command{
		Use:   "step [flags] <script.own|script.yaml>",
		Short: "Walk through a script one operation at a time",
		Long: `Open an interactive view that executes one store operation per key press
and shows the live bindings after each. Use --example to step through a
built-in tutorial script instead of a file.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if example != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(cmd, args, example)
		},
	}
	cmd.Flags().StringVar(&example, "example", "", "step through a built-in example by name")
	return cmd
}

func runStep(cmd *cobra.Command, args []string, example string) error {
	if !isTerminal(os.Stdout) {
		return fmt.Errorf("step needs an interactive terminal; use run instead")
	}
	s, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}

	fs := source.NewFileSet()
	var (
		fileID source.FileID
		title  string
	)
	if example != "" {
		sc, ok := examples.Get(example)
		if !ok {
			return fmt.Errorf("unknown example %q (see ownsim examples)", example)
		}
		fileID = fs.AddVirtual(sc.File, sc.Source)
		title = sc.Name + ": " + sc.Title
	} else {
		if fileID, err = fs.Load(args[0]); err != nil {
			return fmt.Errorf("load %s: %w", args[0], err)
		}
		title = args[0]
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	opts := s.driverOptions()
	first, res, err := driver.Prepare(ctx, fs, fileID, opts)
	if err != nil {
		return err
	}
	if first == nil {
		diagfmt.Pretty(cmd.ErrOrStderr(), res.Bag, res.FileSet, s.prettyOpts(false))
		return errFailed
	}

	newMachine := func() *driver.Machine {
		if first != nil {
			m := first
			first = nil
			return m
		}
		m, _, err := driver.Prepare(ctx, fs, fileID, opts)
		if err != nil || m == nil {
			// the source is in memory and parsed once already
			panic(fmt.Errorf("re-prepare %s: %w", title, err))
		}
		return m
	}

	program := tea.NewProgram(ui.NewStepper(title, newMachine), tea.WithOutput(os.Stdout), tea.WithAltScreen())
	_, err = program.Run()
	return err
}
