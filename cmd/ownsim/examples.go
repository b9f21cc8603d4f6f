package main

import (
	"context"
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"ownsim/internal/driver"
	"ownsim/internal/examples"
)

func newExamplesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "examples",
		Short: "List, show and run the built-in tutorial scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listExamples(cmd.OutOrStdout())
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <name>",
		Short: "Print the source of a built-in script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, ok := examples.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown example %q", args[0])
			}
			_, err := cmd.OutOrStdout().Write(sc.Source)
			return err
		},
	}

	var events bool
	run := &cobra.Command{
		Use:   "run [name...]",
		Short: "Evaluate built-in scripts (all of them when no name is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExamples(cmd, args, events)
		},
	}
	run.Flags().BoolVar(&events, "events", false, "list store events under each step")

	cmd.AddCommand(show, run)
	return cmd
}

func listExamples(out io.Writer) {
	list := examples.List()
	width := 0
	for _, sc := range list {
		width = max(width, runewidth.StringWidth(sc.Name))
	}
	for _, sc := range list {
		fmt.Fprintf(out, "%s  %s\n", runewidth.FillRight(sc.Name, width), sc.Title)
	}
}

func runExamples(cmd *cobra.Command, names []string, events bool) error {
	s, err := resolveSettings(cmd, nil)
	if err != nil {
		return err
	}
	var scripts []examples.Script
	if len(names) == 0 {
		scripts = examples.List()
	} else {
		for _, name := range names {
			sc, ok := examples.Get(name)
			if !ok {
				return fmt.Errorf("unknown example %q", name)
			}
			scripts = append(scripts, sc)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]*driver.Result, 0, len(scripts))
	for _, sc := range scripts {
		res, err := driver.EvaluateSource(ctx, sc.File, sc.Source, s.driverOptions())
		if err != nil {
			return fmt.Errorf("example %s: %w", sc.Name, err)
		}
		results = append(results, res)
	}
	failed, err := writeResults(cmd.OutOrStdout(), results, s, events)
	if err != nil {
		return err
	}
	if failed {
		return errFailed
	}
	return nil
}
