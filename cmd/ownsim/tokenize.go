package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ownsim/internal/diagfmt"
	"ownsim/internal/driver"
)

func newTokenizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize [flags] <script.own>",
		Short: "Print the tokens of a text script",
		Long:  `Tokenize breaks a .own script down into the tokens the parser sees`,
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenize,
	}
}

func runTokenize(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	if !strings.EqualFold(filepath.Ext(filePath), ".own") {
		return fmt.Errorf("tokenize expects a .own script, got %s", filePath)
	}
	s, err := resolveSettings(cmd, args)
	if err != nil {
		return err
	}

	result, err := driver.Tokenize(filePath, s.MaxDiagnostics)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	if result.Bag.HasErrors() || result.Bag.HasWarnings() {
		diagfmt.Pretty(cmd.ErrOrStderr(), result.Bag, result.FileSet, diagfmt.PrettyOpts{
			Color:    s.Color,
			Context:  2,
			PathMode: s.PathMode,
		})
	}

	out := cmd.OutOrStdout()
	switch s.Format {
	case "json":
		err = diagfmt.FormatTokensJSON(out, result.Tokens)
	default:
		err = diagfmt.FormatTokensPretty(out, result.Tokens, result.FileSet)
	}
	if err != nil {
		return err
	}
	if result.Bag.HasErrors() {
		return errFailed
	}
	return nil
}
