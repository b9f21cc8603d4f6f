package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"ownsim/internal/examples"
)

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an ownsim.toml and a starter script",
		Long: `Initialize a directory with an ownsim.toml holding the default settings and
a main.own copied from the built-in tutorial. If [path] is omitted, the
current directory is used; a missing directory is created.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing ownsim.toml")
	return cmd
}

func defaultConfig() projectConfig {
	return projectConfig{
		Store:  storeConfig{Shadowing: "allow"},
		Run:    runConfig{FailFast: false, Jobs: 0},
		Output: outputConfig{Format: "pretty", Color: "auto", MaxDiagnostics: 100, PathMode: "auto"},
	}
}

func runInit(cmd *cobra.Command, args []string, force bool) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	configPath := filepath.Join(target, configFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("already initialized: %s exists (use --force to overwrite)", configPath)
	}

	var buf bytes.Buffer
	buf.WriteString("# ownsim settings; command-line flags override these\n\n")
	if err := toml.NewEncoder(&buf).Encode(defaultConfig()); err != nil {
		return fmt.Errorf("encode %s: %w", configFileName, err)
	}
	if err := os.WriteFile(configPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	created := []string{configPath}

	mainPath := filepath.Join(target, "main.own")
	if _, err := os.Stat(mainPath); errors.Is(err, os.ErrNotExist) {
		sc, ok := examples.Get("main")
		if !ok {
			return fmt.Errorf("built-in main example is missing")
		}
		if err := os.WriteFile(mainPath, sc.Source, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", mainPath, err)
		}
		created = append(created, mainPath)
	}

	out := cmd.OutOrStdout()
	for _, p := range created {
		fmt.Fprintf(out, "created %s\n", p)
	}
	return nil
}
