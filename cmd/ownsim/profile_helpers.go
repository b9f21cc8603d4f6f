package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ownsim/internal/prof"
)

// setupProfiling starts the profilers named by the persistent flags. The
// cleanup is safe to call more than once.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()
	var cfg prof.Config
	var err error
	if cfg.CPUPath, err = root.PersistentFlags().GetString("cpu-profile"); err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if cfg.MemPath, err = root.PersistentFlags().GetString("mem-profile"); err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if cfg.TracePath, err = root.PersistentFlags().GetString("runtime-trace"); err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !cfg.Active() {
		return func() {}, nil
	}

	session, err := prof.Start(cfg)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}, nil
}
