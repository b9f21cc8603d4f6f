package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ownsim/internal/diagfmt"
	"ownsim/internal/driver"
	"ownsim/internal/ownership"
)

// settings is the merged view of defaults, ownsim.toml and flags. Flags win
// over the file only when given explicitly.
type settings struct {
	Color          bool
	Quiet          bool
	Timings        bool
	MaxDiagnostics int
	Format         string
	Shadowing      ownership.ShadowPolicy
	FailFast       bool
	Jobs           int
	PathMode       diagfmt.PathMode
	ConfigPath     string
}

func resolveSettings(cmd *cobra.Command, args []string) (settings, error) {
	flags := cmd.Flags()
	explicit, err := flags.GetString("config")
	if err != nil {
		return settings{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := discoverConfig(explicit, configStart(args))
	if err != nil {
		return settings{}, err
	}

	pick := func(flag, key, fromFile string) (string, error) {
		v, err := flags.GetString(flag)
		if err != nil {
			return "", fmt.Errorf("failed to get %s flag: %w", flag, err)
		}
		if !flags.Changed(flag) && cfg.isSet(key) {
			v = fromFile
		}
		return strings.ToLower(strings.TrimSpace(v)), nil
	}
	var c projectConfig
	if cfg != nil {
		c = cfg.Config
	}

	var s settings
	if cfg != nil {
		s.ConfigPath = cfg.Path
	}

	colorMode, err := pick("color", "output.color", c.Output.Color)
	if err != nil {
		return s, err
	}
	switch colorMode {
	case "on":
		s.Color = true
	case "off":
		s.Color = false
	case "auto", "":
		s.Color = isTerminal(os.Stdout)
	default:
		return s, fmt.Errorf("invalid color value %q (expected auto|on|off)", colorMode)
	}

	if s.Format, err = pick("format", "output.format", c.Output.Format); err != nil {
		return s, err
	}
	if s.Format != "pretty" && s.Format != "json" {
		return s, fmt.Errorf("unknown format: %s", s.Format)
	}

	shadow, err := pick("shadowing", "store.shadowing", c.Store.Shadowing)
	if err != nil {
		return s, err
	}
	if s.Shadowing, err = ownership.ParseShadowPolicy(shadow); err != nil {
		return s, err
	}

	pathMode, err := pick("path-mode", "output.path_mode", c.Output.PathMode)
	if err != nil {
		return s, err
	}
	mode, ok := diagfmt.ParsePathMode(pathMode)
	if !ok {
		return s, fmt.Errorf("invalid path mode %q (expected auto|absolute|relative|basename)", pathMode)
	}
	s.PathMode = mode

	if s.Quiet, err = flags.GetBool("quiet"); err != nil {
		return s, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.Timings, err = flags.GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}

	if s.FailFast, err = flags.GetBool("fail-fast"); err != nil {
		return s, fmt.Errorf("failed to get fail-fast flag: %w", err)
	}
	if !flags.Changed("fail-fast") && cfg.isSet("run.fail_fast") {
		s.FailFast = c.Run.FailFast
	}

	if s.Jobs, err = flags.GetInt("jobs"); err != nil {
		return s, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if !flags.Changed("jobs") && cfg.isSet("run.jobs") {
		s.Jobs = c.Run.Jobs
	}
	if s.Jobs < 0 {
		return s, fmt.Errorf("--jobs must not be negative")
	}

	if s.MaxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return s, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if !flags.Changed("max-diagnostics") && cfg.isSet("output.max_diagnostics") {
		s.MaxDiagnostics = c.Output.MaxDiagnostics
	}
	return s, nil
}

func (s settings) driverOptions() driver.Options {
	return driver.Options{
		Shadowing:      s.Shadowing,
		FailFast:       s.FailFast,
		MaxDiagnostics: s.MaxDiagnostics,
		Jobs:           s.Jobs,
		Timings:        s.Timings,
	}
}

func (s settings) prettyOpts(showEvents bool) diagfmt.PrettyOpts {
	return diagfmt.PrettyOpts{
		Color:      s.Color,
		Context:    2,
		PathMode:   s.PathMode,
		ShowNotes:  true,
		ShowEvents: showEvents,
	}
}

func (s settings) jsonOpts(withEvents bool) diagfmt.JSONOpts {
	return diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         s.PathMode,
		IncludeNotes:     true,
		IncludeEvents:    withEvents,
	}
}
