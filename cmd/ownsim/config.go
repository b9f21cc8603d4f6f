package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const configFileName = "ownsim.toml"

// projectConfig mirrors ownsim.toml. Every key is optional; missing keys
// keep the CLI defaults.
type projectConfig struct {
	Store  storeConfig  `toml:"store"`
	Run    runConfig    `toml:"run"`
	Output outputConfig `toml:"output"`
}

type storeConfig struct {
	Shadowing string `toml:"shadowing"`
}

type runConfig struct {
	FailFast bool `toml:"fail_fast"`
	Jobs     int  `toml:"jobs"`
}

type outputConfig struct {
	Format         string `toml:"format"`
	Color          string `toml:"color"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
	PathMode       string `toml:"path_mode"`
}

// loadedConfig is a parsed file plus the keys it actually set.
type loadedConfig struct {
	Path   string
	Config projectConfig
	meta   toml.MetaData
}

// isSet reports whether the file defined the dotted key, e.g. "run.fail_fast".
func (c *loadedConfig) isSet(key string) bool {
	if c == nil {
		return false
	}
	return c.meta.IsDefined(strings.Split(key, ".")...)
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadConfig(path string) (*loadedConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if meta.IsDefined("run", "jobs") && cfg.Run.Jobs < 0 {
		return nil, fmt.Errorf("%s: [run].jobs must not be negative", path)
	}
	if meta.IsDefined("output", "max_diagnostics") && cfg.Output.MaxDiagnostics < 0 {
		return nil, fmt.Errorf("%s: [output].max_diagnostics must not be negative", path)
	}
	return &loadedConfig{Path: path, Config: cfg, meta: meta}, nil
}

// discoverConfig loads explicit when set, otherwise the nearest ownsim.toml
// above startDir. It returns nil when there is none.
func discoverConfig(explicit, startDir string) (*loadedConfig, error) {
	if explicit != "" {
		return loadConfig(explicit)
	}
	path, ok, err := findConfig(startDir)
	if err != nil || !ok {
		return nil, err
	}
	return loadConfig(path)
}

// configStart picks the directory the search starts from: the first
// argument's directory when it names a path, otherwise the working directory.
func configStart(args []string) string {
	if len(args) == 0 {
		return "."
	}
	st, err := os.Stat(args[0])
	if err != nil {
		return "."
	}
	if st.IsDir() {
		return args[0]
	}
	return filepath.Dir(args[0])
}
