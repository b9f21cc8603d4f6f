package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ownsim/internal/diagfmt"
	"ownsim/internal/snapshot"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--color", "off"}, args...))
	err := cmd.ExecuteContext(context.Background())
	runCleanups()
	return out.String(), err
}

const passing = `let mut s = "hello"
push s ", world"
move s -> t
expect UseAfterMove use s
assert t == "hello, world"
`

const failing = `let s = "hello"
move s -> t
use s
`

func TestRunPassingScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.own")
	writeFile(t, path, passing)

	out, err := execute(t, "run", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "move s -> t")
	assert.Contains(t, out, "rejected as expected")
	assert.Contains(t, out, "ok ")
}

func TestRunFailingScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.own")
	writeFile(t, path, failing)

	out, err := execute(t, "run", path)
	require.ErrorIs(t, err, errFailed)
	assert.Contains(t, out, "UseAfterMove")
	assert.Contains(t, out, "OWN3001")
	assert.Contains(t, out, "FAIL")
}

func TestRunJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.own")
	writeFile(t, path, failing)

	out, err := execute(t, "run", "--format", "json", "--events", path)
	require.ErrorIs(t, err, errFailed)

	var doc diagfmt.RunOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	require.Len(t, doc.Results, 1)
	assert.Equal(t, 1, doc.Failed)
	res := doc.Results[0]
	assert.True(t, res.Parsed)
	require.GreaterOrEqual(t, len(res.Outcomes), 3)
	assert.Equal(t, "rejected", res.Outcomes[2].Status)
	assert.Equal(t, "UseAfterMove", res.Outcomes[2].Kind)
	assert.NotEmpty(t, res.Outcomes[1].Events)
}

func TestRunMissingFile(t *testing.T) {
	_, err := execute(t, "run", filepath.Join(t.TempDir(), "nope.own"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errFailed)
}

func TestRunSnapshotThenInspect(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ok.own")
	snap := filepath.Join(dir, "out", "ok.snap")
	writeFile(t, script, passing)

	out, err := execute(t, "run", "--snapshot", snap, script)
	require.NoError(t, err, out)
	assert.Contains(t, out, "snapshot written to")

	loaded, err := snapshot.Load(snap)
	require.NoError(t, err)
	assert.False(t, loaded.Failed)
	assert.NotEmpty(t, loaded.Events)

	out, err = execute(t, "inspect", "--events", "--verify", script, snap)
	require.NoError(t, err, out)
	assert.Contains(t, out, "shadowing: allow")
	assert.Contains(t, out, "move s -> t")
	assert.Contains(t, out, "STATUS")

	writeFile(t, script, passing+"let extra = 1\n")
	_, err = execute(t, "inspect", "--verify", script, snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "was not taken from")
}

func TestCheckDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.own"), passing)
	writeFile(t, filepath.Join(dir, "nested", "b.own"), failing)
	writeFile(t, filepath.Join(dir, "c.yaml"), "steps:\n  - op: let\n    name: x\n    value: 1\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	out, err := execute(t, "check", "--ui", "off", "--jobs", "2", dir)
	require.ErrorIs(t, err, errFailed)
	assert.Contains(t, out, "a.own")
	assert.Contains(t, out, "b.own")
	assert.Contains(t, out, "c.yaml")
	assert.NotContains(t, out, "notes.txt")
	assert.Equal(t, 1, strings.Count(out, "FAIL"))
}

func TestCheckEmptyDirectory(t *testing.T) {
	_, err := execute(t, "check", "--ui", "off", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scripts found")
}

func TestTokenize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.own")
	writeFile(t, path, "let x = 5\n")

	out, err := execute(t, "tokenize", "--format", "json", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "let")

	_, err = execute(t, "tokenize", filepath.Join(t.TempDir(), "t.yaml"))
	require.Error(t, err)
}

func TestExamples(t *testing.T) {
	out, err := execute(t, "examples")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "main"), out)

	out, err = execute(t, "examples", "show", "owner_code")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# owner_code:"), out)

	out, err = execute(t, "examples", "run", "--quiet")
	require.NoError(t, err, out)
	assert.NotContains(t, out, "FAIL")

	_, err = execute(t, "examples", "run", "missing")
	require.Error(t, err)
}

func TestInitCreatesConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")

	out, err := execute(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, configFileName)
	assert.FileExists(t, filepath.Join(dir, "main.own"))

	cfg, err := loadConfig(filepath.Join(dir, configFileName))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg.Config)

	_, err = execute(t, "init", dir)
	require.Error(t, err)

	_, err = execute(t, "init", "--force", dir)
	require.NoError(t, err)

	out, err = execute(t, "run", "--quiet", filepath.Join(dir, "main.own"))
	require.NoError(t, err, out)
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--format", "json")
	require.NoError(t, err)
	var payload versionPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "ownsim", payload.Tool)
	assert.NotEmpty(t, payload.Version)
}

func TestStepNeedsTerminal(t *testing.T) {
	if isTerminal(os.Stdout) {
		t.Skip("stdout is a terminal")
	}
	_, err := execute(t, "step", "--example", "main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestRunWithProfilesAndTrace(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ok.own")
	writeFile(t, script, passing)
	cpu := filepath.Join(dir, "cpu.pprof")
	mem := filepath.Join(dir, "mem.pprof")
	traceOut := filepath.Join(dir, "trace.ndjson")

	out, err := execute(t, "--cpu-profile", cpu, "--mem-profile", mem,
		"--trace", traceOut, "--trace-level", "debug", "run", "--quiet", script)
	require.NoError(t, err, out)
	assert.FileExists(t, cpu)
	assert.FileExists(t, mem)

	data, err := os.ReadFile(traceOut)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"eval"`)
}
