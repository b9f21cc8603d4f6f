package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ownsim/internal/diag"
	"ownsim/internal/ownership"
)

func eval(t *testing.T, script string, opts Options) *Result {
	t.Helper()
	res, err := EvaluateSource(context.Background(), "test.own", []byte(script), opts)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func statuses(res *Result) []string {
	out := make([]string, 0, len(res.Outcomes))
	for _, o := range res.Outcomes {
		out = append(out, o.Op+":"+o.Status.String())
	}
	return out
}

func TestMoveThenUseIsRejected(t *testing.T) {
	res := eval(t, `
let s = "hello"
move s -> s2
use s
assert s2 == "hello"
`, Options{})

	require.True(t, res.Parsed)
	assert.Equal(t, []string{
		"let:ok", "move:ok", "use:rejected", "assert:ok", "close:ok",
	}, statuses(res))

	rejected := res.Outcomes[2]
	require.NotNil(t, rejected.Err)
	assert.ErrorIs(t, rejected.Err, ownership.UseAfterMove)
	assert.Empty(t, rejected.Events)
	assert.Equal(t, 1, res.Bag.Count(diag.OwnUseAfterMove))
	assert.True(t, res.Failed())
}

func TestCopyKeepsScalarsIndependent(t *testing.T) {
	res := eval(t, `
let x = 5
copy x -> mut y
set y = 6
assert x == 5
assert y == 6
`, Options{})

	assert.False(t, res.Failed(), "%v", statuses(res))
	assert.False(t, res.Bag.HasErrors())
}

func TestCloneThenMutateIndependently(t *testing.T) {
	res := eval(t, `
let mut a = "abc"
clone a -> mut b
push a "1"
push b "2"
assert a == "abc1"
assert b == "abc2"
`, Options{})
	assert.False(t, res.Failed(), "%v", statuses(res))
}

func TestBorrowRules(t *testing.T) {
	res := eval(t, `
let mut x = "data"
{
    borrow r1 = &x
    borrow r2 = &x
    borrow r3 = &x
    expect AliasConflict borrow w = &mut x
}
{
    borrow w1 = &mut x
    expect AliasConflict borrow w2 = &mut x
}
borrow w3 = &mut x
push w3 "!"
`, Options{})

	assert.False(t, res.Failed(), "%v", statuses(res))
	assert.Equal(t, 2, res.Counts()[StatusExpected])
	assert.Zero(t, res.Bag.Len())
}

func TestExpectOutcomes(t *testing.T) {
	res := eval(t, `
let s = "x"
expect UseAfterMove use s
expect NotMutable push s "y"
`, Options{})

	require.Len(t, res.Outcomes, 4)
	assert.Equal(t, StatusUnexpectedSuccess, res.Outcomes[1].Status)
	assert.Equal(t, StatusExpected, res.Outcomes[2].Status)
	assert.Equal(t, 1, res.Bag.Count(diag.OwnExpectedRejection))
	assert.Contains(t, res.Bag.Items()[0].Message, "'use s' was accepted")

	res = eval(t, `
let s = "x"
expect AliasConflict push s "y"
`, Options{})
	assert.Equal(t, StatusWrongKind, res.Outcomes[1].Status)
	assert.Equal(t, ownership.NotMutable, res.Outcomes[1].Err.Kind)
	assert.Equal(t, 1, res.Bag.Count(diag.OwnRejectionMismatch))
}

func TestRejectionLeavesStoreUsable(t *testing.T) {
	res := eval(t, `
let s = "hello"
borrow r = &mut s
let mut t = "hello"
borrow w = &mut t
use t
push w " world"
`, Options{})

	assert.Equal(t, []string{
		"let:ok", "borrow:rejected", "let:ok", "borrow:ok", "use:rejected", "push:ok", "close:ok",
	}, statuses(res))
	assert.Equal(t, ownership.AliasConflict, res.Outcomes[4].Err.Kind)
	assert.Equal(t, 1, res.Bag.Count(diag.OwnNotMutable))
}

func TestFailFastStopsButStillCloses(t *testing.T) {
	res := eval(t, `
let s = "a"
move s -> t
use s
let never = 1
`, Options{FailFast: true})

	assert.True(t, res.Halted)
	assert.Equal(t, []string{"let:ok", "move:ok", "use:rejected", "close:ok"}, statuses(res))
	for _, b := range res.Bindings {
		assert.NotEqual(t, "never", b.Name)
	}
}

func TestScopeEndDropsInReverseOrder(t *testing.T) {
	res := eval(t, `
{
    let a = "1"
    let b = "2"
    let c = "3"
    move b -> d
}
`, Options{})

	var drops []string
	for _, ev := range res.Events {
		if ev.Kind == ownership.EvDrop {
			drops = append(drops, ev.Name)
		}
	}
	assert.Equal(t, []string{"d", "c", "a"}, drops)
	for _, buf := range res.Buffers {
		assert.True(t, buf.Released, "buffer %d", buf.ID)
	}
}

func TestReadsReportValues(t *testing.T) {
	res := eval(t, `
let s = "héllo"
borrow r = &s
len r
use s
`, Options{})
	assert.Equal(t, "5", res.Outcomes[2].Detail)
	assert.Equal(t, `"héllo"`, res.Outcomes[3].Detail)
}

func TestShadowPolicies(t *testing.T) {
	script := `
let x = 1
let x = "two"
`
	res := eval(t, script, Options{})
	assert.Zero(t, res.Bag.Len())

	res = eval(t, script, Options{Shadowing: ownership.ShadowWarn})
	assert.False(t, res.Failed())
	require.Equal(t, 1, res.Bag.Count(diag.OwnRedeclarationShadow))
	warning := res.Bag.Items()[0]
	assert.Equal(t, diag.SevWarning, warning.Severity)
	require.Len(t, warning.Notes, 1)
	assert.Equal(t, "previous declaration here", warning.Notes[0].Msg)

	res = eval(t, script, Options{Shadowing: ownership.ShadowDeny})
	assert.True(t, res.Failed())
	assert.Equal(t, StatusRejected, res.Outcomes[1].Status)
}

func TestSyntaxErrorsSkipEvaluation(t *testing.T) {
	res := eval(t, "let = 5\nuse s\n", Options{})
	assert.False(t, res.Parsed)
	assert.Empty(t, res.Outcomes)
	assert.True(t, res.Failed())
	assert.True(t, res.Bag.HasErrors())
}

func TestYAMLScript(t *testing.T) {
	src := `steps:
  - op: let
    name: s
    value: hello
  - op: move
    src: s
    dst: t
  - op: use
    name: s
    expect: UseAfterMove
`
	res, err := EvaluateSource(context.Background(), "script.yaml", []byte(src), Options{})
	require.NoError(t, err)
	assert.False(t, res.Failed(), "%v", statuses(res))
	assert.Equal(t, StatusExpected, res.Outcomes[2].Status)
}

func TestTimingsDiagnostic(t *testing.T) {
	res := eval(t, "let x = 1\n", Options{Timings: true})
	require.Equal(t, 1, res.Bag.Count(diag.ObsTimings))
	require.Len(t, res.Timing.Phases, 2)
	assert.Equal(t, "parse", res.Timing.Phases[0].Name)
	assert.Equal(t, "eval", res.Timing.Phases[1].Name)
}

func TestMachineStepping(t *testing.T) {
	res := eval(t, "", Options{})
	require.Len(t, res.Outcomes, 1)

	m, pre, err := Prepare(context.Background(), res.FileSet, res.File.ID, Options{})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, pre.Parsed)

	text, _, ok := m.Peek()
	require.True(t, ok)
	assert.Equal(t, "end of script", text)
	out, ok := m.Step()
	require.True(t, ok)
	assert.Equal(t, "close", out.Op)
	assert.True(t, m.Done())
	_, ok = m.Step()
	assert.False(t, ok)
}

func TestCheckFilesKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}
	good := write("a.own", "let x = 1\n")
	bad := write("b.own", "let s = \"a\"\nmove s -> t\nuse s\n")
	yml := write("c.yaml", "steps:\n  - op: let\n    name: x\n    value: 1\n")
	missing := filepath.Join(dir, "missing.own")

	listed, err := ListScripts(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{good, bad, yml}, listed)

	results, err := CheckFiles(context.Background(), []string{good, bad, yml, missing}, Options{Jobs: 2})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	assert.False(t, results[2].Failed())
	assert.True(t, results[3].Failed())
	assert.Equal(t, 1, results[3].Bag.Count(diag.IOLoadFileError))
	assert.True(t, strings.HasSuffix(results[3].Path, "missing.own"))
}

func TestTokenize(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "t.own")
	require.NoError(t, os.WriteFile(p, []byte("let x = 1 $\n"), 0o600))

	res, err := Tokenize(p, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Bag.Count(diag.LexUnknownChar))
	assert.NotEmpty(t, res.Tokens)
}

func TestCheckFilesReportsProgress(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.own", "b.own", "c.own"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("let x = 1\n"), 0o600))
		paths = append(paths, p)
	}

	var mu sync.Mutex
	started, finished := 0, 0
	opts := Options{Jobs: 2, OnFile: func(ev FileEvent) {
		mu.Lock()
		defer mu.Unlock()
		if ev.Done {
			finished++
			assert.False(t, ev.Failed)
		} else {
			started++
		}
	}}
	_, err := CheckFiles(context.Background(), paths, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, started)
	assert.Equal(t, 3, finished)
}
