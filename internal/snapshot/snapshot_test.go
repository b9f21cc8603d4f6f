package snapshot

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"ownsim/internal/driver"
	"ownsim/internal/ownership"
)

func run(t *testing.T, src string) *driver.Result {
	t.Helper()
	res, err := driver.EvaluateSource(context.Background(), "snap.own", []byte(src), driver.Options{})
	require.NoError(t, err)
	return res
}

func TestFromResultCapturesFinalState(t *testing.T) {
	res := run(t, `
let mut s = "hi"
borrow r = &mut s
push r "!"
move s -> t
`)
	snap := FromResult(res, ownership.ShadowAllow)
	require.NotNil(t, snap)

	assert.Equal(t, "allow", snap.Shadowing)
	assert.Equal(t, res.File.Hash, snap.ScriptHash)
	require.Len(t, snap.Steps, 5)
	assert.Equal(t, "rejected", snap.Steps[3].Status)
	assert.Equal(t, "AliasConflict", snap.Steps[3].Kind)

	var names []string
	for _, b := range snap.Bindings {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"s", "r"}, names)
	require.Len(t, snap.Buffers, 1)
	assert.Equal(t, `hi!`, snap.Buffers[0].Content)
	assert.True(t, snap.Buffers[0].Released)

	var kinds []string
	for _, ev := range snap.Events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Contains(t, kinds, "borrow_end")
	assert.Equal(t, "drop", kinds[len(kinds)-2])
}

func TestSaveLoad(t *testing.T) {
	snap := FromResult(run(t, "let x = (1, 'a')\n"), ownership.ShadowWarn)
	path := filepath.Join(t.TempDir(), "nested", "x.snap")

	require.NoError(t, Save(path, snap))
	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, snap.Bindings, got.Bindings)
	assert.Equal(t, snap.Events, got.Events)
	assert.True(t, snap.CreatedAt.Equal(got.CreatedAt))
}

func TestDecodeRejectsOtherSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&buf).Encode(&Snapshot{Schema: SchemaVersion + 1}))

	_, err := Decode(&buf)
	assert.True(t, errors.Is(err, ErrSchema), "err = %v", err)
}

func TestUnparsedScriptHasNoSnapshot(t *testing.T) {
	assert.Nil(t, FromResult(run(t, "let = \n"), ownership.ShadowAllow))
}
