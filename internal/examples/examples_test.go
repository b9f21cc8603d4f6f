package examples

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ownsim/internal/diag"
	"ownsim/internal/driver"
)

func TestEmbeddedScriptsPass(t *testing.T) {
	all := List()
	require.Len(t, all, 7)
	assert.Equal(t, "main", all[0].Name)

	for _, s := range all {
		t.Run(s.Name, func(t *testing.T) {
			res, err := driver.EvaluateSource(context.Background(), s.File, s.Source, driver.Options{})
			require.NoError(t, err)
			require.True(t, res.Parsed, diag.FormatShort(res.Bag.Items(), res.FileSet, true))
			assert.False(t, res.Failed(), diag.FormatShort(res.Bag.Items(), res.FileSet, true))
			assert.NotEmpty(t, s.Title)
		})
	}
}

func TestGet(t *testing.T) {
	s, ok := Get("owner_code")
	require.True(t, ok)
	assert.Equal(t, "passing values to functions by value.", s.Title)

	_, ok = Get("owner_code.own")
	assert.True(t, ok)

	_, ok = Get("nope")
	assert.False(t, ok)
}
