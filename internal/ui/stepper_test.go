package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ownsim/internal/driver"
	"ownsim/internal/source"
)

const script = `let mut s = "hi"
move s -> t
use s
`

func newTestStepper(t *testing.T) *StepperModel {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("step.own", []byte(script))
	return NewStepper("step.own", func() *driver.Machine {
		m, res, err := driver.Prepare(context.Background(), fs, id, driver.Options{})
		require.NoError(t, err)
		require.True(t, res.Parsed)
		return m
	})
}

func press(m tea.Model, keys string) tea.Model {
	for _, r := range keys {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestStepperSteps(t *testing.T) {
	m := newTestStepper(t)
	assert.Equal(t, 0, m.Machine().Position())
	assert.Contains(t, m.View(), "▶ let mut s = \"hi\"")

	press(m, "nn")
	assert.Equal(t, 2, m.Machine().Position())
	view := m.View()
	assert.Contains(t, view, "move s -> t")
	assert.Contains(t, view, "▶ use s")

	press(m, "n")
	view = m.View()
	assert.Contains(t, view, "UseAfterMove")
	assert.Contains(t, view, "rejected")
}

func TestStepperRunAndRestart(t *testing.T) {
	m := newTestStepper(t)
	press(m, "r")
	assert.True(t, m.Machine().Done())
	assert.Contains(t, m.View(), "finished")

	press(m, "R")
	assert.Equal(t, 0, m.Machine().Position())
	assert.Empty(t, m.Machine().Outcomes())
}

func TestStepperToggles(t *testing.T) {
	m := newTestStepper(t)
	press(m, "n")
	press(m, "e")
	assert.Contains(t, m.View(), "· declare s")

	press(m, "?")
	assert.True(t, m.help.ShowAll)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestProgressModel(t *testing.T) {
	events := make(chan driver.FileEvent)
	m := NewProgressModel("check", []string{"a.own", "b.own"}, events).(*progressModel)

	m.Update(fileEventMsg{Path: "a.own"})
	assert.Equal(t, stateRunning, m.states[0])
	m.Update(fileEventMsg{Path: "a.own", Done: true})
	m.Update(fileEventMsg{Path: "b.own", Done: true, Failed: true})
	m.Update(fileEventMsg{Path: "unknown.own", Done: true})
	assert.Equal(t, []scriptState{statePassed, stateFailed}, m.states)
	assert.Equal(t, 2, m.finished())

	_, cmd := m.Update(feedClosedMsg{})
	require.NotNil(t, cmd)
	view := stripANSI(m.View())
	assert.True(t, strings.HasPrefix(view, "done: check 2/2 (1 failed)"), view)
	assert.Contains(t, view, "fail b.own")
}

func TestClipKeepsTail(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "…/b.own", clip("dir/sub/b.own", 7))
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
