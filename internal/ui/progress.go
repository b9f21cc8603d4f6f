package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"ownsim/internal/driver"
)

type scriptState uint8

const (
	stateQueued scriptState = iota
	stateRunning
	statePassed
	stateFailed
)

var stateLabels = [...]string{"queued", "running", "ok", "fail"}

var stateStyles = [...]lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
}

func (s scriptState) render() string {
	return stateStyles[s].Render(fmt.Sprintf("%7s", stateLabels[s]))
}

var headerStyle = lipgloss.NewStyle().Bold(true)

type fileEventMsg driver.FileEvent
type feedClosedMsg struct{}

type progressModel struct {
	title  string
	feed   <-chan driver.FileEvent
	paths  []string
	states []scriptState
	row    map[string]int
	passed int
	failed int
	width  int
	closed bool

	spin spinner.Model
	bar  progress.Model
}

// NewProgressModel returns a Bubble Tea model that follows a CheckFiles run
// over files. It quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.FileEvent) tea.Model {
	m := &progressModel{
		title:  title,
		feed:   events,
		paths:  files,
		states: make([]scriptState, len(files)),
		row:    make(map[string]int, len(files)),
		width:  80,
		spin:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(60)),
	}
	for i, p := range files {
		m.row[p] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.next)
}

// next blocks on the feed; Update re-arms it after every event.
func (m *progressModel) next() tea.Msg {
	ev, ok := <-m.feed
	if !ok {
		return feedClosedMsg{}
	}
	return fileEventMsg(ev)
}

func (m *progressModel) finished() int { return m.passed + m.failed }

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fileEventMsg:
		return m, tea.Batch(m.record(driver.FileEvent(msg)), m.next)
	case feedClosedMsg:
		m.closed = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
	case spinner.TickMsg:
		if !m.closed {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) record(ev driver.FileEvent) tea.Cmd {
	i, ok := m.row[ev.Path]
	if !ok {
		return nil
	}
	if !ev.Done {
		m.states[i] = stateRunning
		return nil
	}
	if ev.Failed {
		m.states[i] = stateFailed
		m.failed++
	} else {
		m.states[i] = statePassed
		m.passed++
	}
	return m.bar.SetPercent(float64(m.finished()) / float64(len(m.paths)))
}

func (m *progressModel) View() string {
	if len(m.paths) == 0 {
		return ""
	}
	var sb strings.Builder

	lead := m.spin.View()
	if m.closed {
		lead = "done:"
	}
	header := fmt.Sprintf("%s %s %d/%d", lead, m.title, m.finished(), len(m.paths))
	if m.failed > 0 {
		header += fmt.Sprintf(" (%d failed)", m.failed)
	}
	sb.WriteString(headerStyle.Render(header))
	sb.WriteString("\n\n")

	room := max(m.width-12, 20)
	for i, p := range m.paths {
		fmt.Fprintf(&sb, "  %s %s\n", m.states[i].render(), clip(p, room))
	}
	sb.WriteString("\n")
	if m.closed {
		sb.WriteString(m.bar.ViewAs(1))
	} else {
		sb.WriteString(m.bar.View())
	}
	sb.WriteString("\n")
	return sb.String()
}

// clip shortens s to at most width display cells, keeping the tail of a
// path since that is the part that tells scripts apart.
func clip(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 1 {
		return runewidth.Truncate(s, width, "")
	}
	r := []rune(s)
	for runewidth.StringWidth(string(r)) > width-1 {
		r = r[1:]
	}
	return "…" + string(r)
}
