package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"ownsim/internal/diagfmt"
	"ownsim/internal/driver"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	nextStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// historyLines is how many evaluated steps stay on screen.
const historyLines = 12

// StepperModel walks a script one store operation at a time.
type StepperModel struct {
	title      string
	newMachine func() *driver.Machine
	machine    *driver.Machine

	keys       keyMap
	help       help.Model
	prog       progress.Model
	bindings   table.Model
	showEvents bool
	width      int
}

// NewStepper returns a model driving machines made by newMachine. The
// factory is called again on restart.
func NewStepper(title string, newMachine func() *driver.Machine) *StepperModel {
	cols := make([]table.Column, len(diagfmt.BindingHeader))
	for i, h := range diagfmt.BindingHeader {
		cols[i] = table.Column{Title: h, Width: columnWidth(h)}
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithHeight(8),
		table.WithFocused(false),
	)
	styles := table.DefaultStyles()
	styles.Selected = lipgloss.NewStyle()
	t.SetStyles(styles)

	prog := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	prog.Width = 40

	m := &StepperModel{
		title:      title,
		newMachine: newMachine,
		keys:       defaultKeys(),
		help:       help.New(),
		prog:       prog,
		bindings:   t,
		width:      80,
	}
	m.reset()
	return m
}

func columnWidth(header string) int {
	switch header {
	case "NAME", "STATE":
		return 14
	case "VALUE":
		return 20
	case "BORROWS":
		return 9
	default:
		return 6
	}
}

func (m *StepperModel) reset() {
	m.machine = m.newMachine()
	m.refreshBindings()
}

// refreshBindings shows the live store while stepping and the state
// before the final drops once the script has finished.
func (m *StepperModel) refreshBindings() {
	views := m.machine.Final()
	if !m.machine.Done() {
		views = m.machine.Store().Snapshot()
	}
	rows := make([]table.Row, 0, len(views))
	for _, v := range views {
		rows = append(rows, table.Row(diagfmt.BindingRow(v)))
	}
	m.bindings.SetRows(rows)
}

// Machine exposes the machine currently shown.
func (m *StepperModel) Machine() *driver.Machine { return m.machine }

func (m *StepperModel) Init() tea.Cmd { return nil }

func (m *StepperModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.prog.Width = max(msg.Width/2, 20)
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Step):
			m.machine.Step()
		case key.Matches(msg, m.keys.Run):
			for !m.machine.Done() {
				m.machine.Step()
			}
		case key.Matches(msg, m.keys.Restart):
			m.reset()
			return m, nil
		case key.Matches(msg, m.keys.Events):
			m.showEvents = !m.showEvents
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		default:
			return m, nil
		}
		m.refreshBindings()
	}
	return m, nil
}

func (m *StepperModel) View() string {
	var b strings.Builder
	pos, total := m.machine.Position(), m.machine.Steps()
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  step %d/%d", m.title, pos, total)))
	b.WriteString("\n")
	b.WriteString(m.prog.ViewAs(float64(pos) / float64(max(total, 1))))
	b.WriteString("\n\n")

	outcomes := m.machine.Outcomes()
	start := max(len(outcomes)-historyLines, 0)
	lineWidth := max(m.width-6, 20)
	for _, o := range outcomes[start:] {
		b.WriteString(m.outcomeLine(o, lineWidth))
		b.WriteString("\n")
		if m.showEvents {
			for _, ev := range o.Events {
				b.WriteString(dimStyle.Render("      · " + diagfmt.DescribeEvent(ev)))
				b.WriteString("\n")
			}
		}
	}
	if text, _, ok := m.machine.Peek(); ok {
		b.WriteString(nextStyle.Render(truncate("  ▶ "+text, lineWidth)))
		b.WriteString("\n")
	} else {
		status := okStyle.Render("finished")
		if m.machine.Halted() {
			status = failStyle.Render("stopped at the first failure")
		}
		b.WriteString("  " + status + "\n")
	}

	if last := lastFailure(outcomes); last != nil {
		b.WriteString("\n")
		b.WriteString(failStyle.Render(truncate(last.Err.Kind.String()+": "+last.Err.Message, lineWidth)))
		b.WriteString("\n")
		if last.Err.Help != "" {
			b.WriteString(dimStyle.Render("help: " + last.Err.Help))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("bindings"))
	b.WriteString("\n")
	b.WriteString(m.bindings.View())
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *StepperModel) outcomeLine(o driver.Outcome, width int) string {
	text := strings.Repeat("  ", o.Depth) + o.Text
	switch o.Status {
	case driver.StatusOK:
		if o.Detail != "" {
			text += " = " + o.Detail
		}
		return okStyle.Render("  ✓ ") + truncate(text, width)
	case driver.StatusExpected:
		return okStyle.Render("  ✓ ") + truncate(text, width) + dimStyle.Render(" (rejected as expected)")
	default:
		return failStyle.Render("  ✗ ") + truncate(text, width) + failStyle.Render(" "+o.Status.String())
	}
}

func lastFailure(outcomes []driver.Outcome) *driver.Outcome {
	if len(outcomes) == 0 {
		return nil
	}
	last := &outcomes[len(outcomes)-1]
	if last.Err == nil || !last.Status.Failed() {
		return nil
	}
	return last
}

// truncate cuts s to width display cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
