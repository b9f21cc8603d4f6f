package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Step    key.Binding
	Run     key.Binding
	Restart key.Binding
	Events  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Step: key.NewBinding(
			key.WithKeys("n", " ", "right", "j"),
			key.WithHelp("n/space", "step"),
		),
		Run: key.NewBinding(
			key.WithKeys("r", "enter"),
			key.WithHelp("r", "run to end"),
		),
		Restart: key.NewBinding(
			key.WithKeys("R", "home"),
			key.WithHelp("R", "restart"),
		),
		Events: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "toggle events"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Step, k.Run, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Step, k.Run, k.Restart},
		{k.Events, k.Help, k.Quit},
	}
}
