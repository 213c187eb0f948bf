package monitor

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Refresh key.Binding
	SortBy  key.Binding
	Left    key.Binding
	Right   key.Binding
	Select  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		SortBy: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6"),
			key.WithHelp("1-6", "sort by column"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/→", "pick column"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
		),
		Select: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort by picked"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.SortBy, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.SortBy},
		{k.Left, k.Select},
		{k.Help, k.Quit},
	}
}
