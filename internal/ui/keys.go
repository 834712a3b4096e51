package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Clear    key.Binding
	Enter    key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Mode     key.Binding
	Debug    key.Binding
	Help     key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Clear:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search/select")),
	Up:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
	Down:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
	Mode:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "search/ingest")),
	Debug:    key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "events")),
	Help:     key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "more keys")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Clear, k.Mode, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Enter, k.Clear, k.Up, k.Down},
		{k.PageUp, k.PageDown, k.Mode},
		{k.Debug, k.Help, k.Quit},
	}
}
