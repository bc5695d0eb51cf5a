package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for the orbit view.
type KeyMap struct {
	Cancel key.Binding
	Slots  key.Binding
	Reload key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default keybinding configuration.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "drop"),
		),
		Slots: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "slots"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp lists the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Cancel, k.Slots, k.Reload, k.Quit}
}
