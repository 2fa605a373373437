package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the terminal client.
type KeyMap struct {
	Yes       key.Binding
	No        key.Binding
	Sometimes key.Binding
	Unknown   key.Binding

	Retry   key.Binding // Replay the model call after an upstream error.
	NewGame key.Binding // Only once the current game has ended.

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Yes: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "yes"),
	),
	No: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "no"),
	),
	Sometimes: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sometimes"),
	),
	Unknown: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "unknown"),
	),
	Retry: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "retry"),
	),
	NewGame: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "new game"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
