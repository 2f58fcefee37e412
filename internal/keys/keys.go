// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// FormKeyMap defines the keybindings for the registration form.
// Letter keys are never bound because the username input consumes them.
type FormKeyMap struct {
	// Focus
	NextField key.Binding
	PrevField key.Binding

	// Option pickers
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding

	// Actions
	Toggle key.Binding
	Enter  key.Binding
	Submit key.Binding
	Reset  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultFormKeyMap returns the default form keybindings.
func DefaultFormKeyMap() FormKeyMap {
	return FormKeyMap{
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "previous option"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next option"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous option"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next option"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select / submit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
		Reset: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "clear form"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// Form is the global form key map.
var Form = DefaultFormKeyMap()

// ShortHelp returns keybindings for the status line.
func (k FormKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Toggle, k.Submit, k.Help, k.Quit}
}

// FullHelp returns keybindings grouped by purpose.
func (k FormKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextField, k.PrevField, k.Reset},
		{k.Left, k.Right, k.Up, k.Down},
		{k.Toggle, k.Enter, k.Submit},
		{k.Help, k.Quit},
	}
}
