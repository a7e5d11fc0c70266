// Package ui provides the Bubble Tea TUI for the arbitrage dashboard.
package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	Quit       key.Binding
	Settings   key.Binding
	NextSymbol key.Binding
	PrevSymbol key.Binding
	Clear      key.Binding
	NextField  key.Binding
	Apply      key.Binding
	Cancel     key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		NextSymbol: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next symbol"),
		),
		PrevSymbol: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "prev symbol"),
		),
		Clear: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "clear errors"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Settings, k.NextSymbol, k.PrevSymbol}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Settings, k.Clear},
		{k.NextSymbol, k.PrevSymbol},
		{k.NextField, k.Apply, k.Cancel},
	}
}
