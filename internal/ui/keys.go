// Package ui provides the terminal host for the cycle planner.
// This file defines key bindings using the Bubble Tea key package for
// type-safe key matching and help text generation.
package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// Browser Keys
// =============================================================================

// KeyMap defines the keys of the cycle browser.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Create key.Binding
	Import key.Binding
	Reload key.Binding

	PostIt      key.Binding
	Calendar    key.Binding
	OnTop       key.Binding
	Maximize    key.Binding
	OpacityUp   key.Binding
	OpacityDown key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default browser key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Create: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new cycle"),
		),
		Import: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "import"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		PostIt: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "post-it"),
		),
		Calendar: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "calendar"),
		),
		OnTop: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "on top"),
		),
		Maximize: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "maximize"),
		),
		OpacityUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "opacity up"),
		),
		OpacityDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "opacity down"),
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

// ShortHelp returns the short help for the browser (implements help.KeyMap).
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Create, k.Import, k.PostIt, k.Calendar, k.Help, k.Quit}
}

// FullHelp returns the full help for the browser (implements help.KeyMap).
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Create, k.Import, k.Reload},
		{k.PostIt, k.Calendar, k.OnTop, k.Maximize, k.OpacityUp, k.OpacityDown},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// Input Keys
// =============================================================================

// InputKeyMap defines keys for text input mode.
type InputKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultInputKeyMap returns the default input key bindings.
func DefaultInputKeyMap() InputKeyMap {
	return InputKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// =============================================================================
// Help Overlay Keys
// =============================================================================

// HelpKeyMap defines keys for the help overlay.
type HelpKeyMap struct {
	Close key.Binding
}

// DefaultHelpKeyMap returns the default help overlay key bindings.
func DefaultHelpKeyMap() HelpKeyMap {
	return HelpKeyMap{
		Close: key.NewBinding(
			key.WithKeys("?", "esc", "q", "enter", " "),
			key.WithHelp("any key", "close"),
		),
	}
}

// renderBindings renders bindings as a help bar line.
func (s *Styles) renderBindings(bindings []key.Binding) string {
	pairs := make([]string, 0, len(bindings)*2)
	for _, b := range bindings {
		h := b.Help()
		pairs = append(pairs, h.Key, h.Desc)
	}
	return s.RenderHelp(pairs...)
}
