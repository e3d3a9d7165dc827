package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// HelpOverlay renders a help screen
type HelpOverlay struct {
	width  int
	height int
	styles *Styles
	keys   KeyMap
}

// NewHelpOverlay creates a new help overlay
func NewHelpOverlay(styles *Styles, keys KeyMap) *HelpOverlay {
	return &HelpOverlay{
		styles: styles,
		keys:   keys,
	}
}

// SetSize sets the overlay dimensions
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	overlayWidth := 60
	if h.width > 0 {
		overlayWidth = min(60, max(20, h.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.styles.ColorPrimary).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorPrimary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(h.styles.ColorAccent).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorWarning).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorText)

	mutedStyle := lipgloss.NewStyle().
		Foreground(h.styles.ColorTextMuted).
		Italic(true)

	section := func(b *strings.Builder, title string, bindings ...key.Binding) {
		b.WriteString(sectionStyle.Render(title))
		b.WriteString("\n")
		for _, binding := range bindings {
			help := binding.Help()
			b.WriteString(keyStyle.Render(help.Key) + descStyle.Render(help.Desc) + "\n")
		}
		b.WriteString("\n")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("cycle planner - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	k := h.keys
	section(&b, "Cycles", k.Up, k.Down, k.Select, k.Create, k.Import, k.Reload)
	section(&b, "Window", k.PostIt, k.Calendar, k.OnTop, k.Maximize, k.OpacityUp, k.OpacityDown)
	section(&b, "Folder Picker",
		key.NewBinding(key.WithHelp("enter", "Pick highlighted folder")),
		key.NewBinding(key.WithHelp(".", "Pick current folder")),
		key.NewBinding(key.WithHelp("esc", "Cancel")),
	)

	b.WriteString(mutedStyle.Render("Press ? or Esc to close"))

	content := overlayStyle.Render(b.String())

	return lipgloss.Place(
		h.width,
		h.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}
