// Package picker is a terminal folder chooser built on the bubbles file
// picker. The Model can be embedded in another Bubble Tea program;
// PickFolder runs it standalone.
package picker

import (
	"fmt"
	"os"
	"strings"

	"cycleplanner/internal/pathutil"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type keyMap struct {
	Here   key.Binding
	Cancel key.Binding
}

var keys = keyMap{
	Here: key.NewBinding(
		key.WithKeys("."),
		key.WithHelp(".", "pick this folder"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "q", "ctrl+c"),
		key.WithHelp("esc", "cancel"),
	),
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dirStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// Model is a folder picker. It is done once a folder was picked or the
// user cancelled.
type Model struct {
	Title string

	fp     filepicker.Model
	picked string
	done   bool
}

// New creates a picker starting in start, or in the home directory when
// start is empty or not a directory.
func New(start string) Model {
	fp := filepicker.New()
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.Height = 12
	fp.CurrentDirectory = startDir(start)
	return Model{Title: "Choose a folder", fp: fp}
}

func startDir(start string) string {
	if start = strings.TrimSpace(start); start != "" {
		dir := pathutil.Canonical(start)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// Init reads the starting directory.
func (m Model) Init() tea.Cmd {
	return m.fp.Init()
}

// Update handles a message. Enter picks the highlighted folder, "." picks
// the folder being browsed and esc or q cancels.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.done {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.fp.Height = max(msg.Height-5, 3)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Cancel):
			m.done = true
			return m, nil
		case key.Matches(msg, keys.Here):
			m.pick(m.fp.CurrentDirectory)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.fp, cmd = m.fp.Update(msg)
	if ok, path := m.fp.DidSelectFile(msg); ok {
		m.pick(path)
		return m, nil
	}
	return m, cmd
}

func (m *Model) pick(path string) {
	m.picked = pathutil.Canonical(path)
	m.done = true
}

// Done reports whether the picker finished.
func (m Model) Done() bool {
	return m.done
}

// Path returns the picked folder, or "" when nothing was picked.
func (m Model) Path() string {
	return m.picked
}

// CurrentDirectory returns the folder being browsed.
func (m Model) CurrentDirectory() string {
	return m.fp.CurrentDirectory
}

// View renders the picker.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(dirStyle.Render(pathutil.Display(m.fp.CurrentDirectory)))
	b.WriteString("\n\n")
	b.WriteString(m.fp.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: pick highlighted • .: pick this folder • ←/h: up • esc: cancel"))
	return b.String()
}

// program runs a Model as a standalone Bubble Tea program.
type program struct {
	Model
}

func (p program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := p.Model.Update(msg)
	if m.Done() {
		return program{m}, tea.Quit
	}
	return program{m}, cmd
}

// PickFolder lets the user choose a folder and returns its canonical path.
// A cancelled pick returns "" and no error.
func PickFolder(start string, opts ...tea.ProgramOption) (string, error) {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	final, err := tea.NewProgram(program{New(start)}, opts...).Run()
	if err != nil {
		return "", fmt.Errorf("folder picker: %w", err)
	}
	if p, ok := final.(program); ok {
		return p.Path(), nil
	}
	return "", nil
}
