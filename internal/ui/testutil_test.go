package ui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cycleplanner/internal/config"
	"cycleplanner/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// setupTest prepares the test environment for deterministic rendering.
// It disables colors to ensure consistent output across environments.
func setupTest(t *testing.T) {
	t.Helper()
	lipgloss.SetColorProfile(termenv.Ascii)
}

// createTestStorage creates a Storage instance with a temporary directory.
func createTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "app-data"))
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	store.SetNowFunc(func() time.Time {
		return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	})
	return store
}

// createTestStyles creates a default Styles instance for testing.
func createTestStyles() *Styles {
	return NewStylesFromTheme(&config.ThemeConfig{})
}

// createTestApp creates an app over a fresh store and sizes it to 120x40.
func createTestApp(t *testing.T) (*App, *storage.Storage) {
	t.Helper()
	store := createTestStorage(t)
	app := NewApp(store, createTestStyles(), &AppConfig{PickStart: t.TempDir()})
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app, store
}

// createTestCycle creates a cycle folder under a temp parent.
func createTestCycle(t *testing.T, store *storage.Storage, name string) storage.CycleMeta {
	t.Helper()
	idx, err := store.CreateCycle(name, t.TempDir())
	if err != nil {
		t.Fatalf("CreateCycle(%q): %v", name, err)
	}
	return idx.Cycles[len(idx.Cycles)-1]
}

// run executes cmd and feeds the resulting message back into the app,
// following nested commands but not ticks or blocking waits.
func run(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && i < 10; i++ {
		msg := cmd()
		if msg == nil {
			return
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				run(t, app, c)
			}
			return
		}
		if _, ok := msg.(tickMsg); ok {
			return
		}
		_, cmd = app.Update(msg)
	}
}

// keyPress builds a key message for a single rune or named key.
func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs the command it returns.
func press(t *testing.T, app *App, s string) {
	t.Helper()
	_, cmd := app.Update(keyPress(s))
	run(t, app, cmd)
}

// mkdir creates a directory and returns its path.
func mkdir(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	return path
}
