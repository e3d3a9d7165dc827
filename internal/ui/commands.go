// Package ui provides the terminal host for the cycle planner.
// This file contains tea.Cmd factories that wrap storage and window
// operations. Each command returns a corresponding message type defined
// in messages.go.
package ui

import (
	"cycleplanner/internal/storage"
	"cycleplanner/internal/window"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// Index Commands
// =============================================================================

// loadIndexCmd returns a command that reads index.json.
func loadIndexCmd(store *storage.Storage) tea.Cmd {
	return func() tea.Msg {
		idx, err := store.LoadIndex()
		return indexLoadedMsg{op: "load", index: idx, err: err}
	}
}

// selectCycleCmd returns a command that persists a new selection.
func selectCycleCmd(store *storage.Storage, id string) tea.Cmd {
	return func() tea.Msg {
		idx, err := store.SelectCycle(id)
		return indexLoadedMsg{op: "select", index: idx, err: err}
	}
}

// createCycleCmd returns a command that creates a cycle under parent.
func createCycleCmd(store *storage.Storage, name, parent string) tea.Cmd {
	return func() tea.Msg {
		idx, err := store.CreateCycle(name, parent)
		return indexLoadedMsg{op: "create", index: idx, err: err}
	}
}

// importCycleCmd returns a command that registers an existing cycle folder.
func importCycleCmd(store *storage.Storage, folder string) tea.Cmd {
	return func() tea.Msg {
		idx, err := store.ImportCycle(folder)
		return indexLoadedMsg{op: "import", index: idx, err: err}
	}
}

// waitForIndexChangeCmd blocks until the watcher reports a rewrite.
// It yields nil once the channel is closed.
func waitForIndexChangeCmd(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return indexChangedMsg{}
	}
}

// =============================================================================
// Cycle Commands
// =============================================================================

// loadCycleCmd returns a command that reads a cycle's content file.
func loadCycleCmd(store *storage.Storage, id string) tea.Cmd {
	return func() tea.Msg {
		data, err := store.LoadCycleData(id)
		return cycleLoadedMsg{id: id, data: data, err: err}
	}
}

// =============================================================================
// Window Commands
// =============================================================================

// togglePostItCmd returns a command that toggles post-it mode.
func togglePostItCmd(ctrl *window.Controller) tea.Cmd {
	return func() tea.Msg {
		on, err := ctrl.TogglePostIt()
		return windowModeMsg{mode: window.ModePostIt, on: on, err: err}
	}
}

// toggleCalendarCmd returns a command that toggles calendar mode.
func toggleCalendarCmd(ctrl *window.Controller) tea.Cmd {
	return func() tea.Msg {
		on, err := ctrl.ToggleCalendar()
		return windowModeMsg{mode: window.ModeCalendar, on: on, err: err}
	}
}

// setOpacityCmd returns a command that applies a new opacity.
func setOpacityCmd(ctrl *window.Controller, opacity float64) tea.Cmd {
	return func() tea.Msg {
		applied, err := ctrl.SetOpacity(opacity)
		return opacityMsg{opacity: applied, err: err}
	}
}

// toggleOnTopCmd returns a command that flips always-on-top.
func toggleOnTopCmd(ctrl *window.Controller) tea.Cmd {
	return func() tea.Msg {
		on, err := ctrl.ToggleAlwaysOnTop()
		return onTopMsg{on: on, err: err}
	}
}

// toggleMaximizeCmd returns a command that flips the maximized state.
func toggleMaximizeCmd(ctrl *window.Controller) tea.Cmd {
	return func() tea.Msg {
		maximized, err := ctrl.ToggleMaximize()
		return maximizeMsg{maximized: maximized, err: err}
	}
}
