// Package ui provides the terminal host for the cycle planner.
// This file defines message types for async I/O operations using the Bubble Tea
// command pattern. Storage and window operations return these messages to keep
// the event loop non-blocking.
package ui

import (
	"cycleplanner/internal/storage"
	"cycleplanner/internal/window"
)

// =============================================================================
// Index Messages
// =============================================================================

// indexLoadedMsg is sent when an index operation completes.
// op is one of "load", "select", "create", "import".
type indexLoadedMsg struct {
	op    string
	index *storage.IndexData
	err   error
}

// indexChangedMsg is sent when index.json is rewritten on disk.
type indexChangedMsg struct{}

// =============================================================================
// Cycle Messages
// =============================================================================

// cycleLoadedMsg is sent when a cycle's content file has been read.
type cycleLoadedMsg struct {
	id   string
	data *storage.CycleData
	err  error
}

// =============================================================================
// Window Messages
// =============================================================================

// windowModeMsg is sent when a post-it or calendar toggle completes.
type windowModeMsg struct {
	mode window.Mode
	on   bool
	err  error
}

// opacityMsg is sent when the opacity has been applied.
type opacityMsg struct {
	opacity float64
	err     error
}

// onTopMsg is sent when always-on-top has been toggled.
type onTopMsg struct {
	on  bool
	err error
}

// maximizeMsg is sent when maximize has been toggled.
type maximizeMsg struct {
	maximized bool
	err       error
}
