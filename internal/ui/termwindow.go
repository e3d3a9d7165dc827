package ui

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"cycleplanner/internal/window"
)

// Minimum frame in cells; smaller frames cannot hold the title and help bars.
const (
	minFrameCols = 20
	minFrameRows = 6
)

// errInvalidSize is returned by SetSize for non-positive or non-finite sizes.
var errInvalidSize = errors.New("invalid window size")

// TermWindow is the terminal acting as a host window. Logical sizes map to
// cells through a fixed cell size. A maximized window fills the terminal.
// It implements window.Window and window.Alpha and is safe for concurrent use.
type TermWindow struct {
	mu sync.Mutex

	cellW, cellH float64
	cols, rows   int

	size      window.Size
	maximized bool
	onTop     bool
	opacity   float64
}

var (
	_ window.Window = (*TermWindow)(nil)
	_ window.Alpha  = (*TermWindow)(nil)
)

// NewTermWindow creates a maximized window with the given cell size in
// logical units. Non-positive cell sizes fall back to 8x16.
func NewTermWindow(cellW, cellH float64) *TermWindow {
	if !(cellW > 0) {
		cellW = 8
	}
	if !(cellH > 0) {
		cellH = 16
	}
	return &TermWindow{
		cellW:     cellW,
		cellH:     cellH,
		size:      window.NormalSize,
		maximized: true,
		opacity:   window.DefaultOpacity,
	}
}

// SetTerminalSize records the terminal dimensions in cells.
func (w *TermWindow) SetTerminalSize(cols, rows int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cols, w.rows = cols, rows
}

// InnerSize reports the logical size. A maximized window reports the
// terminal size once it is known.
func (w *TermWindow) InnerSize() (window.Size, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.maximized && w.cols > 0 && w.rows > 0 {
		return window.Size{
			Width:  float64(w.cols) * w.cellW,
			Height: float64(w.rows) * w.cellH,
		}, nil
	}
	return w.size, nil
}

func (w *TermWindow) IsMaximized() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maximized, nil
}

func (w *TermWindow) Maximize() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.maximized = true
	return nil
}

func (w *TermWindow) Unmaximize() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.maximized = false
	return nil
}

// SetSize sets the restored logical size.
func (w *TermWindow) SetSize(s window.Size) error {
	if !validSize(s) {
		return fmt.Errorf("%w: %s", errInvalidSize, s)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.size = s
	return nil
}

func validSize(s window.Size) bool {
	return s.Width > 0 && s.Height > 0 && !math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0)
}

func (w *TermWindow) IsAlwaysOnTop() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.onTop, nil
}

func (w *TermWindow) SetAlwaysOnTop(on bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onTop = on
	return nil
}

// SetAlpha stores the opacity used to fade the frame colors.
func (w *TermWindow) SetAlpha(opacity float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.opacity = window.ClampOpacity(opacity)
	return nil
}

// Opacity returns the last applied opacity.
func (w *TermWindow) Opacity() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opacity
}

// Frame returns the frame dimensions in cells. A maximized window fills
// the terminal; otherwise the logical size is converted to cells and
// clamped to the terminal.
func (w *TermWindow) Frame() (cols, rows int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.maximized {
		return w.cols, w.rows
	}
	cols = int(math.Round(w.size.Width / w.cellW))
	rows = int(math.Round(w.size.Height / w.cellH))
	cols = max(cols, minFrameCols)
	rows = max(rows, minFrameRows)
	if w.cols > 0 {
		cols = min(cols, w.cols)
	}
	if w.rows > 0 {
		rows = min(rows, w.rows)
	}
	return cols, rows
}
