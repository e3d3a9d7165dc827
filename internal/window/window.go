// Package window controls the presentation mode of the host window: normal,
// a compact always-on-top post-it, or a wider calendar layout. The
// Controller remembers the normal geometry to restore to and the window
// opacity; the host supplies the window itself through the Window and
// Alpha capabilities.
package window

import (
	"errors"
	"fmt"
	"math"
)

// ErrPlatform wraps every failure reported by a host window call.
var ErrPlatform = errors.New("platform window error")

// Size is a window size in logical units.
type Size struct {
	Width  float64
	Height float64
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// Fixed window sizes per mode.
var (
	NormalSize   = Size{Width: 1320, Height: 860}
	PostItSize   = Size{Width: 390, Height: 560}
	CalendarSize = Size{Width: 1080, Height: 760}
)

// Opacity bounds.
const (
	MinOpacity     = 0.5
	MaxOpacity     = 1.0
	DefaultOpacity = 1.0
)

// ClampOpacity limits v to [MinOpacity, MaxOpacity]. NaN maps to the default.
func ClampOpacity(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultOpacity
	}
	return math.Min(MaxOpacity, math.Max(MinOpacity, v))
}

// Geometry is what gets restored when returning to normal mode.
type Geometry struct {
	Size      Size
	Maximized bool
}

// Window is the host window capability the controller drives.
type Window interface {
	InnerSize() (Size, error)
	IsMaximized() (bool, error)
	Maximize() error
	Unmaximize() error
	SetSize(Size) error
	IsAlwaysOnTop() (bool, error)
	SetAlwaysOnTop(bool) error
}

// Alpha applies window-level opacity. Hosts without layered-window support
// use NoAlpha.
type Alpha interface {
	SetAlpha(opacity float64) error
}

// NoAlpha is the Alpha capability of hosts that cannot blend the window.
type NoAlpha struct{}

// SetAlpha does nothing.
func (NoAlpha) SetAlpha(float64) error {
	return nil
}

// JoinAlpha returns an Alpha that applies opacity to each of alphas in
// order. Every capability is tried; the failures are joined.
func JoinAlpha(alphas ...Alpha) Alpha {
	var out joinedAlpha
	for _, a := range alphas {
		switch a.(type) {
		case nil, NoAlpha:
			continue
		}
		out = append(out, a)
	}
	switch len(out) {
	case 0:
		return NoAlpha{}
	case 1:
		return out[0]
	}
	return out
}

type joinedAlpha []Alpha

func (j joinedAlpha) SetAlpha(opacity float64) error {
	var errs []error
	for _, a := range j {
		if err := a.SetAlpha(opacity); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func platformError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPlatform, op, err)
}
