//go:build windows

package window

import (
	"fmt"
	"math"

	"golang.org/x/sys/windows"
)

var (
	user32                         = windows.NewLazySystemDLL("user32.dll")
	procGetWindowLongW             = user32.NewProc("GetWindowLongW")
	procSetWindowLongW             = user32.NewProc("SetWindowLongW")
	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")

	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procGetConsoleWindow = kernel32.NewProc("GetConsoleWindow")
)

const (
	gwlExStyle  = -20
	wsExLayered = 0x00080000
	lwaAlpha    = 0x00000002
)

// layeredAlpha blends a native window through the layered-window API.
type layeredAlpha struct {
	hwnd windows.HWND
}

// NewLayeredAlpha returns the opacity capability for the native window
// handle hwnd. A zero handle yields NoAlpha.
func NewLayeredAlpha(hwnd uintptr) Alpha {
	if hwnd == 0 {
		return NoAlpha{}
	}
	return &layeredAlpha{hwnd: windows.HWND(hwnd)}
}

// ConsoleHandle returns the window handle of the console hosting the
// process, or 0 when there is none.
func ConsoleHandle() uintptr {
	if procGetConsoleWindow.Find() != nil {
		return 0
	}
	hwnd, _, _ := procGetConsoleWindow.Call()
	return hwnd
}

// SetAlpha marks the window layered if needed and sets its constant alpha.
func (a *layeredAlpha) SetAlpha(opacity float64) error {
	idx := int32(gwlExStyle)
	style, _, err := procGetWindowLongW.Call(uintptr(a.hwnd), uintptr(idx))
	if style == 0 && err != windows.ERROR_SUCCESS {
		return fmt.Errorf("GetWindowLongW: %w", err)
	}
	if uint32(style)&wsExLayered == 0 {
		procSetWindowLongW.Call(uintptr(a.hwnd), uintptr(idx), uintptr(uint32(style)|wsExLayered))
	}

	alpha := byte(math.Round(ClampOpacity(opacity) * 255))
	ok, _, err := procSetLayeredWindowAttributes.Call(uintptr(a.hwnd), 0, uintptr(alpha), lwaAlpha)
	if ok == 0 {
		return fmt.Errorf("SetLayeredWindowAttributes: %w", err)
	}
	return nil
}
