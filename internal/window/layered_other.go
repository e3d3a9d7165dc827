//go:build !windows

package window

// NewLayeredAlpha returns NoAlpha; layered windows exist only on Windows.
func NewLayeredAlpha(uintptr) Alpha {
	return NoAlpha{}
}

// ConsoleHandle returns 0 outside Windows.
func ConsoleHandle() uintptr {
	return 0
}
