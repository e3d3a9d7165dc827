// Package pathutil canonicalizes filesystem paths and renders them the same
// way regardless of which platform produced them.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

const (
	extendedUNCPrefix = `\\?\UNC\`
	extendedPrefix    = `\\?\`
)

// Display strips Windows extended-length prefixes so paths read the way
// users typed them: `\\?\UNC\server\share` becomes `\\server\share` and
// `\\?\C:\data` becomes `C:\data`. Any other input is returned unchanged.
func Display(path string) string {
	if rest, ok := strings.CutPrefix(path, extendedUNCPrefix); ok {
		return `\\` + rest
	}
	if rest, ok := strings.CutPrefix(path, extendedPrefix); ok {
		return rest
	}
	return path
}

// Expand resolves a leading ~ to the user's home directory.
func Expand(path string) (string, error) {
	return homedir.Expand(path)
}

// Canonical expands ~, makes path absolute and resolves symlinks when the
// target exists. The result is passed through Display.
func Canonical(path string) string {
	if path == "" {
		return ""
	}
	if expanded, err := Expand(path); err == nil {
		path = expanded
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if _, err := os.Stat(path); err == nil {
		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			path = resolved
		}
	}
	return Display(path)
}
