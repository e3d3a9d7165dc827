package storage

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	cycleIDPrefix   = "cycle"
	folderSuffixLen = 6
	defaultFolder   = "cycle"
)

func newCycleID() string {
	return cycleIDPrefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// folderSuffix returns the last six characters of id.
func folderSuffix(id string) string {
	r := []rune(id)
	if len(r) <= folderSuffixLen {
		return id
	}
	return string(r[len(r)-folderSuffixLen:])
}

// SanitizeFolderName maps name to a filesystem-safe folder name: every rune
// that is not a letter, digit, '-' or '_' becomes '_', leading and trailing
// underscores are trimmed, and an empty result becomes "cycle".
func SanitizeFolderName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return defaultFolder
	}
	return out
}

// CycleFolderName is the folder name created for a new cycle.
func CycleFolderName(name, id string) string {
	return SanitizeFolderName(name) + "_" + folderSuffix(id)
}
