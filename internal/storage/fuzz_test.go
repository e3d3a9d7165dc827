package storage

import (
	"strings"
	"testing"
	"unicode"
)

// FuzzSanitizeFolderName checks that sanitized names never contain path
// separators or other unsafe runes and never start or end with '_'.
func FuzzSanitizeFolderName(f *testing.F) {
	f.Add("")
	f.Add("My Plan!! 2024")
	f.Add("___")
	f.Add("../../etc/passwd")
	f.Add(`C:\Windows\System32`)
	f.Add("계획 2분기")
	f.Add("tab\tand\nnewline")
	f.Add("\x00\x01")

	f.Fuzz(func(t *testing.T, name string) {
		got := SanitizeFolderName(name)

		if got == "" {
			t.Fatal("SanitizeFolderName returned empty string")
		}
		if strings.HasPrefix(got, "_") || strings.HasSuffix(got, "_") {
			t.Errorf("SanitizeFolderName(%q) = %q has edge underscores", name, got)
		}
		for _, r := range got {
			if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
				t.Errorf("SanitizeFolderName(%q) = %q contains %q", name, got, r)
			}
		}
		if SanitizeFolderName(got) != got {
			t.Errorf("SanitizeFolderName not idempotent for %q", name)
		}
	})
}

func TestSanitizeFolderName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Plan!! 2024", "My_Plan___2024"},
		{"Q1-plan_v2", "Q1-plan_v2"},
		{"  spaced  ", "spaced"},
		{"!!!", "cycle"},
		{"", "cycle"},
		{"a/b\\c", "a_b_c"},
		{"계획", "계획"},
	}
	for _, tt := range tests {
		if got := SanitizeFolderName(tt.in); got != tt.want {
			t.Errorf("SanitizeFolderName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCycleFolderName(t *testing.T) {
	if got := CycleFolderName("Sprint", "cycle_deadbeef42"); got != "Sprint_beef42" {
		t.Errorf("CycleFolderName() = %q, want Sprint_beef42", got)
	}
	if got := folderSuffix("abc"); got != "abc" {
		t.Errorf("folderSuffix(abc) = %q, want abc", got)
	}
}
