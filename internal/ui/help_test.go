package ui

import (
	"strings"
	"testing"
)

func TestHelpOverlay_ContentStructure(t *testing.T) {
	setupTest(t)

	help := NewHelpOverlay(createTestStyles(), DefaultKeyMap())
	help.SetSize(100, 50)
	output := help.View()

	for _, want := range []string{
		"Keyboard Shortcuts",
		"Cycles",
		"Window",
		"Folder Picker",
		"new cycle",
		"post-it",
		"calendar",
		"opacity up",
		"Press ? or Esc to close",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help overlay missing %q", want)
		}
	}
}

func TestHelpOverlay_NarrowTerminal(t *testing.T) {
	setupTest(t)

	help := NewHelpOverlay(createTestStyles(), DefaultKeyMap())
	help.SetSize(40, 60)

	for i, line := range strings.Split(help.View(), "\n") {
		if w := len([]rune(line)); w > 40 {
			t.Errorf("line %d is %d columns wide, want <= 40", i, w)
		}
	}
}

func TestKeyMap_HelpCoversAllBindings(t *testing.T) {
	keys := DefaultKeyMap()

	seen := map[string]bool{}
	for _, group := range keys.FullHelp() {
		for _, b := range group {
			seen[b.Help().Desc] = true
		}
	}
	for _, b := range keys.ShortHelp() {
		if !seen[b.Help().Desc] {
			t.Errorf("short help binding %q missing from full help", b.Help().Desc)
		}
	}
	if len(seen) != 14 {
		t.Errorf("full help lists %d bindings, want 14", len(seen))
	}
}
