package ui

import (
	"cycleplanner/internal/config"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Styles holds all application styles, initialized with theme configuration.
type Styles struct {
	// Colors
	ColorPrimary   lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorDanger    lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorBg        lipgloss.Color
	ColorBgLight   lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color

	// Component styles
	TitleStyle     lipgloss.Style
	PathStyle      lipgloss.Style
	FrameStyle     lipgloss.Style
	PaneTitleStyle lipgloss.Style

	CycleStyle          lipgloss.Style
	CycleCursorStyle    lipgloss.Style
	CycleSelectedMark   string
	CycleUnselectedMark string

	ModeStyle lipgloss.Style
	PinStyle  lipgloss.Style

	HelpStyle    lipgloss.Style
	HelpKeyStyle lipgloss.Style

	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style

	InputPromptStyle lipgloss.Style
	InputTextStyle   lipgloss.Style

	StatLabelStyle lipgloss.Style
	StatValueStyle lipgloss.Style
}

// NewStyles creates a new Styles instance from the given config.
func NewStyles(cfg *config.Config) *Styles {
	return NewStylesFromTheme(&cfg.Theme)
}

// NewStylesFromTheme creates a new Styles instance from a ThemeConfig.
// If a theme color is empty, it uses the appropriate default.
func NewStylesFromTheme(theme *config.ThemeConfig) *Styles {
	s := &Styles{}

	s.ColorPrimary = colorOrDefault(theme.Primary, "#7C3AED")
	s.ColorAccent = colorOrDefault(theme.Accent, "#10B981")
	s.ColorMuted = colorOrDefault(theme.Muted, "#6B7280")

	// Fixed semantic colors (not configurable from theme)
	s.ColorDanger = lipgloss.Color("#EF4444")
	s.ColorWarning = lipgloss.Color("#F59E0B")
	s.ColorSuccess = lipgloss.Color("#10B981")

	s.ColorBg = colorOrDefault(theme.Background, "#1F2937")
	s.ColorBgLight = lipgloss.Color("#374151")
	s.ColorText = colorOrDefault(theme.Text, "#F9FAFB")
	s.ColorTextMuted = lipgloss.Color("#9CA3AF")

	s.initComponentStyles()

	return s
}

// colorOrDefault returns the lipgloss.Color from hex string, or default if empty.
func colorOrDefault(hex, defaultHex string) lipgloss.Color {
	if hex != "" {
		return lipgloss.Color(hex)
	}
	return lipgloss.Color(defaultHex)
}

// Faded returns a copy of s whose foreground colors are blended toward the
// background color. An opacity of 1 returns s itself.
func (s *Styles) Faded(opacity float64) *Styles {
	if opacity >= 1 {
		return s
	}
	f := *s
	amount := 1 - opacity
	for _, c := range []*lipgloss.Color{
		&f.ColorPrimary, &f.ColorAccent, &f.ColorMuted,
		&f.ColorDanger, &f.ColorWarning, &f.ColorSuccess,
		&f.ColorBgLight, &f.ColorText, &f.ColorTextMuted,
	} {
		*c = blend(*c, s.ColorBg, amount)
	}
	f.initComponentStyles()
	return &f
}

// blend mixes c toward bg in RGB space. Colors that are not hex are
// returned unchanged.
func blend(c, bg lipgloss.Color, amount float64) lipgloss.Color {
	fg, err := colorful.Hex(string(c))
	if err != nil {
		return c
	}
	back, err := colorful.Hex(string(bg))
	if err != nil {
		return c
	}
	return lipgloss.Color(fg.BlendRgb(back, amount).Clamped().Hex())
}

// initComponentStyles initializes all component styles based on the color palette.
func (s *Styles) initComponentStyles() {
	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorText).
		Background(s.ColorPrimary).
		Padding(0, 1)

	s.PathStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.FrameStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.ColorPrimary).
		Padding(0, 1)

	s.PaneTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.ColorPrimary).
		MarginBottom(1)

	s.CycleStyle = lipgloss.NewStyle().
		Foreground(s.ColorText)

	s.CycleCursorStyle = lipgloss.NewStyle().
		Background(s.ColorBgLight).
		Foreground(s.ColorText).
		Bold(true)

	s.CycleSelectedMark = lipgloss.NewStyle().Foreground(s.ColorSuccess).Render("●")
	s.CycleUnselectedMark = lipgloss.NewStyle().Foreground(s.ColorMuted).Render("○")

	s.ModeStyle = lipgloss.NewStyle().
		Foreground(s.ColorAccent).
		Bold(true)

	s.PinStyle = lipgloss.NewStyle().
		Foreground(s.ColorWarning)

	s.HelpStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.HelpKeyStyle = lipgloss.NewStyle().
		Foreground(s.ColorAccent).
		Bold(true)

	s.StatusStyle = lipgloss.NewStyle().
		Foreground(s.ColorSuccess).
		Italic(true)

	s.ErrorStyle = lipgloss.NewStyle().
		Foreground(s.ColorDanger).
		Bold(true)

	s.InputPromptStyle = lipgloss.NewStyle().
		Foreground(s.ColorPrimary).
		Bold(true)

	s.InputTextStyle = lipgloss.NewStyle().
		Foreground(s.ColorText)

	s.StatLabelStyle = lipgloss.NewStyle().
		Foreground(s.ColorTextMuted)

	s.StatValueStyle = lipgloss.NewStyle().
		Foreground(s.ColorText).
		Bold(true)
}

// RenderHelp renders help text with key bindings using the given styles.
func (s *Styles) RenderHelp(keys ...string) string {
	var result string
	for i := 0; i+1 < len(keys); i += 2 {
		if i > 0 {
			result += "  "
		}
		result += s.HelpKeyStyle.Render("["+keys[i]+"]") + " " + s.HelpStyle.Render(keys[i+1])
	}
	return result
}
