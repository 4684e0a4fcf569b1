package theme

import "github.com/charmbracelet/lipgloss"

// Theme supplies the colors, styles and symbols used for terminal output.
type Theme interface {
	Name() string
	Palette() ColorPalette
	Styles() Styles
	Symbols() Symbols
}

// ColorPalette is the set of adaptive colors a theme is built from.
type ColorPalette struct {
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor

	Success lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor

	Text         lipgloss.AdaptiveColor
	TextMuted    lipgloss.AdaptiveColor
	TextEmphasis lipgloss.AdaptiveColor

	Border lipgloss.AdaptiveColor
}

// Styles are the rendered lipgloss styles derived from a palette.
type Styles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Header    lipgloss.Style
	SubHeader lipgloss.Style

	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Emphasis lipgloss.Style

	Key   lipgloss.Style
	Value lipgloss.Style

	TableHeader lipgloss.Style
	TableCell   lipgloss.Style
	TableBorder lipgloss.Style

	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Spinner  lipgloss.Style
}

// Symbols are the glyphs prefixed to status messages.
type Symbols struct {
	Success string
	Error   string
	Warning string
	Info    string
	Bullet  string
}

var current Theme = NewChameleonTheme()

// Current returns the active theme.
func Current() Theme {
	return current
}

// Set replaces the active theme.
func Set(t Theme) {
	current = t
}
