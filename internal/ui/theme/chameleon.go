package theme

import "github.com/charmbracelet/lipgloss"

// chameleonTheme follows the Chameleon portal colors: green accents on a
// neutral base.
type chameleonTheme struct {
	palette ColorPalette
	styles  Styles
	symbols Symbols
}

// NewChameleonTheme creates the default theme.
func NewChameleonTheme() Theme {
	palette := ColorPalette{
		Primary:   lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#4ade80"}, // Green
		Secondary: lipgloss.AdaptiveColor{Light: "#0891b2", Dark: "#22d3ee"}, // Cyan

		Success: lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"},
		Error:   lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#ef4444"},
		Warning: lipgloss.AdaptiveColor{Light: "#ca8a04", Dark: "#facc15"},
		Info:    lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#60a5fa"},

		Text:         lipgloss.AdaptiveColor{Light: "#1f2937", Dark: "#f9fafb"},
		TextMuted:    lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"},
		TextEmphasis: lipgloss.AdaptiveColor{Light: "#111827", Dark: "#ffffff"},

		Border: lipgloss.AdaptiveColor{Light: "#d1d5db", Dark: "#4b5563"},
	}

	t := &chameleonTheme{
		palette: palette,
		symbols: Symbols{
			Success: "✓", // checkmark
			Error:   "✗", // X mark
			Warning: "!",
			Info:    "→", // arrow
			Bullet:  "•",
		},
	}

	t.styles = Styles{
		Success: lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(palette.Warning),
		Info: lipgloss.NewStyle().
			Foreground(palette.Info),

		Header: lipgloss.NewStyle().
			Foreground(palette.TextEmphasis).
			Bold(true),
		SubHeader: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		Bold: lipgloss.NewStyle().
			Foreground(palette.TextEmphasis).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(palette.TextMuted),
		Emphasis: lipgloss.NewStyle().
			Foreground(palette.Primary),

		Key: lipgloss.NewStyle().
			Foreground(palette.TextMuted),
		Value: lipgloss.NewStyle().
			Foreground(palette.Text),

		TableHeader: lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true).
			Padding(0, 1),
		TableCell: lipgloss.NewStyle().
			Padding(0, 1),
		TableBorder: lipgloss.NewStyle().
			Foreground(palette.Border),

		Selected: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),
		Cursor: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),
		Spinner: lipgloss.NewStyle().
			Foreground(palette.Primary),
	}

	return t
}

func (t *chameleonTheme) Name() string {
	return "chameleon"
}

func (t *chameleonTheme) Palette() ColorPalette {
	return t.palette
}

func (t *chameleonTheme) Styles() Styles {
	return t.styles
}

func (t *chameleonTheme) Symbols() Symbols {
	return t.symbols
}
