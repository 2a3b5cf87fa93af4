package ui

import (
	"github.com/charmbracelet/lipgloss"
	te "github.com/muesli/termenv"
)

var (
	errorTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1F1F1")).
			Background(lipgloss.Color("#FF5F87")).
			Bold(true).
			Padding(0, 1)
	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"})
)

// palette is the set of colors of one reader theme.
type palette struct {
	Background lipgloss.Color
	Text       lipgloss.Color
	Subtext    lipgloss.Color
	Pivot      lipgloss.Color
	Caret      lipgloss.Color
	Border     lipgloss.Color
}

var palettes = map[string]palette{
	"default": {
		Background: "#0b0f1a", Text: "#e5e7eb", Subtext: "#94a3b8",
		Pivot: "#60a5fa", Caret: "#7f1734", Border: "#1f2937",
	},
	"dark-red": {
		Background: "#0c0c11", Text: "#f3f4f6", Subtext: "#9ca3af",
		Pivot: "#ef4444", Caret: "#f59e0b", Border: "#262b36",
	},
	"dark-blue": {
		Background: "#0b1220", Text: "#eef2f7", Subtext: "#a1a9b8",
		Pivot: "#3b82f6", Caret: "#22c55e", Border: "#1f2a44",
	},
	"sepia": {
		Background: "#f6e8c6", Text: "#1b1b1b", Subtext: "#3b3b3b",
		Pivot: "#dc2626", Caret: "#7f1734", Border: "#e0cfaa",
	},
	"paper": {
		Background: "#fafafa", Text: "#111111", Subtext: "#333333",
		Pivot: "#7f1734", Caret: "#7f1734", Border: "#e5e7eb",
	},
}

// resolveTheme maps a theme name to a palette name. "auto" follows the
// terminal background.
func resolveTheme(name string) string {
	if name == "auto" {
		if te.HasDarkBackground() {
			return "default"
		}
		return "paper"
	}
	if _, ok := palettes[name]; ok {
		return name
	}
	return "default"
}

// styles holds the lipgloss styles derived from a palette.
type styles struct {
	name    string
	palette palette

	Canvas   lipgloss.Style
	Word     lipgloss.Style
	Pivot    lipgloss.Style
	Subtitle lipgloss.Style
	Status   lipgloss.Style
	Subtle   lipgloss.Style
	Error    lipgloss.Style
	Compose  lipgloss.Style
	Selected lipgloss.Style
}

func newStyles(theme string) styles {
	name := resolveTheme(theme)
	p := palettes[name]
	bg := lipgloss.NewStyle().Background(p.Background)

	return styles{
		name:     name,
		palette:  p,
		Canvas:   bg,
		Word:     bg.Foreground(p.Text).Bold(true),
		Pivot:    bg.Foreground(p.Pivot).Bold(true),
		Subtitle: bg.Foreground(p.Subtext),
		Status:   bg.Foreground(p.Subtext),
		Subtle:   bg.Foreground(p.Border),
		Error:    bg.Foreground(lipgloss.Color("#ef4444")).Bold(true),
		Compose: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Caret).
			Padding(0, 1),
		Selected: bg.Foreground(p.Pivot).Bold(true),
	}
}
