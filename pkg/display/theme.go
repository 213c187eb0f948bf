package display

import (
	"github.com/charmbracelet/lipgloss"

	"shea/pkg/format"
)

// Theme defines colors and symbols for the CLI using lipgloss
type Theme struct {
	Bold   lipgloss.Style
	Cyan   lipgloss.Style
	Green  lipgloss.Style
	Yellow lipgloss.Style
	Dim    lipgloss.Style
	Red    lipgloss.Style

	Bullet  string
	Arrow   string
	BoxTree string
	BoxLast string
	BoxItem string

	IconDir   string
	IconFile  string
	IconDisk  string
	IconUp    string
	IconCPU   string
	IconMem   string
	IconGear  string
	IconPath  string
	IconHelp  string
	IconClock string
	IconProcs string
}

func DefaultTheme() *Theme {
	return &Theme{
		Bold:   lipgloss.NewStyle().Bold(true),
		Cyan:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Green:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Yellow: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Dim:    lipgloss.NewStyle().Faint(true),
		Red:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		Bullet:  "•",
		Arrow:   "→",
		BoxTree: "├──",
		BoxLast: "└──",
		BoxItem: "│  ",

		IconDir:   "📁",
		IconFile:  "📄",
		IconDisk:  "💾",
		IconUp:    "⬆️",
		IconCPU:   "🔥",
		IconMem:   "💾",
		IconGear:  "⚙️",
		IconPath:  "📂",
		IconHelp:  "💡",
		IconClock: "⏱️",
		IconProcs: "📊",
	}
}

func (t *Theme) Styled(style lipgloss.Style, text string) string {
	return style.Render(text)
}

// ForLevel returns the style used to color a usage level.
func (t *Theme) ForLevel(l format.Level) lipgloss.Style {
	switch l {
	case format.LevelCritical:
		return t.Red
	case format.LevelHigh:
		return t.Yellow
	case format.LevelModerate:
		return t.Cyan
	default:
		return t.Green
	}
}

// Usage colors text according to the usage level of percent.
func (t *Theme) Usage(percent float64, text string) string {
	return t.ForLevel(format.UsageLevel(percent)).Render(text)
}
