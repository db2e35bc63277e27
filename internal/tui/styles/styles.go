package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	PokeRed   = lipgloss.Color("#EF4444")
	PokeBlue  = lipgloss.Color("#3B82F6")
	Gold      = lipgloss.Color("#E5A00D")
	DimGray   = lipgloss.Color("#6B7280")
	LightGray = lipgloss.Color("#9CA3AF")
	White     = lipgloss.Color("#F9FAFB")
	Green     = lipgloss.Color("#10B981")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Gold)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(PokeRed)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(PokeBlue).
			Padding(0, 1)

	MatchStyle = lipgloss.NewStyle().
			Foreground(Gold).
			Bold(true)

	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(Gold)

	FilterStyle = lipgloss.NewStyle().
			Foreground(White)
)

// Borders
var (
	PanelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray).
			Padding(0, 1)
)

// StatBarFull/Empty render the base-stat gauge cells.
const (
	StatBarFull  = "█"
	StatBarEmpty = "░"
)
