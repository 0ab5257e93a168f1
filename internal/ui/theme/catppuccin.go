package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Yellow   = lipgloss.Color("#f9e2af")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")

	App = lipgloss.NewStyle().
		Background(Base).
		Foreground(Text).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	PaneActive = Pane.BorderForeground(Lavender)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)

	Big = lipgloss.NewStyle().Foreground(Text).Bold(true).Padding(0, 1)

	badge        = lipgloss.NewStyle().Foreground(Base).Bold(true).Padding(0, 1)
	FocusedBadge = badge.Background(Green)
	IdleBadge    = badge.Background(Peach)
)

// StatusBadge renders a session status as a coloured pill.
func StatusBadge(status string) string {
	if status == "IDLE" {
		return IdleBadge.Render(status)
	}
	return FocusedBadge.Render(status)
}

// ScoreColor grades a 0-100 score.
func ScoreColor(score int) lipgloss.Color {
	switch {
	case score >= 80:
		return Green
	case score >= 50:
		return Yellow
	default:
		return Red
	}
}

func Score(score int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ScoreColor(score)).Bold(true)
}
