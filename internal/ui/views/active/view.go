package active

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondomain "focuspulse/internal/modules/session/domain"
	sessiondto "focuspulse/internal/modules/session/dto"
	"focuspulse/internal/ui/theme"
)

// Model renders the running session. It owns no state beyond the last
// snapshot the parent hands it.
type Model struct {
	session sessiondto.SessionOutput
	bar     progress.Model
	width   int
	height  int
}

func New() Model {
	bar := progress.New(
		progress.WithGradient(string(theme.Sapphire), string(theme.Lavender)),
		progress.WithoutPercentage(),
	)
	return Model{bar: bar}
}

// SetSession replaces the displayed snapshot.
func (m *Model) SetSession(s sessiondto.SessionOutput) { m.session = s }

func (m Model) Session() sessiondto.SessionOutput { return m.session }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if sz, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = sz.Width
		m.height = sz.Height
		m.bar.Width = min(max(sz.Width-8, 10), 60)
	}
	return m, nil
}

func (m Model) View() string {
	s := m.session
	if s.ID == "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("No active session"))
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render(s.TaskName) + "  " + theme.StatusBadge(s.Status) + "\n\n")
	sb.WriteString(theme.Big.Render(sessiondomain.Countdown(s.Remaining)) + "\n\n")
	sb.WriteString(m.bar.ViewAs(m.fraction()) + "\n\n")
	sb.WriteString(theme.Muted.Render("distractions  ") + fmt.Sprint(s.Distractions) + "\n")
	sb.WriteString(theme.Muted.Render("idle          ") + sessiondomain.Clock(s.IdleTime) + "\n")
	if s.Hidden {
		sb.WriteString("\n" + theme.Hot.Render("window unfocused: counting as a distraction") + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("s: stop session"))

	card := theme.Pane.Width(min(max(m.width-4, 20), 66)).Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
}

func (m Model) fraction() float64 {
	planned := m.session.PlannedDuration
	if planned <= 0 {
		return 0
	}
	f := float64(planned-m.session.Remaining) / float64(planned)
	return min(max(f, 0), 1)
}
