package summary

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondomain "focuspulse/internal/modules/session/domain"
	sessiondto "focuspulse/internal/modules/session/dto"
	"focuspulse/internal/ui/theme"
)

// Model shows the result of the session that just ended.
type Model struct {
	summary sessiondto.SummaryOutput
	width   int
	height  int
}

func New() Model { return Model{} }

func (m *Model) SetSummary(s sessiondto.SummaryOutput) { m.summary = s }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if sz, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = sz.Width
		m.height = sz.Height
	}
	return m, nil
}

func (m Model) View() string {
	s := m.summary
	heading := "Session complete"
	if s.Outcome == "stopped" {
		heading = "Session stopped"
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render(heading) + "\n\n")
	sb.WriteString(theme.Score(s.Score).Render(fmt.Sprintf("%d", s.Score)) + theme.Muted.Render(" / 100") + "\n\n")
	sb.WriteString(theme.Muted.Render("task          ") + s.TaskName + "\n")
	sb.WriteString(theme.Muted.Render("duration      ") + sessiondomain.Minutes(s.Elapsed) + "\n")
	sb.WriteString(theme.Muted.Render("distractions  ") + fmt.Sprint(s.Distractions) + "\n")
	sb.WriteString(theme.Muted.Render("idle          ") + sessiondomain.MinutesSeconds(s.IdleTime) + "\n")
	if s.DistractionPenalty > 0 || s.IdlePenalty > 0 {
		sb.WriteString("\n" + theme.Muted.Render(fmt.Sprintf(
			"base %.0f  -%.0f distractions  -%.1f idle",
			s.BaseScore, s.DistractionPenalty, s.IdlePenalty)) + "\n")
	}
	if s.NotePath != "" {
		sb.WriteString(theme.Muted.Render("note          ") + s.NotePath + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: back to dashboard"))

	card := theme.Pane.Width(min(max(m.width-4, 20), 66)).Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
}
