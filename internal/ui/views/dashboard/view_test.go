package dashboard_test

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	historydto "focuspulse/internal/modules/history/dto"
	"focuspulse/internal/ui/views/dashboard"
)

type stubPort struct {
	rows   []historydto.SessionRow
	totals historydto.DashboardOutput
}

func (p stubPort) List(context.Context, int) ([]historydto.SessionRow, error) { return p.rows, nil }
func (p stubPort) Dashboard(context.Context) (historydto.DashboardOutput, error) {
	return p.totals, nil
}

func typeText(m dashboard.Model, s string) dashboard.Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestFormSubmitUsesDefaults(t *testing.T) {
	t.Parallel()
	m := dashboard.New(nil, dashboard.Defaults{DurationMinutes: 25, IdleThresholdSeconds: 60})
	m.Edit()
	if !m.Editing() {
		t.Fatal("Edit should focus the form")
	}
	m = typeText(m, "write report")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.Editing() {
		t.Fatal("form should close after submit")
	}
	var start dashboard.StartMsg
	found := false
	for _, msg := range drain(cmd) {
		if s, ok := msg.(dashboard.StartMsg); ok {
			start, found = s, true
		}
	}
	if !found {
		t.Fatal("expected StartMsg")
	}
	if start.Input.TaskName != "write report" || start.Input.DurationMinutes != 25 || start.Input.IdleThresholdSeconds != 60 {
		t.Fatalf("unexpected input %+v", start.Input)
	}
}

func TestFormRejectsBadNumbers(t *testing.T) {
	t.Parallel()
	m := dashboard.New(nil, dashboard.Defaults{DurationMinutes: 25, IdleThresholdSeconds: 60})
	m.Edit()
	m = typeText(m, "task")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = typeText(m, "abc")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("invalid form must not emit a command")
	}
	if !m.Editing() {
		t.Fatal("form should stay open on error")
	}
	if !strings.Contains(m.View(), "whole number of minutes") {
		t.Fatalf("error not shown:\n%s", m.View())
	}
}

func TestLoadedShowsTotalsAndRows(t *testing.T) {
	t.Parallel()
	port := stubPort{
		rows: []historydto.SessionRow{{
			ID: "a", TaskName: "write report", StartedAt: time.Now().Add(-time.Hour),
			Duration: 25 * time.Minute, Score: 93,
		}},
		totals: historydto.DashboardOutput{
			Sessions: 1, TotalFocusLabel: "0h 25m", AverageScore: 93, AverageLabel: "93",
		},
	}
	m := dashboard.New(port, dashboard.Defaults{DurationMinutes: 25, IdleThresholdSeconds: 60})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	msg := m.Refresh()()
	m, _ = m.Update(msg)
	if got := m.Totals().Sessions; got != 1 {
		t.Fatalf("sessions = %d", got)
	}
	out := m.View()
	for _, want := range []string{"0h 25m", "93", "write report", "1 hour ago"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestEmptyStateTotals(t *testing.T) {
	t.Parallel()
	m := dashboard.New(stubPort{}, dashboard.Defaults{DurationMinutes: 25, IdleThresholdSeconds: 60})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m, _ = m.Update(m.Refresh()())
	out := m.View()
	for _, want := range []string{"0h 0m", "-", "No sessions yet."} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}
