package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	historydto "focuspulse/internal/modules/history/dto"
	sessiondomain "focuspulse/internal/modules/session/domain"
	sessiondto "focuspulse/internal/modules/session/dto"
	"focuspulse/internal/ui/theme"
)

const historyLimit = 50

// Port is the slice of the history use-case the dashboard reads from.
type Port interface {
	List(ctx context.Context, limit int) ([]historydto.SessionRow, error)
	Dashboard(ctx context.Context) (historydto.DashboardOutput, error)
}

// Defaults pre-fill the start form.
type Defaults struct {
	DurationMinutes      int
	IdleThresholdSeconds int
}

// LoadedMsg carries a fresh history snapshot.
type LoadedMsg struct {
	Rows   []historydto.SessionRow
	Totals historydto.DashboardOutput
	Err    error
}

// StartMsg asks the parent model to start a session.
type StartMsg struct{ Input sessiondto.StartInput }

type sessionItem struct{ row historydto.SessionRow }

func (i sessionItem) Title() string { return i.row.TaskName }
func (i sessionItem) Description() string {
	return fmt.Sprintf("score %d  %s  %d distractions  %s",
		i.row.Score,
		sessiondomain.Minutes(i.row.Duration),
		i.row.Distractions,
		humanize.Time(i.row.StartedAt))
}
func (i sessionItem) FilterValue() string { return i.row.TaskName }

const (
	fieldTask = iota
	fieldDuration
	fieldIdle
	fieldCount
)

// Model is the start form plus the recent-history list.
type Model struct {
	port     Port
	defaults Defaults
	inputs   [fieldCount]textinput.Model
	focus    int
	editing  bool
	formErr  string
	list     list.Model
	spinner  spinner.Model
	totals   historydto.DashboardOutput
	loading  bool
	loadErr  error
	width    int
	height   int
}

func New(port Port, defaults Defaults) Model {
	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		inputs[i] = ti
	}
	inputs[fieldTask].Placeholder = "what are you working on?"
	inputs[fieldTask].CharLimit = 120
	inputs[fieldDuration].Placeholder = strconv.Itoa(defaults.DurationMinutes)
	inputs[fieldDuration].CharLimit = 4
	inputs[fieldIdle].Placeholder = strconv.Itoa(defaults.IdleThresholdSeconds)
	inputs[fieldIdle].CharLimit = 5

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "History"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:     port,
		defaults: defaults,
		inputs:   inputs,
		list:     l,
		spinner:  sp,
		loading:  port != nil,
	}
}

func (m Model) Init() tea.Cmd {
	if m.port == nil {
		return nil
	}
	return tea.Batch(m.loadCmd(), m.spinner.Tick)
}

// Refresh reloads history and totals.
func (m Model) Refresh() tea.Cmd {
	if m.port == nil {
		return nil
	}
	return m.loadCmd()
}

// Editing reports whether the start form has the keyboard; global keys yield.
func (m Model) Editing() bool { return m.editing }

// Edit focuses the task field of the start form.
func (m *Model) Edit() tea.Cmd {
	m.editing = true
	m.formErr = ""
	m.focus = fieldTask
	return m.focusInputs()
}

// Selected returns the id of the highlighted history row.
func (m Model) Selected() (string, bool) {
	if item, ok := m.list.SelectedItem().(sessionItem); ok {
		return item.row.ID, true
	}
	return "", false
}

// Totals returns the last loaded aggregate.
func (m Model) Totals() historydto.DashboardOutput { return m.totals }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LoadedMsg:
		m.loading = false
		m.loadErr = msg.Err
		if msg.Err == nil {
			m.totals = msg.Totals
			items := make([]list.Item, len(msg.Rows))
			for i, r := range msg.Rows {
				items[i] = sessionItem{row: r}
			}
			cmds = append(cmds, m.list.SetItems(items))
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		if m.editing {
			return m.updateForm(msg)
		}
		var lCmd tea.Cmd
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading history…")
	}

	leftW := m.width * 4 / 10
	rightW := m.width - leftW

	left := lipgloss.JoinVertical(lipgloss.Left, m.renderForm(), "", m.renderTotals())
	leftPane := lipgloss.NewStyle().Width(leftW).Height(m.height).Padding(0, 1).Render(left)

	var right string
	switch {
	case m.loadErr != nil:
		right = theme.Hot.Render("history: " + m.loadErr.Error())
	case len(m.list.Items()) == 0:
		right = theme.Title.Render("History") + "\n\n" + theme.Muted.Render("No sessions yet.")
	default:
		right = m.list.View()
	}
	rightPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(rightW - 2).
		Height(m.height - 2).
		Render(right)

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) updateForm(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.formErr = ""
		return m, m.focusInputs()
	case "down", "tab":
		m.focus = (m.focus + 1) % fieldCount
		return m, m.focusInputs()
	case "up", "shift+tab":
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		return m, m.focusInputs()
	case "enter":
		in, err := m.formInput()
		if err != nil {
			m.formErr = err.Error()
			return m, nil
		}
		m.editing = false
		m.formErr = ""
		for i := range m.inputs {
			m.inputs[i].SetValue("")
		}
		return m, tea.Batch(m.focusInputs(), func() tea.Msg { return StartMsg{Input: in} })
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) focusInputs() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.inputs {
		if m.editing && i == m.focus {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return cmd
}

// formInput turns the form into a start request. Blank numeric fields take
// the defaults; range checks are left to the session use-case.
func (m Model) formInput() (sessiondto.StartInput, error) {
	task := strings.TrimSpace(m.inputs[fieldTask].Value())
	if task == "" {
		return sessiondto.StartInput{}, fmt.Errorf("task name is required")
	}
	minutes, err := intOr(m.inputs[fieldDuration].Value(), m.defaults.DurationMinutes)
	if err != nil {
		return sessiondto.StartInput{}, fmt.Errorf("duration must be a whole number of minutes")
	}
	idle, err := intOr(m.inputs[fieldIdle].Value(), m.defaults.IdleThresholdSeconds)
	if err != nil {
		return sessiondto.StartInput{}, fmt.Errorf("idle threshold must be a whole number of seconds")
	}
	return sessiondto.StartInput{TaskName: task, DurationMinutes: minutes, IdleThresholdSeconds: idle}, nil
}

func intOr(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func (m *Model) resize() {
	leftW := m.width * 4 / 10
	m.list.SetSize(m.width-leftW-4, m.height-2)
	for i := range m.inputs {
		m.inputs[i].Width = leftW - 6
	}
}

func (m Model) renderForm() string {
	labels := [fieldCount]string{"Task", "Minutes", "Idle threshold (s)"}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("New session") + "\n\n")
	for i, label := range labels {
		marker := "  "
		if m.editing && i == m.focus {
			marker = theme.Hot.Render("> ")
		}
		sb.WriteString(marker + theme.Muted.Render(label) + "\n")
		sb.WriteString("  " + m.inputs[i].View() + "\n")
	}
	if m.formErr != "" {
		sb.WriteString("\n" + theme.Hot.Render(m.formErr) + "\n")
	}
	if m.editing {
		sb.WriteString("\n" + theme.Muted.Render("enter: start  ↑/↓: field  esc: cancel"))
	} else {
		sb.WriteString("\n" + theme.Muted.Render("n: new session  enter: details  r: refresh  x: reset"))
	}
	return sb.String()
}

func (m Model) renderTotals() string {
	t := m.totals
	label := t.TotalFocusLabel
	if label == "" {
		label = "0h 0m"
	}
	avg := t.AverageLabel
	if avg == "" {
		avg = "-"
	}
	avgStyle := theme.Muted
	if t.Sessions > 0 {
		avgStyle = theme.Score(t.AverageScore)
	}
	return theme.Title.Render("Totals") + "\n\n" +
		theme.Muted.Render("sessions:    ") + strconv.Itoa(t.Sessions) + "\n" +
		theme.Muted.Render("focus time:  ") + label + "\n" +
		theme.Muted.Render("avg score:   ") + avgStyle.Render(avg)
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		rows, err := m.port.List(ctx, historyLimit)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		totals, err := m.port.Dashboard(ctx)
		return LoadedMsg{Rows: rows, Totals: totals, Err: err}
	}
}
