package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	historydto "focuspulse/internal/modules/history/dto"
	sessiondomain "focuspulse/internal/modules/session/domain"
	"focuspulse/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the minimal interface this view needs from the history use-case.
type Port interface {
	Get(ctx context.Context, id string) (historydto.SessionDetail, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// LoadedMsg is sent when a session has been fetched (or failed to load).
type LoadedMsg struct {
	Detail historydto.SessionDetail
	Err    error
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model shows one archived session as rendered markdown.
type Model struct {
	port     Port
	viewport viewport.Model
	spinner  spinner.Model
	detail   historydto.SessionDetail
	renderer *glamour.TermRenderer
	loading  bool
	width    int
	height   int
}

func New(port Port) Model {
	vp := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)

	return Model{
		port:     port,
		viewport: vp,
		spinner:  sp,
		renderer: r,
	}
}

// Open starts loading a session. The returned Cmd produces a LoadedMsg.
func (m *Model) Open(id string) tea.Cmd {
	if m.port == nil {
		return nil
	}
	m.loading = true
	return tea.Batch(m.loadCmd(id), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		if m.detail.ID != "" {
			m.viewport.SetContent(m.renderContent())
		}

	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.detail = historydto.SessionDetail{}
			m.viewport.SetContent(theme.Hot.Render("Error: " + msg.Err.Error()))
			return m, nil
		}
		m.detail = msg.Detail
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var vCmd tea.Cmd
	m.viewport, vCmd = m.viewport.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	header := m.renderHeader()
	vpHeight := max(m.height-lipgloss.Height(header)-1, 1)

	if m.loading {
		loading := lipgloss.Place(m.width, vpHeight, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading session…")
		return lipgloss.JoinVertical(lipgloss.Left, header, loading)
	}

	// Render at the available height without touching the stored viewport.
	vp := m.viewport
	vp.Height = vpHeight
	footer := theme.Muted.Render(fmt.Sprintf("%.0f%%", m.viewport.ScrollPercent()*100))
	return lipgloss.JoinVertical(lipgloss.Left, header, vp.View(), footer)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-3, 1)
	// Rebuild the renderer so it wraps at the new width.
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(m.width),
	); err == nil {
		m.renderer = r
	}
}

func (m Model) renderHeader() string {
	d := m.detail
	if d.ID == "" {
		return theme.Title.Render("Session") + theme.Muted.Render("  esc: back") + "\n"
	}
	return theme.Title.Render(d.TaskName) + "  " +
		theme.Score(d.Score).Render(fmt.Sprintf("%d", d.Score)) + "  " +
		theme.Muted.Render(d.Outcome+"  ↑/↓: scroll  esc: back") + "\n"
}

func (m Model) renderContent() string {
	md := Markdown(m.detail)
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(md); err == nil {
			return rendered
		}
	}
	return md
}

// Markdown lays a session out as a small markdown document.
func Markdown(d historydto.SessionDetail) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", d.TaskName)
	sb.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| score | %d |\n", d.Score)
	fmt.Fprintf(&sb, "| outcome | %s |\n", d.Outcome)
	fmt.Fprintf(&sb, "| started | %s |\n", d.StartedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(&sb, "| planned | %s |\n", sessiondomain.Minutes(d.PlannedDuration))
	fmt.Fprintf(&sb, "| duration | %s |\n", sessiondomain.Minutes(d.Duration))
	fmt.Fprintf(&sb, "| distractions | %d |\n", d.Distractions)
	fmt.Fprintf(&sb, "| idle | %s |\n", sessiondomain.MinutesSeconds(d.IdleTime))
	fmt.Fprintf(&sb, "| away | %s |\n", sessiondomain.MinutesSeconds(d.AwayTime))
	if len(d.Events) > 0 {
		sb.WriteString("\n## Events\n\n")
		for _, ev := range d.Events {
			offset := ev.At.Sub(d.StartedAt)
			fmt.Fprintf(&sb, "- `+%s` %s\n", sessiondomain.Clock(offset), ev.Type)
		}
	}
	return sb.String()
}

func (m Model) loadCmd(id string) tea.Cmd {
	return func() tea.Msg {
		d, err := m.port.Get(context.Background(), id)
		return LoadedMsg{Detail: d, Err: err}
	}
}
