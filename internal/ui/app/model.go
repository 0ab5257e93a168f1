package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	historydto "focuspulse/internal/modules/history/dto"
	sessiondomain "focuspulse/internal/modules/session/domain"
	sessiondto "focuspulse/internal/modules/session/dto"
	apperrors "focuspulse/internal/platform/errors"
	"focuspulse/internal/ui/components"
	"focuspulse/internal/ui/theme"
	activeview "focuspulse/internal/ui/views/active"
	dashboardview "focuspulse/internal/ui/views/dashboard"
	detailview "focuspulse/internal/ui/views/detail"
	pluginsview "focuspulse/internal/ui/views/plugins"
	summaryview "focuspulse/internal/ui/views/summary"
)

const (
	tickInterval = time.Second
	// activityInterval caps how often input is reported while FOCUSED.
	// Input while IDLE is always reported so the session wakes immediately.
	activityInterval = time.Second
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type sessionPort interface {
	Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.SessionOutput, error)
	Tick(ctx context.Context) (sessiondto.TickOutput, error)
	RecordVisibility(ctx context.Context, hidden bool) (sessiondto.SessionOutput, error)
	RecordActivity(ctx context.Context) (sessiondto.SessionOutput, error)
	Stop(ctx context.Context) (sessiondto.SummaryOutput, error)
	Recover(ctx context.Context) (sessiondto.RecoverOutput, error)
}

type historyPort interface {
	dashboardview.Port
	detailview.Port
	Reset(ctx context.Context) (historydto.ResetOutput, error)
}

type pluginPort interface {
	pluginsview.Port
}

// ─── tabs and screens ────────────────────────────────────────────────────────

type tabID int

const (
	tabFocus tabID = iota
	tabPlugins
	tabCount
)

var tabLabels = [tabCount]string{"Focus", "Plugins"}

// screen is what the Focus tab shows; it follows the session lifecycle.
type screen int

const (
	screenDashboard screen = iota
	screenActive
	screenSummary
	screenDetail
)

const (
	actionStop  = "stop"
	actionReset = "reset"
)

// ─── async messages ───────────────────────────────────────────────────────────

type tickMsg time.Time

type recoveredMsg struct {
	out sessiondto.RecoverOutput
	err error
}

type tickedMsg struct {
	out sessiondto.TickOutput
	err error
}

type sessionStartedMsg struct {
	session sessiondto.SessionOutput
	err     error
}

// sessionUpdatedMsg answers visibility and activity reports.
type sessionUpdatedMsg struct {
	session sessiondto.SessionOutput
	err     error
}

type sessionStoppedMsg struct {
	summary sessiondto.SummaryOutput
	err     error
}

type resetDoneMsg struct {
	out historydto.ResetOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	New     key.Binding
	Stop    key.Binding
	Refresh key.Binding
	Reset   key.Binding
	Open    key.Binding
	Back    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new session")),
		Stop:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop session")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Reset:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset history")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "session details")),
		Back:    key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("esc", "back to dashboard")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.Open, k.Refresh, k.Reset},
		{k.Stop, k.Back},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It drives the session clock, turns
// terminal focus and input into session events, and routes between the
// dashboard, active and summary screens. Business logic stays behind ports.
type Model struct {
	session sessionPort
	history historyPort

	dashView    dashboardview.Model
	activeView  activeview.Model
	summaryView summaryview.Model
	detailView  detailview.Model
	pluginView  pluginsview.Model

	activeTab    tabID
	screen       screen
	keys         keyMap
	help         help.Model
	showHelp     bool
	palette      components.Palette
	confirm      components.Confirm
	hasActive    bool
	ticking      bool
	lastActivity time.Time
	now          func() time.Time
	status       string
	width        int
	height       int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(
	dataDir string,
	defaults dashboardview.Defaults,
	session sessionPort,
	history historyPort,
	plugin pluginPort,
) Model {
	return Model{
		session:     session,
		history:     history,
		dashView:    dashboardview.New(history, defaults),
		activeView:  activeview.New(),
		summaryView: summaryview.New(),
		detailView:  detailview.New(history),
		pluginView:  pluginsview.New(plugin, dataDir),
		activeTab:   tabFocus,
		screen:      screenDashboard,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		confirm:     components.NewConfirm(),
		now:         time.Now,
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.recoverCmd(),
		m.dashView.Init(),
		m.pluginView.Init(),
		nextTick(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case tea.KeyMsg:
		cmds = append(cmds, m.noteActivity())
		return m.handleKey(msg, cmds)

	case tea.MouseMsg:
		return m, m.noteActivity()

	case tea.FocusMsg:
		return m, m.visibilityCmd(false)

	case tea.BlurMsg:
		return m, m.visibilityCmd(true)

	case tickMsg:
		cmds = append(cmds, nextTick())
		if m.hasActive && !m.ticking {
			m.ticking = true
			cmds = append(cmds, m.tickCmd())
		}
		return m, tea.Batch(cmds...)

	case tickedMsg:
		m.ticking = false
		if msg.err != nil {
			return m.sessionGone(msg.err, "tick")
		}
		if msg.out.Completed && msg.out.Summary != nil {
			m.status = "time's up: " + msg.out.Summary.TaskName
			return m, m.showSummary(*msg.out.Summary)
		}
		m.activeView.SetSession(msg.out.Session)
		return m, nil

	case recoveredMsg:
		switch {
		case msg.err != nil:
			m.status = "recover: " + msg.err.Error()
		case !msg.out.Found:
		case msg.out.Completed && msg.out.Summary != nil:
			m.status = "session finished while closed: " + msg.out.Summary.TaskName
			return m, m.showSummary(*msg.out.Summary)
		default:
			m.showActive(msg.out.Session)
			m.status = "session resumed: " + msg.out.Session.TaskName
		}
		return m, nil

	case sessionStartedMsg:
		if msg.err != nil {
			m.status = "start failed: " + msg.err.Error()
			return m, nil
		}
		m.showActive(msg.session)
		m.status = "session started: " + msg.session.TaskName
		return m, nil

	case sessionUpdatedMsg:
		if msg.err != nil {
			return m.sessionGone(msg.err, "session")
		}
		if m.hasActive {
			m.activeView.SetSession(msg.session)
		}
		return m, nil

	case sessionStoppedMsg:
		if msg.err != nil {
			return m.sessionGone(msg.err, "stop")
		}
		m.status = "session stopped"
		return m, m.showSummary(msg.summary)

	case resetDoneMsg:
		if msg.err != nil {
			m.status = "reset failed: " + msg.err.Error()
			return m, nil
		}
		if msg.out.ClearedActive {
			m.clearActive()
		}
		if m.screen != screenActive {
			m.screen = screenDashboard
		}
		m.status = fmt.Sprintf("history reset: %d sessions deleted", msg.out.DeletedSessions)
		return m, m.dashView.Refresh()

	case dashboardview.StartMsg:
		return m, m.startCmd(msg.Input)

	case components.ConfirmMsg:
		return m.answer(msg)

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil
	}

	// Everything else (loaded data, spinner and cursor ticks) goes to the
	// components that may own it; each ignores what is not addressed to it.
	var cmd tea.Cmd
	m.dashView, cmd = m.dashView.Update(msg)
	cmds = append(cmds, cmd)
	m.detailView, cmd = m.detailView.Update(msg)
	cmds = append(cmds, cmd)
	m.pluginView, cmd = m.pluginView.Update(msg)
	cmds = append(cmds, cmd)
	if m.palette.Visible() {
		m.palette, cmd = m.palette.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg, cmds []tea.Cmd) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Overlays take the keyboard while open.
	if m.confirm.Visible() {
		m.confirm, cmd = m.confirm.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)
	}
	if m.palette.Visible() {
		m.palette, cmd = m.palette.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)
	}
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, tea.Batch(cmds...)
	}

	// Free typing in the start form or a list filter.
	if m.typing() {
		if m.activeTab == tabFocus {
			m.dashView, cmd = m.dashView.Update(msg)
		} else {
			m.pluginView, cmd = m.pluginView.Update(msg)
		}
		return m, tea.Batch(append(cmds, cmd)...)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		m.activeTab = (m.activeTab + 1) % tabCount
		return m, tea.Batch(cmds...)
	case msg.String() == "shift+tab":
		m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		return m, tea.Batch(cmds...)
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, tea.Batch(cmds...)
	case key.Matches(msg, m.keys.Palette):
		return m, tea.Batch(append(cmds, m.palette.Open())...)
	}

	if m.activeTab == tabPlugins {
		m.pluginView, cmd = m.pluginView.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)
	}

	switch m.screen {
	case screenDashboard:
		switch {
		case key.Matches(msg, m.keys.New):
			cmd = m.dashView.Edit()
		case key.Matches(msg, m.keys.Refresh):
			cmd = m.dashView.Refresh()
			m.status = "refreshed"
		case key.Matches(msg, m.keys.Reset):
			m.askReset()
		case key.Matches(msg, m.keys.Open):
			if id, ok := m.dashView.Selected(); ok {
				m.screen = screenDetail
				cmd = m.detailView.Open(id)
			}
		default:
			m.dashView, cmd = m.dashView.Update(msg)
		}
	case screenActive:
		if key.Matches(msg, m.keys.Stop) {
			m.askStop()
		}
	case screenSummary:
		if key.Matches(msg, m.keys.Back) {
			m.screen = screenDashboard
		}
	case screenDetail:
		if msg.String() == "esc" {
			m.screen = screenDashboard
		} else {
			m.detailView, cmd = m.detailView.Update(msg)
		}
	}
	return m, tea.Batch(append(cmds, cmd)...)
}

func (m Model) answer(msg components.ConfirmMsg) (tea.Model, tea.Cmd) {
	if !msg.Yes {
		m.status = msg.Action + " cancelled"
		return m, nil
	}
	switch msg.Action {
	case actionStop:
		return m, m.stopCmd()
	case actionReset:
		return m, m.resetCmd()
	}
	return m, nil
}

// sessionGone handles a failed call. A missing session means something else
// (the API, another process) ended it, so the UI falls back to the dashboard.
func (m Model) sessionGone(err error, op string) (tea.Model, tea.Cmd) {
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		if !m.hasActive {
			return m, nil
		}
		m.clearActive()
		m.screen = screenDashboard
		m.status = "session ended elsewhere"
		return m, m.dashView.Refresh()
	}
	m.status = op + ": " + err.Error()
	return m, nil
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.confirm.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.confirm.View())
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeContent()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeContent() string {
	if m.activeTab == tabPlugins {
		return m.pluginView.View()
	}
	switch m.screen {
	case screenActive:
		return m.activeView.View()
	case screenSummary:
		return m.summaryView.View()
	case screenDetail:
		return m.detailView.View()
	}
	return m.dashView.View()
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "focuspulse  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.hasActive {
		s := m.activeView.Session()
		left = theme.Hot.Render("● "+s.TaskName+" "+sessiondomain.Countdown(s.Remaining)) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "session:start":
		if len(parts) < 3 {
			m.status = "usage: session:start <minutes> <task>"
			return m, nil
		}
		minutes, err := strconv.Atoi(parts[1])
		if err != nil {
			m.status = "invalid minutes"
			return m, nil
		}
		task := strings.Join(parts[2:], " ")
		// A zero threshold selects the configured default.
		return m, m.startCmd(sessiondto.StartInput{TaskName: task, DurationMinutes: minutes})

	case "session:stop":
		m.askStop()
		return m, nil

	case "history:reset":
		m.askReset()
		return m, nil

	case "refresh":
		m.status = "refreshed"
		return m, tea.Batch(m.dashView.Refresh(), m.pluginView.Init())

	case "plugin:exec":
		if len(parts) < 3 {
			m.status = "usage: plugin:exec <plugin> <command> [json]"
			return m, nil
		}
		prefix := parts[0] + " " + parts[1] + " " + parts[2]
		inputJSON := strings.TrimSpace(strings.TrimPrefix(input, prefix))
		m.activeTab = tabPlugins
		return m, m.pluginView.ExecCommand(parts[1], parts[2], inputJSON)

	case "plugin:commands":
		m.activeTab = tabPlugins
		m.status = "switched to Plugins tab"
		return m, nil

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// typing reports whether keys belong to a text field rather than to the
// global bindings.
func (m Model) typing() bool {
	if m.activeTab == tabPlugins {
		return m.pluginView.Filtering()
	}
	return m.screen == screenDashboard && m.dashView.Editing()
}

func (m *Model) askStop() {
	if !m.hasActive {
		m.status = "no active session"
		return
	}
	m.confirm.Ask(actionStop, "Stop this session early?")
}

func (m *Model) askReset() {
	m.confirm.Ask(actionReset, "Delete all history and the active session?")
}

func (m *Model) showActive(s sessiondto.SessionOutput) {
	m.hasActive = true
	m.palette.SetSessionRunning(true)
	m.lastActivity = m.now()
	m.activeView.SetSession(s)
	m.pluginView.SetSession(s.ID)
	m.screen = screenActive
	m.activeTab = tabFocus
}

func (m *Model) showSummary(s sessiondto.SummaryOutput) tea.Cmd {
	m.clearActive()
	m.summaryView.SetSummary(s)
	m.screen = screenSummary
	m.activeTab = tabFocus
	return m.dashView.Refresh()
}

func (m *Model) clearActive() {
	m.hasActive = false
	m.palette.SetSessionRunning(false)
	m.activeView.SetSession(sessiondto.SessionOutput{})
	m.pluginView.SetSession("")
}

// noteActivity reports input to the session, throttled while FOCUSED.
func (m *Model) noteActivity() tea.Cmd {
	if !m.hasActive || m.session == nil {
		return nil
	}
	now := m.now()
	idle := m.activeView.Session().Status == string(sessiondomain.StatusIdle)
	if !idle && now.Sub(m.lastActivity) < activityInterval {
		return nil
	}
	m.lastActivity = now
	return m.activityCmd()
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.dashView, _ = m.dashView.Update(sz)
	m.activeView, _ = m.activeView.Update(sz)
	m.summaryView, _ = m.summaryView.Update(sz)
	m.detailView, _ = m.detailView.Update(sz)
	m.pluginView, _ = m.pluginView.Update(sz)
}

// ─── async commands ───────────────────────────────────────────────────────────

func nextTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) recoverCmd() tea.Cmd {
	if m.session == nil {
		return nil
	}
	return func() tea.Msg {
		out, err := m.session.Recover(context.Background())
		return recoveredMsg{out: out, err: err}
	}
}

func (m Model) tickCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Tick(context.Background())
		return tickedMsg{out: out, err: err}
	}
}

func (m Model) startCmd(input sessiondto.StartInput) tea.Cmd {
	if m.session == nil {
		return nil
	}
	return func() tea.Msg {
		s, err := m.session.Start(context.Background(), input)
		return sessionStartedMsg{session: s, err: err}
	}
}

func (m Model) visibilityCmd(hidden bool) tea.Cmd {
	if !m.hasActive || m.session == nil {
		return nil
	}
	return func() tea.Msg {
		s, err := m.session.RecordVisibility(context.Background(), hidden)
		return sessionUpdatedMsg{session: s, err: err}
	}
}

func (m Model) activityCmd() tea.Cmd {
	return func() tea.Msg {
		s, err := m.session.RecordActivity(context.Background())
		return sessionUpdatedMsg{session: s, err: err}
	}
}

func (m Model) stopCmd() tea.Cmd {
	return func() tea.Msg {
		summary, err := m.session.Stop(context.Background())
		return sessionStoppedMsg{summary: summary, err: err}
	}
}

func (m Model) resetCmd() tea.Cmd {
	if m.history == nil {
		return nil
	}
	return func() tea.Msg {
		out, err := m.history.Reset(context.Background())
		return resetDoneMsg{out: out, err: err}
	}
}
