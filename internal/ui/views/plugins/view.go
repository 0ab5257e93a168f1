package plugins

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	plugindto "focuspulse/internal/modules/plugin/dto"
	"focuspulse/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the slice of the plugin use-case this tab needs.
type Port interface {
	List(ctx context.Context) ([]plugindto.PluginInfo, error)
	ListCommands(ctx context.Context, pluginName string) ([]plugindto.CommandInfo, error)
	Execute(ctx context.Context, input plugindto.ExecuteInput) (plugindto.ExecuteOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// PluginsLoadedMsg is sent when the manifest has been read.
type PluginsLoadedMsg struct {
	Plugins []plugindto.PluginInfo
	Err     error
}

// CommandsLoadedMsg is sent when plugin commands finish loading.
type CommandsLoadedMsg struct {
	PluginName string
	Commands   []plugindto.CommandInfo
	Err        error
}

// ExecDoneMsg is sent when a plugin command finishes executing.
type ExecDoneMsg struct {
	Out plugindto.ExecuteOutput
	Err error
}

// ─── list items ──────────────────────────────────────────────────────────────

type pluginItem struct{ info plugindto.PluginInfo }

func (i pluginItem) Title() string {
	if !i.info.Enabled {
		return i.info.Name + " (disabled)"
	}
	return i.info.Name
}
func (i pluginItem) Description() string {
	return i.info.Version + "  " + strings.Join(i.info.Capabilities, ", ")
}
func (i pluginItem) FilterValue() string { return i.info.Name }

type commandItem struct{ cmd plugindto.CommandInfo }

func (i commandItem) Title() string       { return i.cmd.Title }
func (i commandItem) Description() string { return i.cmd.Description }
func (i commandItem) FilterValue() string { return i.cmd.ID + " " + i.cmd.Title }

// ─── pane ────────────────────────────────────────────────────────────────────

type pane int

const (
	panePlugins  pane = iota // user picks a plugin
	paneCommands             // user picks a command
	paneOutput               // result is displayed
)

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the Bubble Tea model for the Plugins tab.
type Model struct {
	port       Port
	pane       pane
	pluginList list.Model
	cmdList    list.Model
	output     viewport.Model
	spinner    spinner.Model
	selected   string
	lastOut    plugindto.ExecuteOutput
	loading    bool
	loadErr    error
	// set by the parent model
	dataDir   string
	sessionID string
	width     int
	height    int
}

// New creates a Plugins Model. dataDir is handed to plugins as their working directory.
func New(port Port, dataDir string) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:       port,
		pane:       panePlugins,
		pluginList: newList("Plugins"),
		cmdList:    newList("Commands"),
		output:     vp,
		spinner:    sp,
		dataDir:    dataDir,
	}
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = title
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	return l
}

// SetSession records the running session id so commands can act on it.
func (m *Model) SetSession(sessionID string) {
	m.sessionID = sessionID
}

// Filtering reports whether a list search filter is active.
func (m Model) Filtering() bool {
	return m.pluginList.FilterState() == list.Filtering || m.cmdList.FilterState() == list.Filtering
}

// ExecCommand runs a command without going through the panes; used by the
// command palette.
func (m *Model) ExecCommand(pluginName, commandID, inputJSON string) tea.Cmd {
	if m.port == nil {
		return nil
	}
	m.loading = true
	m.selected = pluginName
	return tea.Batch(m.execCmd(pluginName, commandID, inputJSON), m.spinner.Tick)
}

func (m Model) Init() tea.Cmd {
	if m.port == nil {
		return nil
	}
	return m.loadPluginsCmd()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case PluginsLoadedMsg:
		m.loadErr = msg.Err
		items := make([]list.Item, 0, len(msg.Plugins))
		for _, p := range msg.Plugins {
			items = append(items, pluginItem{info: p})
		}
		cmds = append(cmds, m.pluginList.SetItems(items))

	case CommandsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.output.SetContent(theme.Hot.Render("Error loading commands: " + msg.Err.Error()))
			m.pane = paneOutput
			return m, nil
		}
		items := make([]list.Item, len(msg.Commands))
		for i, c := range msg.Commands {
			items[i] = commandItem{cmd: c}
		}
		cmds = append(cmds, m.cmdList.SetItems(items))
		m.pane = paneCommands

	case ExecDoneMsg:
		m.loading = false
		if msg.Err != nil {
			m.output.SetContent(theme.Hot.Render("Error: " + msg.Err.Error()))
		} else {
			m.lastOut = msg.Out
			m.output.SetContent(m.renderOutput())
		}
		m.output.GotoTop()
		m.pane = paneOutput

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.pane {
	case panePlugins:
		switch msg.String() {
		case "enter":
			item, ok := m.pluginList.SelectedItem().(pluginItem)
			if !ok || m.port == nil || m.pluginList.FilterState() == list.Filtering {
				break
			}
			if !slices.Contains(item.info.Capabilities, "command") {
				m.output.SetContent(theme.Muted.Render(item.info.Name + " only listens for completed sessions."))
				m.pane = paneOutput
				return m, nil
			}
			m.selected = item.info.Name
			m.loading = true
			return m, tea.Batch(m.loadCommandsCmd(item.info.Name), m.spinner.Tick)
		case "r":
			if m.pluginList.FilterState() != list.Filtering {
				return m, m.Init()
			}
		}
		m.pluginList, cmd = m.pluginList.Update(msg)

	case paneCommands:
		switch msg.String() {
		case "enter":
			if item, ok := m.cmdList.SelectedItem().(commandItem); ok && m.cmdList.FilterState() != list.Filtering {
				m.loading = true
				return m, tea.Batch(m.execCmd(m.selected, item.cmd.ID, ""), m.spinner.Tick)
			}
		case "esc":
			if m.cmdList.FilterState() != list.Filtering {
				m.pane = panePlugins
				return m, nil
			}
		}
		m.cmdList, cmd = m.cmdList.Update(msg)

	case paneOutput:
		if msg.String() == "esc" {
			if len(m.cmdList.Items()) > 0 && m.selected != "" {
				m.pane = paneCommands
			} else {
				m.pane = panePlugins
			}
			return m, nil
		}
		m.output, cmd = m.output.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Working…")
	}

	header := m.renderHeader()
	bodyH := max(m.height-lipgloss.Height(header), 1)

	var body string
	switch m.pane {
	case panePlugins:
		switch {
		case m.loadErr != nil:
			body = theme.Hot.Render("manifest: " + m.loadErr.Error())
		case len(m.pluginList.Items()) == 0:
			body = theme.Muted.Render("No plugins installed. Add one to plugins/plugins.json in the data dir.")
		default:
			body = m.pluginList.View()
		}
		body = lipgloss.NewStyle().Height(bodyH).Render(body)

	case paneCommands:
		listW := m.width * 4 / 10
		detailW := m.width - listW
		listPane := lipgloss.NewStyle().Width(listW).Height(bodyH).Render(m.cmdList.View())
		detailPane := lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).BorderForeground(theme.Surface1).
			Background(theme.Mantle).Width(detailW - 2).Height(bodyH - 2).
			Render(m.renderCommandDetail())
		body = lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)

	case paneOutput:
		hint := theme.Muted.Render("esc: back  ↑/↓: scroll\n")
		m.output.Height = max(bodyH-lipgloss.Height(hint), 1)
		body = lipgloss.JoinVertical(lipgloss.Left, hint, m.output.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	m.pluginList.SetSize(m.width, m.height-3)
	m.cmdList.SetSize(m.width*4/10, m.height-3)
	m.output.Width = m.width - 4
	m.output.Height = m.height - 4
}

func (m Model) renderHeader() string {
	name := m.selected
	if name == "" {
		name = "(none)"
	}
	return theme.Title.Render("Plugins") + "  " +
		theme.Muted.Render("plugin: "+name) + "\n"
}

func (m Model) renderCommandDetail() string {
	item, ok := m.cmdList.SelectedItem().(commandItem)
	if !ok {
		return theme.Muted.Render("esc: back to plugins")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(item.cmd.ID) + "\n\n")
	if item.cmd.Description != "" {
		sb.WriteString(item.cmd.Description + "\n\n")
	}
	if item.cmd.TimeoutMS > 0 {
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("timeout: %dms\n", item.cmd.TimeoutMS)))
	}
	if item.cmd.InputSchemaJSON != "" {
		sb.WriteString(theme.Muted.Render("input schema:\n") + item.cmd.InputSchemaJSON + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: execute  esc: back to plugins"))
	return sb.String()
}

func (m Model) renderOutput() string {
	out := m.lastOut
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(
		fmt.Sprintf("%s:%s  exit=%d", out.PluginName, out.CommandID, out.ExitCode),
	) + "\n\n")
	if out.Stdout != "" {
		sb.WriteString(theme.Muted.Render("stdout:\n") + out.Stdout + "\n")
	}
	if out.Stderr != "" {
		sb.WriteString(theme.Hot.Render("stderr:\n") + out.Stderr + "\n")
	}
	if out.OutputJSON != "" {
		sb.WriteString(theme.Muted.Render("output JSON:\n") + out.OutputJSON + "\n")
	}
	return sb.String()
}

func (m Model) loadPluginsCmd() tea.Cmd {
	return func() tea.Msg {
		items, err := m.port.List(context.Background())
		return PluginsLoadedMsg{Plugins: items, Err: err}
	}
}

func (m Model) loadCommandsCmd(pluginName string) tea.Cmd {
	return func() tea.Msg {
		cmds, err := m.port.ListCommands(context.Background(), pluginName)
		return CommandsLoadedMsg{PluginName: pluginName, Commands: cmds, Err: err}
	}
}

func (m Model) execCmd(pluginName, commandID, inputJSON string) tea.Cmd {
	input := plugindto.ExecuteInput{
		PluginName: pluginName,
		CommandID:  commandID,
		InputJSON:  inputJSON,
		SessionID:  m.sessionID,
		DataDir:    m.dataDir,
		Cwd:        m.dataDir,
	}
	return func() tea.Msg {
		out, err := m.port.Execute(context.Background(), input)
		return ExecDoneMsg{Out: out, Err: err}
	}
}
