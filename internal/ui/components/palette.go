package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"focuspulse/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

// availability says whether a command makes sense with or without a
// running session.
type availability int

const (
	always availability = iota
	whileRunning
	whileStopped
)

// PaletteCommand is one entry of the palette.
type PaletteCommand struct {
	Group string
	Name  string
	Args  string
	Help  string
	when  availability
}

func (c PaletteCommand) usage() string {
	if c.Args == "" {
		return c.Name
	}
	return c.Name + " " + c.Args
}

// paletteCommands must stay in sync with the switch in app/model.go
// executePalette. Groups render in this order.
var paletteCommands = []PaletteCommand{
	{Group: "Session", Name: "session:start", Args: "<minutes> <task>", Help: "start a focus session", when: whileStopped},
	{Group: "Session", Name: "session:stop", Help: "end the running session early", when: whileRunning},
	{Group: "History", Name: "history:reset", Help: "delete every archived session"},
	{Group: "History", Name: "refresh", Help: "reload history and plugins"},
	{Group: "Plugins", Name: "plugin:exec", Args: "<plugin> <command> [json]", Help: "run a plugin command"},
	{Group: "Plugins", Name: "plugin:commands", Help: "browse plugin commands"},
}

const maxPaletteRows = 6

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	groupStyle = lipgloss.NewStyle().Foreground(theme.Lavender).Bold(true)
	usageStyle = lipgloss.NewStyle().Foreground(theme.Text)
	hintStyle  = lipgloss.NewStyle().Foreground(theme.Subtext0)
	errStyle   = lipgloss.NewStyle().Foreground(theme.Red)
)

// Palette is the command overlay. It only offers the commands that apply to
// the current session state: start while stopped, stop while running.
type Palette struct {
	input   textinput.Model
	visible bool
	running bool
	width   int
	err     string
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "session:start 25 write report"
	ti.CharLimit = 256
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// SetSessionRunning tells the palette whether a focus session is active.
func (p *Palette) SetSessionRunning(running bool) { p.running = running }

// Open shows the palette with an empty input and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.err = ""
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) available(c PaletteCommand) bool {
	switch c.when {
	case whileRunning:
		return p.running
	case whileStopped:
		return !p.running
	}
	return true
}

// matches lists the available commands whose usage starts with what has
// been typed so far, or whose name is the first typed word.
func (p Palette) matches() []PaletteCommand {
	typed := strings.ToLower(strings.TrimLeft(p.input.Value(), " "))
	first, _, _ := strings.Cut(typed, " ")
	out := []PaletteCommand{}
	for _, c := range paletteCommands {
		if !p.available(c) {
			continue
		}
		if typed == "" || strings.HasPrefix(c.Name, typed) || c.Name == first {
			out = append(out, c)
		}
	}
	return out
}

// blocked explains why the typed command cannot run right now.
func (p Palette) blocked(input string) string {
	name, _, _ := strings.Cut(input, " ")
	for _, c := range paletteCommands {
		if c.Name != name || p.available(c) {
			continue
		}
		if c.when == whileRunning {
			return fmt.Sprintf("%s: no session is running", name)
		}
		return fmt.Sprintf("%s: stop the running session first", name)
	}
	return ""
}

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "tab":
			if m := p.matches(); len(m) > 0 {
				p.input.SetValue(m[0].Name + " ")
				p.input.CursorEnd()
			}
			return p, nil
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			if reason := p.blocked(val); reason != "" {
				p.err = reason
				return p, nil
			}
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		}
		p.err = ""
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	title := "Commands"
	if p.running {
		title += hintStyle.Render("  session running")
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render(title) + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if p.err != "" {
		sb.WriteString(errStyle.Render(p.err) + "\n")
	}

	rows, group := 0, ""
	for _, c := range p.matches() {
		if rows == maxPaletteRows {
			break
		}
		if c.Group != group {
			group = c.Group
			sb.WriteString("\n" + groupStyle.Render(group) + "\n")
		}
		sb.WriteString("  " + usageStyle.Render(c.usage()) + "  " + hintStyle.Render(c.Help) + "\n")
		rows++
	}
	sb.WriteString("\n" + hintStyle.Render("tab complete · enter run · esc close"))

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
