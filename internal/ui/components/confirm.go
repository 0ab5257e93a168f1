package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"focuspulse/internal/ui/theme"
)

// ConfirmMsg reports the user's answer to the question opened for Action.
type ConfirmMsg struct {
	Action string
	Yes    bool
}

var confirmStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(theme.Red).
	Background(theme.Mantle).
	Foreground(theme.Text).
	Padding(1, 2)

// Confirm is a modal yes/no question. While visible it swallows every key.
type Confirm struct {
	action   string
	question string
	visible  bool
}

func NewConfirm() Confirm { return Confirm{} }

func (c Confirm) Visible() bool { return c.visible }

// Ask opens the dialog. The answer comes back as a ConfirmMsg tagged with action.
func (c *Confirm) Ask(action, question string) {
	c.action = action
	c.question = question
	c.visible = true
}

func (c Confirm) Update(msg tea.Msg) (Confirm, tea.Cmd) {
	if !c.visible {
		return c, nil
	}
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}
	var yes bool
	switch km.String() {
	case "y", "Y", "enter":
		yes = true
	case "n", "N", "esc", "q":
		yes = false
	default:
		return c, nil
	}
	c.visible = false
	action := c.action
	return c, func() tea.Msg { return ConfirmMsg{Action: action, Yes: yes} }
}

func (c Confirm) View() string {
	if !c.visible {
		return ""
	}
	body := theme.Hot.Render(c.question) + "\n\n" +
		theme.Muted.Render("y/enter: yes   n/esc: no")
	return confirmStyle.Render(body)
}
