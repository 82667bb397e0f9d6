package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#C62828")).
			Padding(1, 2)

	questionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("#333333")).
			Padding(0, 2)

	selectedChoiceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#555555")).
				Bold(true).
				Padding(0, 2)

	dialogHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

const (
	choiceYes = 0
	choiceNo  = 1
)

// ConfirmDialog is a modal yes/no question. It has exactly two outcomes;
// dismissing it counts as no.
type ConfirmDialog struct {
	question  string
	choices   []string
	cursor    int
	answered  bool
	confirmed bool
}

// NewConfirmDialog starts with "No" selected so a stray enter never
// confirms a destructive action.
func NewConfirmDialog(question string) ConfirmDialog {
	return ConfirmDialog{
		question: question,
		choices:  []string{"Yes", "No"},
		cursor:   choiceNo,
	}
}

func (d ConfirmDialog) Init() tea.Cmd {
	return nil
}

func (d ConfirmDialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if d.answered {
		return d, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			d.answer(true)

		case "n", "N", "esc", "q":
			d.answer(false)

		case "left", "h", "up", "k", "shift+tab":
			if d.cursor > 0 {
				d.cursor--
			}

		case "right", "l", "down", "j", "tab":
			if d.cursor < len(d.choices)-1 {
				d.cursor++
			}

		case "enter", " ":
			d.answer(d.cursor == choiceYes)
		}
	}

	return d, nil
}

func (d *ConfirmDialog) answer(yes bool) {
	d.answered = true
	d.confirmed = yes
}

func (d ConfirmDialog) View() string {
	var buttons []string
	for i, choice := range d.choices {
		if d.cursor == i {
			buttons = append(buttons, selectedChoiceStyle.Render(choice))
		} else {
			buttons = append(buttons, choiceStyle.Render(choice))
		}
	}

	var s strings.Builder
	s.WriteString(questionStyle.Render(d.question))
	s.WriteString("\n\n")
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, buttons[0], "  ", buttons[1]))
	s.WriteString("\n\n")
	s.WriteString(dialogHintStyle.Render("y/n • ←/→ to choose • enter to select • esc to cancel"))

	return dialogStyle.Render(s.String())
}

// Answered reports whether the user has responded.
func (d ConfirmDialog) Answered() bool {
	return d.answered
}

// Confirmed reports whether the response was yes.
func (d ConfirmDialog) Confirmed() bool {
	return d.answered && d.confirmed
}
