// Package ui is the terminal front end of the task list.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nick-dorsch/tasklist/internal/binder"
	"github.com/nick-dorsch/tasklist/internal/ui/components"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#1F1F1F")).
			Padding(1, 2)

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	focusedInputStyle = inputStyle.
				BorderForeground(lipgloss.Color("12"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

const (
	defaultTitle = "Stay Productive"
	inputHeight  = 2
)

type focusArea int

const (
	focusInput focusArea = iota
	focusList
)

type Options struct {
	Title     string
	AltScreen bool
	Logger    *slog.Logger
}

// Model is the root bubbletea model. It owns no task state of its own; rows
// come from the binder after every intent.
type Model struct {
	ctx      context.Context
	binder   *binder.Binder
	keys     KeyMap
	input    textarea.Model
	list     *components.TaskList
	confirm  *components.ConfirmDialog
	ids      []string
	focus    focusArea
	title    string
	status   string
	width    int
	height   int
	ready    bool
	quitting bool
	logger   *slog.Logger
}

func NewModel(ctx context.Context, b *binder.Binder, opts Options) (*Model, error) {
	if err := b.Resync(ctx); err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	ta := textarea.New()
	ta.Placeholder = "What needs to be done?"
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	// enter submits; it never inserts a newline
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	title := opts.Title
	if title == "" {
		title = defaultTitle
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := &Model{
		ctx:    ctx,
		binder: b,
		keys:   DefaultKeyMap(),
		input:  ta,
		list:   components.NewTaskList(0, 0),
		focus:  focusInput,
		title:  title,
		logger: logger,
	}
	m.refreshList()
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.recalculateLayout()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}

		// the confirmation is modal: nothing else sees keys until it is answered
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}

		switch {
		case key.Matches(msg, m.keys.ClearAll):
			m.openConfirm()
			return m, nil
		case key.Matches(msg, m.keys.SwitchFocus):
			return m, m.toggleFocus()
		}

		if m.focus == focusInput {
			return m.updateInput(msg)
		}
		return m.updateList(msg)

	case tea.MouseMsg:
		if m.confirm != nil {
			return m, nil
		}
		return m, m.list.Update(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Submit) {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	row, ok, err := m.binder.OnSubmit(m.ctx, m.input.Value())
	if err != nil {
		m.setError(err)
		return m, nil
	}
	if !ok {
		return m, nil
	}

	m.logger.Debug("task added", "id", row.ID)
	m.input.Reset()
	m.status = ""
	m.refreshList()
	m.list.SetCursor(len(m.ids) - 1)
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.list.MoveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.list.MoveCursor(1)

	case key.Matches(msg, m.keys.Toggle):
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		if _, _, err := m.binder.OnToggle(m.ctx, id); err != nil {
			m.setError(err)
		}
		m.refreshList()

	case key.Matches(msg, m.keys.Delete):
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		if _, err := m.binder.OnDelete(m.ctx, id); err != nil {
			m.setError(err)
		}
		m.refreshList()

	case msg.String() == "q":
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) openConfirm() {
	dialog := components.NewConfirmDialog(m.binder.RequestClearAll())
	m.confirm = &dialog
	m.input.Blur()
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	model, _ := m.confirm.Update(msg)
	dialog := model.(components.ConfirmDialog)
	if !dialog.Answered() {
		m.confirm = &dialog
		return m, nil
	}

	m.confirm = nil
	cleared, err := m.binder.ResolveClearAll(m.ctx, dialog.Confirmed())
	if err != nil {
		m.setError(err)
	} else if cleared {
		m.logger.Debug("all tasks cleared")
		m.status = ""
	}
	m.refreshList()

	if m.focus == focusInput {
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusInput {
		m.focus = focusList
		m.input.Blur()
		m.list.SetFocused(true)
		return nil
	}
	m.focus = focusInput
	m.list.SetFocused(false)
	return m.input.Focus()
}

func (m *Model) selectedID() (string, bool) {
	i := m.list.Cursor()
	if i < 0 || i >= len(m.ids) {
		return "", false
	}
	return m.ids[i], true
}

// refreshList re-renders every row from the binder.
func (m *Model) refreshList() {
	rows := m.binder.Rows()
	items := make([]components.Item, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		items = append(items, components.Item{Text: r.Text, Done: r.Done})
		ids = append(ids, r.ID)
	}
	m.ids = ids
	m.list.SetItems(items)
}

func (m *Model) setError(err error) {
	m.logger.Error("intent failed", "error", err)
	m.status = err.Error()
}

func (m *Model) recalculateLayout() {
	if !m.ready {
		return
	}

	inputWidth := m.width - inputStyle.GetHorizontalFrameSize()
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.SetWidth(inputWidth)

	m.list.SetSize(m.width, m.listHeight())
}

func (m *Model) listHeight() int {
	occupied := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderInput()) +
		lipgloss.Height(m.renderHelp()) +
		lipgloss.Height(m.renderStatus())
	h := m.height - occupied
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading tasks..."
	}

	body := m.list.View()
	if m.confirm != nil {
		body = lipgloss.Place(m.width, m.listHeight(), lipgloss.Center, lipgloss.Center, m.confirm.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderInput(),
		body,
		m.renderStatus(),
		m.renderHelp(),
	)
}

func (m *Model) renderHeader() string {
	total, done := m.binder.Counts()
	stats := statsStyle.Render(fmt.Sprintf("%d/%d done", done, total))
	title := headerStyle.Render("📝 " + m.title)
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", stats)
}

func (m *Model) renderInput() string {
	style := inputStyle
	if m.focus == focusInput && m.confirm == nil {
		style = focusedInputStyle
	}
	return style.Render(m.input.View())
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	return errorStyle.Render("Error: " + m.status)
}

func (m *Model) renderHelp() string {
	var parts []string
	switch {
	case m.confirm != nil:
		parts = []string{"y confirm", "n/esc cancel"}
	case m.focus == focusInput:
		parts = []string{"enter add task", "tab go to list", "ctrl+x clear all", "ctrl+c quit"}
	default:
		parts = []string{"↑/↓ move", "space/d mark done", "x delete", "tab go to input", "ctrl+x clear all", "q quit"}
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}

// Run starts the terminal UI and blocks until it exits or ctx ends.
func Run(ctx context.Context, b *binder.Binder, opts Options) error {
	m, err := NewModel(ctx, b, opts)
	if err != nil {
		return err
	}

	progOpts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(m, progOpts...)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.Quit()
		case <-done:
		}
	}()

	_, err = p.Run()
	return err
}
