package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	activeTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E0E0E0"))

	doneTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#777777")).
			Strikethrough(true)

	doneMarkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2E7D32")).
			Bold(true)

	activeMarkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true).
				Padding(0, 1)

	scrollbarTrackStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("236"))

	scrollbarHandleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
)

// RowStyle is the text style for a task row. It depends on nothing but done.
func RowStyle(done bool) lipgloss.Style {
	if done {
		return doneTextStyle
	}
	return activeTextStyle
}

func rowMark(done bool) string {
	if done {
		return doneMarkStyle.Render("✔")
	}
	return activeMarkStyle.Render("○")
}

// Item is one row of the list.
type Item struct {
	Text string
	Done bool
}

// TaskList renders rows in a scrollable viewport with a scrollbar.
type TaskList struct {
	viewport viewport.Model
	items    []Item
	cursor   int
	focused  bool
	ready    bool
	width    int
	height   int

	// first rendered line of each item, plus a final entry for the end
	lineStarts []int
}

func NewTaskList(width, height int) *TaskList {
	return &TaskList{
		viewport: viewport.New(width, height),
		width:    width,
		height:   height,
	}
}

func (l *TaskList) SetSize(width, height int) {
	l.width = width
	l.height = height
	vpWidth := width
	if width > 0 {
		vpWidth = width - 1
	}
	if !l.ready {
		l.viewport = viewport.New(vpWidth, height)
		l.ready = true
	} else {
		l.viewport.Width = vpWidth
		l.viewport.Height = height
	}
	l.updateContent()
}

func (l *TaskList) SetItems(items []Item) {
	l.items = items
	l.clampCursor()
	l.updateContent()
}

func (l *TaskList) SetCursor(i int) {
	l.cursor = i
	l.clampCursor()
	l.updateContent()
}

func (l *TaskList) Cursor() int {
	return l.cursor
}

func (l *TaskList) MoveCursor(delta int) {
	l.SetCursor(l.cursor + delta)
}

func (l *TaskList) SetFocused(focused bool) {
	l.focused = focused
	l.updateContent()
}

func (l *TaskList) clampCursor() {
	if l.cursor >= len(l.items) {
		l.cursor = len(l.items) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (l *TaskList) renderItem(i int, item Item) string {
	prefix := "  "
	if l.focused && i == l.cursor {
		prefix = cursorStyle.Render("› ")
	}
	head := prefix + rowMark(item.Done) + " "

	text := item.Text
	if textWidth := l.viewport.Width - lipgloss.Width(head); textWidth > 0 {
		text = lipgloss.NewStyle().Width(textWidth).Render(text)
	}

	// style per line so the strike-through stops at the text, not the padding
	style := RowStyle(item.Done)
	lines := strings.Split(text, "\n")
	indent := strings.Repeat(" ", lipgloss.Width(head))
	for j, line := range lines {
		line = style.Render(strings.TrimRight(line, " "))
		if j == 0 {
			lines[j] = head + line
		} else {
			lines[j] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}

func (l *TaskList) updateContent() {
	if len(l.items) == 0 {
		l.lineStarts = []int{0}
		l.viewport.SetContent(placeholderStyle.Render("No tasks yet. Type one above and press enter."))
		l.viewport.GotoTop()
		return
	}

	var rendered []string
	l.lineStarts = l.lineStarts[:0]
	line := 0
	for i, item := range l.items {
		r := l.renderItem(i, item)
		l.lineStarts = append(l.lineStarts, line)
		line += lipgloss.Height(r)
		rendered = append(rendered, r)
	}
	l.lineStarts = append(l.lineStarts, line)

	l.viewport.SetContent(strings.Join(rendered, "\n"))
	l.scrollToCursor()
}

// scrollToCursor moves the viewport the least amount that shows the whole
// cursor row.
func (l *TaskList) scrollToCursor() {
	if l.viewport.Height <= 0 || len(l.lineStarts) < 2 {
		return
	}
	top := l.lineStarts[l.cursor]
	bottom := l.lineStarts[l.cursor+1]

	if top < l.viewport.YOffset {
		l.viewport.SetYOffset(top)
	} else if bottom > l.viewport.YOffset+l.viewport.Height {
		l.viewport.SetYOffset(bottom - l.viewport.Height)
	}
}

func (l *TaskList) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.viewport, cmd = l.viewport.Update(msg)
	return cmd
}

func (l *TaskList) View() string {
	if !l.ready {
		return ""
	}

	if l.viewport.TotalLineCount() <= l.viewport.Height {
		return l.viewport.View()
	}

	h := l.viewport.Height
	percent := l.viewport.ScrollPercent()

	handlePos := int(float64(h-1) * percent)

	var sb strings.Builder
	for i := 0; i < h; i++ {
		if i == handlePos {
			sb.WriteString(scrollbarHandleStyle.Render("┃"))
		} else {
			sb.WriteString(scrollbarTrackStyle.Render("│"))
		}
		if i < h-1 {
			sb.WriteString("\n")
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, l.viewport.View(), sb.String())
}

func (l *TaskList) YOffset() int {
	return l.viewport.YOffset
}
