package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pablasso/quadro/internal/board"
	"github.com/pablasso/quadro/internal/task"
	"github.com/pablasso/quadro/internal/tui/components"
	"github.com/pablasso/quadro/internal/tui/msgs"
	"github.com/pablasso/quadro/internal/tui/styles"
)

type boardMode int

const (
	boardModeNormal boardMode = iota
	boardModeMove
	boardModeAdd
)

const (
	minLaneWidth = 18
	// Lines taken by one card including the gap below it.
	cardLines = 3
	// Header, blank line, message line and status bar.
	boardChromeLines = 4
)

// BoardModel renders the three lanes and turns key presses into board
// requests. It never mutates the board itself: drops, creates and opens are
// emitted as messages for the app model.
type BoardModel struct {
	grouping board.Grouping
	keys     BoardKeyMap
	mode     boardMode

	focus  task.Column
	cursor [task.NumColumns]int

	// Move mode: the card being carried, where it was picked up and where
	// it would land.
	moving task.ID
	pickup board.Location
	target board.Location

	input textinput.Model

	width   int
	height  int
	message string
	errMsg  string
	loading bool
}

// NewBoardModel creates an empty board view.
func NewBoardModel() BoardModel {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 200
	ti.Width = 40

	return BoardModel{
		keys:  DefaultBoardKeys(),
		input: ti,
	}
}

// Init implements tea.Model.
func (m BoardModel) Init() tea.Cmd {
	return nil
}

// SetGrouping replaces the board being shown. A card carried in move mode
// follows its new position; if it disappeared the move is abandoned.
func (m *BoardModel) SetGrouping(g board.Grouping) {
	m.grouping = g

	if m.mode == boardModeMove {
		_, c, i, ok := g.Find(m.moving)
		if !ok {
			m.mode = boardModeNormal
			m.moving = ""
		} else {
			m.pickup = board.Location{Column: c, Index: i}
			m.target.Index = clamp(m.target.Index, 0, m.maxTargetIndex(m.target.Column))
		}
	}

	for _, c := range task.Columns() {
		m.cursor[c] = clamp(m.cursor[c], 0, g.LaneLen(c)-1)
	}
}

// Update implements tea.Model.
func (m BoardModel) Update(msg tea.Msg) (BoardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case boardModeMove:
			return m.updateMove(msg)
		case boardModeAdd:
			return m.updateAdd(msg)
		default:
			return m.updateNormal(msg)
		}
	}

	if m.mode == boardModeAdd {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m BoardModel) updateNormal(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	m.message = ""
	m.errMsg = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Left):
		if m.focus > task.Todo {
			m.focus--
		}

	case key.Matches(msg, m.keys.Right):
		if m.focus < task.NumColumns-1 {
			m.focus++
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor[m.focus] > 0 {
			m.cursor[m.focus]--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor[m.focus] < m.grouping.LaneLen(m.focus)-1 {
			m.cursor[m.focus]++
		}

	case key.Matches(msg, m.keys.Move):
		t, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.mode = boardModeMove
		m.moving = t.ID
		m.pickup = board.Location{Column: m.focus, Index: m.cursor[m.focus]}
		m.target = m.pickup

	case key.Matches(msg, m.keys.Open):
		t, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return msgs.OpenDetailMsg{Task: t} }

	case key.Matches(msg, m.keys.Add):
		m.mode = boardModeAdd
		m.input.Reset()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Reload):
		return m, func() tea.Msg { return msgs.ReloadMsg{} }
	}

	return m, nil
}

func (m BoardModel) updateMove(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = boardModeNormal
		m.focus = m.pickup.Column
		m.cursor[m.focus] = m.pickup.Index
		m.moving = ""

	case key.Matches(msg, m.keys.Drop):
		dst := m.target
		drag := board.DragResult{TaskID: m.moving, Source: m.pickup, Destination: &dst}
		m.mode = boardModeNormal
		m.moving = ""
		m.focus = dst.Column
		m.cursor[dst.Column] = dst.Index
		return m, func() tea.Msg { return msgs.DragMsg{Drag: drag} }

	case key.Matches(msg, m.keys.Left):
		if m.target.Column > task.Todo {
			m.retarget(m.target.Column - 1)
		}

	case key.Matches(msg, m.keys.Right):
		if m.target.Column < task.NumColumns-1 {
			m.retarget(m.target.Column + 1)
		}

	case key.Matches(msg, m.keys.Up):
		if m.target.Index > 0 {
			m.target.Index--
		}

	case key.Matches(msg, m.keys.Down):
		if m.target.Index < m.maxTargetIndex(m.target.Column) {
			m.target.Index++
		}
	}

	return m, nil
}

func (m BoardModel) updateAdd(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = boardModeNormal
		m.errMsg = ""
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		title := strings.TrimSpace(m.input.Value())
		if err := task.ValidateTitle(title); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.mode = boardModeNormal
		m.errMsg = ""
		m.input.Blur()
		column := m.focus
		return m, func() tea.Msg { return msgs.CreateTaskMsg{Column: column, Title: title} }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// retarget moves the drop target to column c, keeping the row when it fits.
func (m *BoardModel) retarget(c task.Column) {
	m.target.Column = c
	m.target.Index = clamp(m.target.Index, 0, m.maxTargetIndex(c))
}

// maxTargetIndex is the last valid drop index in c while a card is carried.
// The carried card still occupies its own lane, so foreign lanes gain a slot.
func (m BoardModel) maxTargetIndex(c task.Column) int {
	if c == m.pickup.Column {
		return max(0, m.grouping.LaneLen(c)-1)
	}
	return m.grouping.LaneLen(c)
}

// preview returns the grouping as it would look after dropping.
func (m BoardModel) preview() board.Grouping {
	if m.mode != boardModeMove {
		return m.grouping
	}
	g, _ := m.grouping.Move(m.pickup.Column, m.target.Column, m.pickup.Index, m.target.Index)
	return g
}

// View implements tea.Model.
func (m BoardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	header := styles.TitleStyle.UnsetMarginBottom().Render("Q U A D R O")
	switch {
	case m.loading:
		header += "  " + styles.SubtleStyle.Render("loading…")
	case m.mode == boardModeMove:
		header += "  " + styles.SelectedStyle.Render("moving card")
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	g := m.preview()
	laneHeight := max(cardLines+2, m.height-boardChromeLines-2)
	laneWidth := max(minLaneWidth, m.width/int(task.NumColumns))

	lanes := make([]string, 0, task.NumColumns)
	for _, c := range task.Columns() {
		sel := -1
		if m.mode == boardModeMove {
			if c == m.target.Column {
				sel = m.target.Index
			}
		} else if c == m.focus {
			sel = m.cursor[c]
		}
		focused := c == m.focus
		if m.mode == boardModeMove {
			focused = c == m.target.Column
		}
		lanes = append(lanes, m.renderLane(c, g.Lane(c), sel, focused, laneWidth, laneHeight))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, lanes...))
	b.WriteString("\n")

	b.WriteString(m.renderMessageLine())
	b.WriteString("\n")
	b.WriteString(components.NewStatusBar().Render(m.width, m.helpItems()))

	return b.String()
}

// renderLane draws one column. sel is the highlighted row, or -1.
func (m BoardModel) renderLane(c task.Column, tasks []task.Task, sel int, focused bool, width, height int) string {
	style := styles.LaneStyle
	if focused {
		style = styles.FocusedLaneStyle
	}
	// Border and padding take two columns on each side.
	inner := width - 4

	var b strings.Builder
	b.WriteString(styles.SectionStyle.Render(c.Title()))
	b.WriteString(styles.SubtleStyle.Render(fmt.Sprintf(" (%d)", len(tasks))))
	b.WriteString("\n")

	if len(tasks) == 0 {
		b.WriteString("\n")
		b.WriteString(styles.SubtleStyle.Render("(empty)"))
		return style.Width(width - 2).Height(height).Render(b.String())
	}

	// One line for each scroll indicator.
	visible := max(1, (height-3)/cardLines)
	offset := 0
	if sel >= visible {
		offset = sel - visible + 1
	}

	if offset > 0 {
		b.WriteString(styles.SubtleStyle.Render(fmt.Sprintf("▲ +%d", offset)))
	}
	b.WriteString("\n")

	end := min(len(tasks), offset+visible)
	for i := offset; i < end; i++ {
		cardStyle := styles.CardStyle
		if i == sel {
			cardStyle = styles.SelectedCardStyle
			if m.mode == boardModeMove {
				cardStyle = styles.MovingCardStyle
			}
		}
		b.WriteString(renderCard(tasks[i], inner, cardStyle))
		b.WriteString("\n\n")
	}

	if below := len(tasks) - end; below > 0 {
		b.WriteString(styles.SubtleStyle.Render(fmt.Sprintf("▼ +%d", below)))
	}

	return style.Width(width - 2).Height(height).Render(strings.TrimRight(b.String(), "\n"))
}

func renderCard(t task.Task, width int, style lipgloss.Style) string {
	// The left border and padding take two columns.
	textWidth := width - 2

	subtitle := firstLine(t.Description)
	if subtitle == "" {
		subtitle = "#" + t.ID.String()
	}
	title := truncate(t.Title, textWidth)
	subtitle = styles.SubtleStyle.Render(truncate(subtitle, textWidth))

	return style.Render(title + "\n" + subtitle)
}

func (m BoardModel) renderMessageLine() string {
	switch {
	case m.mode == boardModeAdd:
		line := styles.SelectedStyle.Render("New task in "+m.focus.Title()+": ") + m.input.View()
		if m.errMsg != "" {
			line += "  " + styles.ErrorStyle.Render(m.errMsg)
		}
		return line
	case m.errMsg != "":
		return styles.ErrorStyle.Render(m.errMsg)
	case m.message != "":
		return styles.SuccessStyle.Render(m.message)
	}
	return ""
}

func (m BoardModel) helpItems() []string {
	k := m.keys
	switch m.mode {
	case boardModeMove:
		return []string{"hjkl shift card", "enter/space drop", "esc cancel"}
	case boardModeAdd:
		return []string{"enter create", "esc cancel"}
	}
	return append([]string{"hjkl navigate"}, components.HelpItems(k.Move, k.Open, k.Add, k.Reload, k.Quit)...)
}

// SetSize updates the model dimensions.
func (m *BoardModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetMessage shows a transient info line.
func (m *BoardModel) SetMessage(msg string) {
	m.message = msg
	m.errMsg = ""
}

// SetError shows a transient error line.
func (m *BoardModel) SetError(msg string) {
	m.errMsg = msg
	m.message = ""
}

// SetLoading toggles the loading indicator.
func (m *BoardModel) SetLoading(loading bool) {
	m.loading = loading
}

// Selected returns the card under the cursor.
func (m BoardModel) Selected() (task.Task, bool) {
	return m.grouping.At(m.focus, m.cursor[m.focus])
}

// Focus returns the focused column.
func (m BoardModel) Focus() task.Column {
	return m.focus
}

// Cursor returns the cursor row in the focused column.
func (m BoardModel) Cursor() int {
	return m.cursor[m.focus]
}

// Moving reports whether a card is being carried.
func (m BoardModel) Moving() bool {
	return m.mode == boardModeMove
}

// Adding reports whether the new card input is open.
func (m BoardModel) Adding() bool {
	return m.mode == boardModeAdd
}

// Target returns the drop location while moving.
func (m BoardModel) Target() board.Location {
	return m.target
}

// Message returns the info line.
func (m BoardModel) Message() string {
	return m.message
}

// Error returns the error line.
func (m BoardModel) Error() string {
	return m.errMsg
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return string(r[:1])
	}
	return string(r[:width-1]) + "…"
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
