package views

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pablasso/quadro/internal/task"
	"github.com/pablasso/quadro/internal/tui/components"
	"github.com/pablasso/quadro/internal/tui/msgs"
	"github.com/pablasso/quadro/internal/tui/styles"
)

type detailField int

const (
	fieldTitle detailField = iota
	fieldDescription
	fieldStatus
	numDetailFields
)

const detailWidth = 56

// DetailModel is the dialog for editing or deleting one task.
// It only collects input; save and delete are sent as messages.
type DetailModel struct {
	task        task.Task
	keys        DetailKeyMap
	title       textinput.Model
	description textarea.Model
	statuses    []string
	status      int
	focus       detailField

	spinner spinner.Model
	busy    string
	errMsg  string

	width  int
	height int
}

// NewDetailModel creates a dialog pre-filled with t.
func NewDetailModel(t task.Task) DetailModel {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = 200
	ti.Width = detailWidth - 4
	ti.SetValue(t.Title)

	ta := textarea.New()
	ta.Placeholder = "Description"
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetWidth(detailWidth - 4)
	ta.SetHeight(5)
	ta.SetValue(t.Description)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	statuses := task.Statuses()
	status := slices.Index(statuses, t.Column().Status())
	if status < 0 {
		status = 0
	}

	m := DetailModel{
		task:        t,
		keys:        DefaultDetailKeys(),
		title:       ti,
		description: ta,
		statuses:    statuses,
		status:      status,
		spinner:     s,
	}
	m.title.Focus()
	return m
}

// Init implements tea.Model.
func (m DetailModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m.updateFocused(msg)
}

func (m DetailModel) updateKey(msg tea.KeyMsg) (DetailModel, tea.Cmd) {
	if key.Matches(msg, m.keys.Cancel) {
		return m, func() tea.Msg { return msgs.CloseDetailMsg{} }
	}
	// Input is frozen while a request is in flight.
	if m.busy != "" {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Save):
		fields := m.Fields()
		return m, func() tea.Msg { return msgs.SaveDetailMsg{Fields: fields} }

	case key.Matches(msg, m.keys.Delete):
		return m, func() tea.Msg { return msgs.DeleteDetailMsg{} }

	case key.Matches(msg, m.keys.NextField):
		return m, m.setFocus((m.focus + 1) % numDetailFields)

	case key.Matches(msg, m.keys.PrevField):
		return m, m.setFocus((m.focus + numDetailFields - 1) % numDetailFields)
	}

	if m.focus == fieldStatus {
		switch {
		case key.Matches(msg, m.keys.PrevStatus):
			m.status = (m.status + len(m.statuses) - 1) % len(m.statuses)
		case key.Matches(msg, m.keys.NextStatus):
			m.status = (m.status + 1) % len(m.statuses)
		}
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m DetailModel) updateFocused(msg tea.Msg) (DetailModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
	case fieldDescription:
		m.description, cmd = m.description.Update(msg)
	}
	return m, cmd
}

func (m *DetailModel) setFocus(f detailField) tea.Cmd {
	m.focus = f
	m.title.Blur()
	m.description.Blur()
	switch f {
	case fieldTitle:
		return m.title.Focus()
	case fieldDescription:
		return m.description.Focus()
	}
	return nil
}

// View implements tea.Model.
func (m DetailModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Task #" + m.task.ID.String()))
	b.WriteString("\n")

	b.WriteString(m.label("Title", fieldTitle))
	b.WriteString("\n")
	b.WriteString(m.title.View())
	b.WriteString("\n\n")

	b.WriteString(m.label("Description", fieldDescription))
	b.WriteString("\n")
	b.WriteString(m.description.View())
	b.WriteString("\n\n")

	b.WriteString(m.label("Status", fieldStatus))
	b.WriteString("\n")
	b.WriteString(m.renderStatuses())
	b.WriteString("\n\n")

	switch {
	case m.busy != "":
		b.WriteString(m.spinner.View() + " " + styles.SubtleStyle.Render(m.busy+"…"))
	case m.errMsg != "":
		b.WriteString(styles.ErrorStyle.Render(m.errMsg))
	}
	b.WriteString("\n\n")

	k := m.keys
	b.WriteString(components.NewStatusBar().Render(detailWidth-6, components.HelpItems(k.Save, k.Delete, k.NextField, k.PrevStatus, k.Cancel)))

	box := styles.ModalStyle.Width(detailWidth).Render(b.String())
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m DetailModel) label(name string, f detailField) string {
	if m.focus == f {
		return styles.SelectedStyle.Render("› " + name)
	}
	return styles.SectionStyle.Render("  " + name)
}

func (m DetailModel) renderStatuses() string {
	parts := make([]string, len(m.statuses))
	for i, s := range m.statuses {
		if i == m.status {
			parts[i] = styles.SelectedStyle.Render("[" + s + "]")
		} else {
			parts[i] = styles.SubtleStyle.Render(" " + s + " ")
		}
	}
	return strings.Join(parts, " ")
}

// Fields returns the values currently entered.
func (m DetailModel) Fields() task.Fields {
	return task.Fields{
		Title:       m.title.Value(),
		Description: m.description.Value(),
		Status:      m.statuses[m.status],
	}
}

// Task returns the task the dialog was opened for.
func (m DetailModel) Task() task.Task {
	return m.task
}

// SetBusy shows the spinner with label, or hides it when label is empty.
func (m *DetailModel) SetBusy(label string) tea.Cmd {
	m.busy = label
	if label == "" {
		return nil
	}
	m.errMsg = ""
	return m.spinner.Tick
}

// Busy reports whether a request is in flight.
func (m DetailModel) Busy() bool {
	return m.busy != ""
}

// SetError shows an inline error.
func (m *DetailModel) SetError(msg string) {
	m.errMsg = msg
}

// Error returns the inline error.
func (m DetailModel) Error() string {
	return m.errMsg
}

// SetSize updates the model dimensions.
func (m *DetailModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}
