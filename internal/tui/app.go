// Package tui is the interactive board. All board state changes happen in
// Update; remote calls run as commands and report back as messages.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/pablasso/quadro/internal/board"
	"github.com/pablasso/quadro/internal/detail"
	"github.com/pablasso/quadro/internal/tui/msgs"
	"github.com/pablasso/quadro/internal/tui/styles"
	"github.com/pablasso/quadro/internal/tui/views"
)

// Minimum terminal dimensions for the board to render.
const (
	MinTerminalWidth  = 60
	MinTerminalHeight = 15
)

// Remote is the task API the board talks to.
type Remote interface {
	board.Lister
	board.TaskCreator
	board.TaskUpdater
	detail.Remote
}

// Model is the main Bubble Tea model that orchestrates the board and the
// detail dialog.
type Model struct {
	ctx     context.Context
	remote  Remote
	store   *board.Store
	interp  *board.Interpreter
	session *detail.Session
	log     log.FieldLogger

	board      views.BoardModel
	detail     views.DetailModel
	showDetail bool

	width  int
	height int
}

// Run starts the TUI application.
func Run(opts Options) error {
	m, err := NewModel(opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// NewModel builds the model. Options.Remote is required.
func NewModel(opts Options) (Model, error) {
	if opts.Remote == nil {
		return Model{}, errors.New("tui: no task API configured")
	}
	logger := opts.Logger
	if logger == nil {
		silent := log.New()
		silent.SetOutput(io.Discard)
		logger = silent
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	store := board.NewStore(board.WithStoreLogger(logger))
	bm := views.NewBoardModel()
	bm.SetLoading(true)
	return Model{
		ctx:     ctx,
		remote:  opts.Remote,
		store:   store,
		interp:  board.NewInterpreter(store, opts.Remote),
		session: detail.New(store, opts.Remote),
		log:     logger,
		board:   bm,
	}, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.board.SetSize(msg.Width, msg.Height)
		m.detail.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.showDetail {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.board, cmd = m.board.Update(msg)
		return m, cmd

	case msgs.ReloadMsg:
		m.board.SetLoading(true)
		return m, m.loadCmd()

	case msgs.LoadedMsg:
		m.board.SetLoading(false)
		if err := m.store.ApplyLoaded(msg.Loaded); err != nil {
			m.board.SetError(err.Error())
		}
		m.sync()
		return m, nil

	case msgs.DragMsg:
		return m.handleDrag(msg.Drag)

	case msgs.ResultMsg:
		m.store.Reconcile(msg.Result)
		if msg.Result.Err != nil {
			m.log.WithError(msg.Result.Err).WithField("task_id", msg.Result.TaskID.String()).Warn("failed to persist status")
			m.board.SetError(fmt.Sprintf("failed to persist status: %v", msg.Result.Err))
		}
		m.sync()
		return m, nil

	case msgs.CreateTaskMsg:
		create, err := board.Create(m.remote, msg.Column, msg.Title, "")
		if err != nil {
			m.board.SetError(err.Error())
			return m, nil
		}
		ctx := m.ctx
		return m, func() tea.Msg { return msgs.CreatedMsg{Created: create(ctx)} }

	case msgs.CreatedMsg:
		if err := m.store.ApplyCreated(msg.Created); err != nil {
			m.board.SetError(err.Error())
		} else {
			m.board.SetMessage("Task created")
		}
		m.sync()
		return m, nil

	case msgs.OpenDetailMsg:
		return m.openDetail(msg)

	case msgs.SaveDetailMsg:
		eff, err := m.session.Save(msg.Fields)
		if err != nil {
			m.detail.SetError(err.Error())
			return m, nil
		}
		return m, tea.Batch(m.detail.SetBusy("Saving"), m.outcomeCmd(eff))

	case msgs.DeleteDetailMsg:
		eff, err := m.session.Delete()
		if err != nil {
			m.detail.SetError(err.Error())
			return m, nil
		}
		return m, tea.Batch(m.detail.SetBusy("Deleting"), m.outcomeCmd(eff))

	case msgs.CloseDetailMsg:
		m.session.Cancel()
		m.showDetail = false
		return m, nil

	case msgs.OutcomeMsg:
		return m.handleOutcome(msg.Outcome)
	}

	// Blink and spinner ticks go to whichever view is active.
	var cmd tea.Cmd
	if m.showDetail {
		m.detail, cmd = m.detail.Update(msg)
	} else {
		m.board, cmd = m.board.Update(msg)
	}
	return m, cmd
}

func (m Model) handleDrag(d board.DragResult) (tea.Model, tea.Cmd) {
	eff := m.interp.Interpret(d)
	m.sync()
	if eff == nil {
		return m, nil
	}
	ctx := m.ctx
	return m, func() tea.Msg { return msgs.ResultMsg{Result: eff(ctx)} }
}

func (m Model) openDetail(msg msgs.OpenDetailMsg) (tea.Model, tea.Cmd) {
	// Open the current copy, not the one captured when the key was pressed.
	t, _, _, ok := m.store.Find(msg.Task.ID)
	if !ok {
		return m, nil
	}
	if err := m.session.Open(t); err != nil {
		m.board.SetError(err.Error())
		return m, nil
	}
	m.detail = views.NewDetailModel(t)
	m.detail.SetSize(m.width, m.height)
	m.showDetail = true
	return m, m.detail.Init()
}

func (m Model) handleOutcome(o detail.Outcome) (tea.Model, tea.Cmd) {
	wasOpen := m.showDetail
	err := m.session.Finish(o)
	m.sync()

	if !wasOpen {
		return m, nil
	}
	switch {
	case m.session.State() == detail.Closed:
		m.showDetail = false
		if o.Result.Removed {
			m.board.SetMessage("Task deleted")
		} else {
			m.board.SetMessage("Task saved")
		}
	case m.session.State() == detail.Open && m.detail.Busy():
		m.detail.SetBusy("")
		if err != nil {
			m.detail.SetError(err.Error())
		}
	}
	return m, nil
}

func (m *Model) sync() {
	m.board.SetGrouping(m.store.Grouping())
}

func (m Model) loadCmd() tea.Cmd {
	load := board.Load(m.remote)
	ctx := m.ctx
	return func() tea.Msg { return msgs.LoadedMsg{Loaded: load(ctx)} }
}

func (m Model) outcomeCmd(eff detail.Effect) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg { return msgs.OutcomeMsg{Outcome: eff(ctx)} }
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.width < MinTerminalWidth || m.height < MinTerminalHeight {
		return m.renderTerminalTooSmall()
	}
	if m.showDetail {
		return m.detail.View()
	}
	return m.board.View()
}

func (m Model) renderTerminalTooSmall() string {
	msg := styles.ErrorStyle.Render("Terminal too small") + "\n\n" +
		styles.SubtleStyle.Render(fmt.Sprintf("Minimum: %dx%d", MinTerminalWidth, MinTerminalHeight)) + "\n" +
		styles.SubtleStyle.Render(fmt.Sprintf("Current: %dx%d", m.width, m.height))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}

// Board returns the board view.
func (m Model) Board() views.BoardModel {
	return m.board
}

// Detail returns the detail dialog and whether it is shown.
func (m Model) Detail() (views.DetailModel, bool) {
	return m.detail, m.showDetail
}

// Store returns the board state.
func (m Model) Store() *board.Store {
	return m.store
}

// Session returns the detail session.
func (m Model) Session() *detail.Session {
	return m.session
}
