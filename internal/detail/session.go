// Package detail manages the task that is open for editing.
//
// A Session moves through Closed → Open → Saving/Deleting → Closed. While
// open it holds a working copy of the task's fields that is never shared
// with the board; the board only changes once the server confirms a write.
package detail

import (
	"context"
	"errors"
	"fmt"

	"github.com/pablasso/quadro/internal/board"
	"github.com/pablasso/quadro/internal/task"
)

// State is the life-cycle state of a Session.
type State int

const (
	Closed State = iota
	Open
	Saving
	Deleting
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Saving:
		return "saving"
	case Deleting:
		return "deleting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrInvalidState is returned when an operation is not allowed in the
// session's current state.
var ErrInvalidState = errors.New("operation not allowed in current state")

// Remote is the part of the task API a session needs.
type Remote interface {
	Update(ctx context.Context, id task.ID, patch task.Patch) (task.Task, error)
	Remove(ctx context.Context, id task.ID) error
}

// Operation names used in results.
const (
	OpSave   = "save"
	OpDelete = "delete"
)

// Outcome is the result of a save or delete call.
type Outcome struct {
	// Gen identifies the session opening the call belongs to.
	Gen    uint64
	Result board.Result
}

// Effect is the remote call behind a save or delete.
type Effect func(ctx context.Context) Outcome

// Session tracks at most one open task. Like board.Store it must only be used
// from the event loop goroutine.
type Session struct {
	store  *board.Store
	remote Remote

	state   State
	task    task.Task
	working task.Fields
	err     error
	gen     uint64
}

// New creates a closed session.
func New(store *board.Store, remote Remote) *Session {
	return &Session{store: store, remote: remote}
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// IsOpen reports whether a task is selected, including while a save or
// delete is in flight.
func (s *Session) IsOpen() bool { return s.state != Closed }

// Busy reports whether a save or delete is in flight.
func (s *Session) Busy() bool { return s.state == Saving || s.state == Deleting }

// Task returns the task as it was when the session opened.
func (s *Session) Task() task.Task { return s.task }

// Working returns the working copy of the editable fields.
func (s *Session) Working() task.Fields { return s.working }

// Err returns the last error reported to the user, if any.
func (s *Session) Err() error { return s.err }

// Open selects t. It is only valid while closed.
func (s *Session) Open(t task.Task) error {
	if s.state != Closed {
		return fmt.Errorf("open: %w", ErrInvalidState)
	}
	s.gen++
	s.state = Open
	s.task = t
	s.working = task.FieldsOf(t)
	if s.working.Status == "" {
		s.working.Status = task.StatusTodo
	}
	s.err = nil
	return nil
}

// Edit replaces the working copy.
func (s *Session) Edit(f task.Fields) error {
	if s.state != Open {
		return fmt.Errorf("edit: %w", ErrInvalidState)
	}
	s.working = f
	return nil
}

// Save validates fields and returns the update call to run. An empty title
// is reported as a validation error and the session stays open.
func (s *Session) Save(f task.Fields) (Effect, error) {
	if s.state != Open {
		return nil, fmt.Errorf("save: %w", ErrInvalidState)
	}
	f = f.Normalize()
	s.working = f
	if err := f.Validate(); err != nil {
		s.err = err
		return nil, err
	}

	s.err = nil
	s.state = Saving
	id, gen, patch := s.task.ID, s.gen, f.Patch()
	seq := s.store.Begin(id)
	remote := s.remote

	return func(ctx context.Context) Outcome {
		t, err := remote.Update(ctx, id, patch)
		return Outcome{Gen: gen, Result: board.Result{Op: OpSave, TaskID: id, Seq: seq, Task: t, Err: err}}
	}, nil
}

// Delete returns the remove call to run.
func (s *Session) Delete() (Effect, error) {
	if s.state != Open {
		return nil, fmt.Errorf("delete: %w", ErrInvalidState)
	}

	s.err = nil
	s.state = Deleting
	id, gen := s.task.ID, s.gen
	seq := s.store.Begin(id)
	remote := s.remote

	return func(ctx context.Context) Outcome {
		err := remote.Remove(ctx, id)
		return Outcome{Gen: gen, Result: board.Result{Op: OpDelete, TaskID: id, Seq: seq, Err: err, Removed: true}}
	}, nil
}

// Cancel closes the session and drops the working copy. A save or delete
// still in flight is not aborted; its result updates the board but no longer
// affects this session.
func (s *Session) Cancel() {
	s.state = Closed
	s.task = task.Task{}
	s.working = task.Fields{}
	s.err = nil
}

// Finish applies the outcome of a save or delete. Successful writes reach
// the board through the server's record. It returns the error to show, or
// nil on success or when the outcome belongs to an earlier opening.
func (s *Session) Finish(o Outcome) error {
	s.store.Reconcile(o.Result)

	current := o.Gen == s.gen && s.Busy()
	if !current {
		return nil
	}

	if o.Result.Err != nil {
		s.state = Open
		s.err = fmt.Errorf("failed to %s task: %w", o.Result.Op, o.Result.Err)
		return s.err
	}

	s.Cancel()
	return nil
}
