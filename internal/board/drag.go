package board

import (
	"context"

	"github.com/pablasso/quadro/internal/task"
)

// Location is a position on the board.
type Location struct {
	Column task.Column
	Index  int
}

// DragResult describes a finished drag gesture. A nil Destination means the
// gesture was cancelled.
type DragResult struct {
	TaskID      task.ID
	Source      Location
	Destination *Location
}

// TaskUpdater persists partial updates.
type TaskUpdater interface {
	Update(ctx context.Context, id task.ID, patch task.Patch) (task.Task, error)
}

// Effect is a remote call to run off the event loop. Its Result goes back to
// Store.Reconcile.
type Effect func(ctx context.Context) Result

// OpMoveStatus names the status write issued after a cross-column drag.
const OpMoveStatus = "move"

// Interpreter turns drag results into store mutations.
type Interpreter struct {
	store  *Store
	remote TaskUpdater
}

// NewInterpreter creates an Interpreter that mutates store and persists
// status changes through remote.
func NewInterpreter(store *Store, remote TaskUpdater) *Interpreter {
	return &Interpreter{store: store, remote: remote}
}

// Interpret applies d to the store right away and returns the remote call
// that should follow, or nil when nothing needs persisting. Order within a
// column is local only; only column changes reach the server.
func (i *Interpreter) Interpret(d DragResult) Effect {
	if d.Destination == nil {
		return nil
	}
	src, dst := d.Source, *d.Destination
	if src == dst {
		return nil
	}

	g := i.store.Grouping()
	moving, ok := g.At(src.Column, src.Index)
	if !ok {
		return nil
	}
	// The card under the source index changed since the gesture started.
	if !d.TaskID.IsZero() && !moving.ID.Equal(d.TaskID) {
		return nil
	}

	if src.Column == dst.Column {
		i.store.ReorderWithinColumn(src.Column, src.Index, dst.Index)
		return nil
	}

	before := i.store.Version()
	i.store.MoveAcrossColumns(src.Column, dst.Column, src.Index, dst.Index)
	if i.store.Version() == before || i.remote == nil {
		return nil
	}

	id := moving.ID
	patch := task.StatusPatch(dst.Column.Status())
	seq := i.store.Begin(id)
	remote := i.remote

	return func(ctx context.Context) Result {
		t, err := remote.Update(ctx, id, patch)
		return Result{Op: OpMoveStatus, TaskID: id, Seq: seq, Task: t, Err: err}
	}
}
