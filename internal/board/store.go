package board

import (
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/pablasso/quadro/internal/task"
)

// Store owns the board's grouping and is the only place it changes.
//
// A Store is not safe for concurrent use. All calls must come from the one
// goroutine that runs the event loop; remote calls run elsewhere and hand
// their Result back to Reconcile on that goroutine.
type Store struct {
	grouping Grouping
	version  uint64

	// latest write sequence issued per task id
	seq     map[string]uint64
	nextSeq uint64

	log log.FieldLogger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger used for reconcile decisions.
func WithStoreLogger(l log.FieldLogger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	silent := log.New()
	silent.SetOutput(io.Discard)

	s := &Store{
		seq: make(map[string]uint64),
		log: silent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Grouping returns the current grouping.
func (s *Store) Grouping() Grouping {
	return s.grouping
}

// Version increases every time the grouping changes.
func (s *Store) Version() uint64 {
	return s.version
}

// Find locates a task by id.
func (s *Store) Find(id task.ID) (task.Task, task.Column, int, bool) {
	return s.grouping.Find(id)
}

func (s *Store) commit(g Grouping, changed bool) Grouping {
	if changed {
		s.grouping = g
		s.version++
	}
	return s.grouping
}

// ReplaceAll swaps the whole board for a fresh server listing.
func (s *Store) ReplaceAll(tasks []task.Task) Grouping {
	return s.commit(Group(tasks), true)
}

// ReorderWithinColumn moves a task to another position in the same column.
func (s *Store) ReorderWithinColumn(c task.Column, from, to int) Grouping {
	return s.commit(s.grouping.Reorder(c, from, to))
}

// MoveAcrossColumns moves a task to another column and sets its status.
func (s *Store) MoveAcrossColumns(from, to task.Column, fromIndex, toIndex int) Grouping {
	return s.commit(s.grouping.Move(from, to, fromIndex, toIndex))
}

// InsertIntoColumn appends a task to column c.
func (s *Store) InsertIntoColumn(c task.Column, t task.Task) Grouping {
	return s.commit(s.grouping.Insert(c, t), !t.ID.IsZero() && c.Valid())
}

// ApplyUpdate merges a partial update into the task with the given id.
func (s *Store) ApplyUpdate(id task.ID, patch task.Patch) Grouping {
	return s.commit(s.grouping.Update(id, patch))
}

// Merge replaces a task with the server's authoritative record.
func (s *Store) Merge(t task.Task) Grouping {
	return s.commit(s.grouping.Merge(t))
}

// RemoveTask drops a task. Removing an absent id is a no-op.
func (s *Store) RemoveTask(id task.ID) Grouping {
	return s.commit(s.grouping.Remove(id))
}

// Begin records that a remote write for id is about to be issued and returns
// its sequence number. Only the response carrying the latest sequence for an
// id is reconciled.
func (s *Store) Begin(id task.ID) uint64 {
	s.nextSeq++
	s.seq[id.String()] = s.nextSeq
	return s.nextSeq
}

// Latest reports whether seq is the newest write issued for id.
func (s *Store) Latest(id task.ID, seq uint64) bool {
	return s.seq[id.String()] == seq
}

// Result is the outcome of a remote write started with Begin.
type Result struct {
	Op     string
	TaskID task.ID
	Seq    uint64
	Task   task.Task
	Err    error

	// Removed marks a delete. A successful delete always removes the task,
	// even when a newer write for it is still pending.
	Removed bool
}

// Reconcile folds a remote write result into the board. Failed writes are
// logged and leave local state alone. Stale results, superseded by a later
// write to the same task, are dropped. It reports whether the grouping
// changed.
func (s *Store) Reconcile(r Result) bool {
	entry := s.log.WithFields(log.Fields{
		"op":      r.Op,
		"task_id": r.TaskID.String(),
		"seq":     r.Seq,
	})

	if r.Removed && r.Err == nil {
		delete(s.seq, r.TaskID.String())
		before := s.version
		s.RemoveTask(r.TaskID)
		return s.version != before
	}

	if !s.Latest(r.TaskID, r.Seq) {
		entry.Debug("dropping stale response")
		return false
	}
	delete(s.seq, r.TaskID.String())

	if r.Err != nil {
		entry.WithError(r.Err).Warn("remote write failed, keeping local state")
		return false
	}

	before := s.version
	s.Merge(r.Task)
	return s.version != before
}
