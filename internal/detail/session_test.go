package detail

import (
	"context"
	"errors"
	"testing"

	"github.com/pablasso/quadro/internal/board"
	"github.com/pablasso/quadro/internal/task"
)

type fakeRemote struct {
	updates   []task.Patch
	removes   []task.ID
	updateErr error
	removeErr error
	reply     func(id task.ID, patch task.Patch) task.Task
}

func (f *fakeRemote) Update(ctx context.Context, id task.ID, patch task.Patch) (task.Task, error) {
	f.updates = append(f.updates, patch)
	if f.updateErr != nil {
		return task.Task{}, f.updateErr
	}
	if f.reply != nil {
		return f.reply(id, patch), nil
	}
	return patch.Apply(task.Task{ID: id}), nil
}

func (f *fakeRemote) Remove(ctx context.Context, id task.ID) error {
	f.removes = append(f.removes, id)
	return f.removeErr
}

func setup(t *testing.T) (*board.Store, *fakeRemote, *Session, task.Task) {
	t.Helper()
	store := board.NewStore()
	tk := task.Task{ID: "1", Title: "draft", Description: "notes", Status: task.StatusTodo}
	store.ReplaceAll([]task.Task{tk, {ID: "2", Title: "other", Status: task.StatusTodo}})
	remote := &fakeRemote{}
	return store, remote, New(store, remote), tk
}

func TestSession_Open(t *testing.T) {
	_, _, s, tk := setup(t)

	if err := s.Open(tk); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State() != Open {
		t.Errorf("expected open, got %v", s.State())
	}
	if s.Working() != task.FieldsOf(tk) {
		t.Errorf("expected working copy %+v, got %+v", task.FieldsOf(tk), s.Working())
	}

	if err := s.Open(tk); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState opening twice, got %v", err)
	}
}

func TestSession_WorkingCopyIsDetached(t *testing.T) {
	store, _, s, tk := setup(t)
	s.Open(tk)

	if err := s.Edit(task.Fields{Title: "typing...", Status: task.StatusDone}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, c, _, _ := store.Find("1")
	if stored.Title != "draft" || c != task.Todo {
		t.Errorf("editing must not touch the board, got %+v in %v", stored, c)
	}
}

func TestSession_SaveEmptyTitle(t *testing.T) {
	_, remote, s, tk := setup(t)
	s.Open(tk)

	eff, err := s.Save(task.Fields{Title: "   ", Status: task.StatusTodo})

	if eff != nil {
		t.Error("expected no effect")
	}
	if !errors.Is(err, task.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if s.State() != Open {
		t.Errorf("expected session to stay open, got %v", s.State())
	}
	if !errors.Is(s.Err(), task.ErrValidation) {
		t.Errorf("expected validation error to be surfaced, got %v", s.Err())
	}
	if len(remote.updates) != 0 {
		t.Error("gateway must not be called")
	}
}

func TestSession_SaveMergesServerRecord(t *testing.T) {
	store, remote, s, tk := setup(t)
	remote.reply = func(id task.ID, patch task.Patch) task.Task {
		return task.Task{ID: id, Title: "Server Title", Description: "server", Status: task.StatusDoing}
	}
	s.Open(tk)

	eff, err := s.Save(task.Fields{Title: "  local title ", Description: " local ", Status: task.StatusDoing})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State() != Saving {
		t.Errorf("expected saving, got %v", s.State())
	}

	out := eff(context.Background())
	if err := s.Finish(out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.State() != Closed {
		t.Errorf("expected closed, got %v", s.State())
	}
	if len(remote.updates) != 1 {
		t.Fatalf("expected one update, got %d", len(remote.updates))
	}
	sent := remote.updates[0]
	if *sent.Title != "local title" || *sent.Description != "local" {
		t.Errorf("expected trimmed fields to be sent, got %q %q", *sent.Title, *sent.Description)
	}

	stored, c, _, _ := store.Find("1")
	if stored.Title != "Server Title" || stored.Description != "server" {
		t.Errorf("expected server record on the board, got %+v", stored)
	}
	if c != task.Doing {
		t.Errorf("expected task to move to doing, got %v", c)
	}
}

func TestSession_SaveFailureStaysOpen(t *testing.T) {
	store, remote, s, tk := setup(t)
	remote.updateErr = &task.NetworkError{Op: "update task", Err: errors.New("timeout")}
	s.Open(tk)

	eff, _ := s.Save(task.Fields{Title: "new", Status: task.StatusDone})
	err := s.Finish(eff(context.Background()))

	if !errors.Is(err, task.ErrNetwork) {
		t.Errorf("expected network error, got %v", err)
	}
	if s.State() != Open {
		t.Errorf("expected open, got %v", s.State())
	}
	if s.Working().Title != "new" {
		t.Errorf("expected working copy to survive, got %+v", s.Working())
	}
	if stored, c, _, _ := store.Find("1"); stored.Title != "draft" || c != task.Todo {
		t.Errorf("failed save must not touch the board, got %+v in %v", stored, c)
	}
}

func TestSession_Delete(t *testing.T) {
	store, remote, s, tk := setup(t)
	s.Open(tk)

	eff, err := s.Delete()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State() != Deleting {
		t.Errorf("expected deleting, got %v", s.State())
	}
	if _, _, _, ok := store.Find("1"); !ok {
		t.Error("task must stay on the board until the server confirms")
	}

	if err := s.Finish(eff(context.Background())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State() != Closed {
		t.Errorf("expected closed, got %v", s.State())
	}
	if _, _, _, ok := store.Find("1"); ok {
		t.Error("expected task to be removed")
	}
	if len(remote.removes) != 1 || remote.removes[0] != "1" {
		t.Errorf("unexpected removes %v", remote.removes)
	}
}

func TestSession_DeleteFailure(t *testing.T) {
	store, remote, s, tk := setup(t)
	remote.removeErr = &task.NotFoundError{ID: "1"}
	s.Open(tk)

	eff, _ := s.Delete()
	err := s.Finish(eff(context.Background()))

	if !errors.Is(err, task.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if s.State() != Open {
		t.Errorf("expected open, got %v", s.State())
	}
	if _, _, _, ok := store.Find("1"); !ok {
		t.Error("failed delete must keep the task")
	}
}

func TestSession_Cancel(t *testing.T) {
	store, remote, s, tk := setup(t)
	s.Open(tk)
	s.Edit(task.Fields{Title: "discard me", Status: task.StatusDone})
	v := store.Version()

	s.Cancel()

	if s.State() != Closed {
		t.Errorf("expected closed, got %v", s.State())
	}
	if store.Version() != v || len(remote.updates) != 0 || len(remote.removes) != 0 {
		t.Error("cancel must not mutate or call the gateway")
	}
	if s.Working() != (task.Fields{}) {
		t.Error("expected working copy to be dropped")
	}
}

func TestSession_LateSaveAfterCancel(t *testing.T) {
	store, _, s, tk := setup(t)
	s.Open(tk)
	eff, _ := s.Save(task.Fields{Title: "saved late", Status: task.StatusTodo})

	s.Cancel()
	other, _, _, _ := store.Find("2")
	if err := s.Open(other); err != nil {
		t.Fatalf("unexpected error reopening: %v", err)
	}

	if err := s.Finish(eff(context.Background())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.State() != Open || s.Task().ID != "2" {
		t.Errorf("late result must not affect the new session, state %v task %s", s.State(), s.Task().ID)
	}
	if stored, _, _, _ := store.Find("1"); stored.Title != "saved late" {
		t.Errorf("expected accepted save to reach the board, got %q", stored.Title)
	}
}

func TestSession_OperationsRequireOpen(t *testing.T) {
	_, _, s, _ := setup(t)

	if _, err := s.Save(task.Fields{Title: "x"}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState from Save, got %v", err)
	}
	if _, err := s.Delete(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState from Delete, got %v", err)
	}
	if err := s.Edit(task.Fields{}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState from Edit, got %v", err)
	}
}
