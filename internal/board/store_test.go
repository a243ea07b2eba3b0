package board

import (
	"errors"
	"testing"

	"github.com/pablasso/quadro/internal/task"
)

func TestStore_ReplaceAllScenario(t *testing.T) {
	s := NewStore()

	g := s.ReplaceAll([]task.Task{{ID: "1", Status: task.StatusTodo}, {ID: "2", Status: task.StatusDoing}})

	assertLane(t, g, task.Todo, "1")
	assertLane(t, g, task.Doing, "2")
	assertLane(t, g, task.Done)
}

func TestStore_VersionTracksChanges(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]task.Task{mk("1", task.StatusTodo), mk("2", task.StatusTodo)})
	v := s.Version()

	s.ReorderWithinColumn(task.Todo, 0, 0)
	if s.Version() != v {
		t.Error("no-op reorder must not bump version")
	}

	s.RemoveTask("missing")
	if s.Version() != v {
		t.Error("removing an absent id must not bump version")
	}

	s.ReorderWithinColumn(task.Todo, 0, 1)
	if s.Version() != v+1 {
		t.Errorf("expected version %d, got %d", v+1, s.Version())
	}
}

func TestStore_ReturnedGroupingIsSnapshot(t *testing.T) {
	s := NewStore()
	before := s.ReplaceAll([]task.Task{mk("1", task.StatusTodo)})

	after := s.MoveAcrossColumns(task.Todo, task.Done, 0, 0)

	assertLane(t, before, task.Todo, "1")
	assertLane(t, after, task.Done, "1")
	assertLane(t, s.Grouping(), task.Done, "1")
}

func TestStore_ApplyUpdateMovesToExactlyOneColumn(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]task.Task{mk("1", task.StatusTodo), mk("2", task.StatusDoing)})

	g := s.ApplyUpdate("1", task.StatusPatch(task.StatusDoing))

	count := 0
	for _, c := range task.Columns() {
		for _, id := range g.IDs(c) {
			if id == "1" {
				count++
				if c != task.Doing {
					t.Errorf("task 1 found in %v", c)
				}
			}
		}
	}
	if count != 1 {
		t.Errorf("task 1 appears %d times, want 1", count)
	}
	assertLane(t, g, task.Doing, "2", "1")
}

func TestStore_RemoveTaskIdempotent(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]task.Task{mk("1", task.StatusDone)})

	s.RemoveTask("1")
	g := s.RemoveTask("1")

	if g.Len() != 0 {
		t.Errorf("expected empty board, got %d tasks", g.Len())
	}
}

func TestStore_InsertIntoColumn(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]task.Task{mk("1", task.StatusDoing)})

	g := s.InsertIntoColumn(task.Doing, mk("2", task.StatusDoing))

	assertLane(t, g, task.Doing, "1", "2")
}

func TestStore_ReconcileMergesAuthoritativeRecord(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]task.Task{mk("1", task.StatusTodo)})
	seq := s.Begin("1")

	changed := s.Reconcile(Result{TaskID: "1", Seq: seq, Task: task.Task{ID: "1", Title: "from server", Status: task.StatusDone}})

	if !changed {
		t.Fatal("expected reconcile to change the grouping")
	}
	tk, c, _, _ := s.Find("1")
	if c != task.Done || tk.Title != "from server" {
		t.Errorf("unexpected task after reconcile: %+v in %v", tk, c)
	}
}

func TestStore_ReconcileDropsStaleResponses(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]task.Task{mk("1", task.StatusTodo)})

	first := s.Begin("1")
	second := s.Begin("1")

	// The later write answers first.
	if !s.Reconcile(Result{TaskID: "1", Seq: second, Task: task.Task{ID: "1", Title: "t", Status: task.StatusDone}}) {
		t.Fatal("expected newest response to reconcile")
	}
	if s.Reconcile(Result{TaskID: "1", Seq: first, Task: task.Task{ID: "1", Title: "t", Status: task.StatusDoing}}) {
		t.Error("expected stale response to be dropped")
	}

	if _, c, _, _ := s.Find("1"); c != task.Done {
		t.Errorf("expected task to stay in done, got %v", c)
	}
}

func TestStore_ReconcileFailureKeepsLocalState(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]task.Task{mk("1", task.StatusTodo)})
	s.MoveAcrossColumns(task.Todo, task.Doing, 0, 0)
	seq := s.Begin("1")
	v := s.Version()

	changed := s.Reconcile(Result{TaskID: "1", Seq: seq, Err: &task.NetworkError{Op: "update task", Err: errors.New("boom")}})

	if changed || s.Version() != v {
		t.Error("failed write must not change local state")
	}
	if _, c, _, _ := s.Find("1"); c != task.Doing {
		t.Errorf("expected optimistic move to stay, got %v", c)
	}
}

func TestStore_ReconcileAfterRemoveDoesNotResurrect(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]task.Task{mk("1", task.StatusTodo)})
	seq := s.Begin("1")
	s.RemoveTask("1")

	s.Reconcile(Result{TaskID: "1", Seq: seq, Task: mk("1", task.StatusDone)})

	if s.Grouping().Len() != 0 {
		t.Error("late response must not bring back a removed task")
	}
}

func TestStore_ApplyLoaded(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]task.Task{mk("1", task.StatusTodo)})

	err := s.ApplyLoaded(Loaded{Err: &task.NetworkError{Op: "list tasks"}})
	if !errors.Is(err, task.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	assertLane(t, s.Grouping(), task.Todo, "1")

	if err := s.ApplyLoaded(Loaded{Tasks: []task.Task{mk("2", task.StatusDone)}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertLane(t, s.Grouping(), task.Todo)
	assertLane(t, s.Grouping(), task.Done, "2")
}
