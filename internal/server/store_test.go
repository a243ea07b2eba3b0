package server

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/pablasso/quadro/internal/task"
)

func str(s string) *string { return &s }

func TestStore_CreateDefaults(t *testing.T) {
	s := NewStore("", nil)

	created, err := s.Create(task.Patch{Title: str("  write docs ")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "1" {
		t.Errorf("expected id 1, got %q", created.ID)
	}
	if created.Title != "write docs" {
		t.Errorf("expected trimmed title, got %q", created.Title)
	}
	if created.Status != task.StatusTodo {
		t.Errorf("expected default status, got %q", created.Status)
	}
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("expected matching timestamps, got %v %v", created.CreatedAt, created.UpdatedAt)
	}
}

func TestStore_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		in   task.Patch
	}{
		{name: "missing title", in: task.Patch{}},
		{name: "blank title", in: task.Patch{Title: str("   ")}},
		{name: "bad status", in: task.Patch{Title: str("x"), Status: str("Later")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore("", nil)
			_, err := s.Create(tt.in)
			if !errors.Is(err, task.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
			if len(s.List()) != 0 {
				t.Error("expected nothing stored")
			}
		})
	}
}

func TestStore_UpdateIsAllOrNothing(t *testing.T) {
	s := NewStore("", nil)
	created, _ := s.Create(task.Patch{Title: str("original")})

	_, err := s.Update(created.ID, task.Patch{Title: str("changed"), Status: str("nope")})
	if !errors.Is(err, task.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	got, _ := s.Get(created.ID)
	if got.Title != "original" {
		t.Errorf("invalid update must not apply any field, got %q", got.Title)
	}

	updated, err := s.Update(created.ID, task.Patch{Status: str(task.StatusDone)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != task.StatusDone || updated.Title != "original" {
		t.Errorf("unexpected update result %+v", updated)
	}
}

func TestStore_MissingIDs(t *testing.T) {
	s := NewStore("", nil)

	if _, err := s.Update("9", task.Patch{Title: str("x")}); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("expected not found from update, got %v", err)
	}
	if err := s.Delete("9"); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("expected not found from delete, got %v", err)
	}
	if _, ok := s.Get("9"); ok {
		t.Error("expected get to miss")
	}
}

func TestStore_ListOrder(t *testing.T) {
	s := NewStore("", nil)
	for i := 0; i < 11; i++ {
		s.Create(task.Patch{Title: str("t")})
	}

	list := s.List()
	if len(list) != 11 {
		t.Fatalf("expected 11 tasks, got %d", len(list))
	}
	for i, tk := range list {
		if want := task.ID(strconv.Itoa(i + 1)); tk.ID != want {
			t.Fatalf("position %d: expected id %s, got %s", i, want, tk.ID)
		}
	}
}

func TestStore_PersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "tasks.json")
	s := NewStore(path, nil)

	s.Create(task.Patch{Title: str("one")})
	second, _ := s.Create(task.Patch{Title: str("two"), Status: str(task.StatusDoing)})
	s.Create(task.Patch{Title: str("three")})
	s.Delete("3")

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected task file to exist: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("expected temp file to be renamed away, got %v", err)
	}

	reloaded := OpenStore(path, nil)
	got, ok := reloaded.Get(second.ID)
	if !ok || got.Title != "two" || got.Status != task.StatusDoing {
		t.Fatalf("expected task two to survive reload, got %+v (%v)", got, ok)
	}
	if len(reloaded.List()) != 2 {
		t.Errorf("expected 2 tasks after reload, got %d", len(reloaded.List()))
	}

	next, _ := reloaded.Create(task.Patch{Title: str("four")})
	if next.ID != "3" {
		t.Errorf("expected id counter restored from the highest id, got %q", next.ID)
	}
}

func TestStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, nil)
	if err := s.Load(); err == nil {
		t.Error("expected parse error")
	}

	opened := OpenStore(path, nil)
	if len(opened.List()) != 0 {
		t.Error("corrupt file must load as empty")
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent.json"), nil)
	if err := s.Load(); err != nil {
		t.Errorf("missing file should be empty state, got %v", err)
	}
}

func TestCompareIDs(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2", "10", -1},
		{"10", "2", 1},
		{"3", "3", 0},
		{"9", "abc", -1},
		{"abc", "9", 1},
		{"abc", "abd", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			got := compareIDs(tt.a, tt.b)
			if sign(got) != tt.want {
				t.Errorf("compareIDs(%q, %q) = %d, want sign %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
