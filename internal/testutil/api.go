// Package testutil provides testing utilities for the quadro project.
package testutil

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pablasso/quadro/internal/server"
	"github.com/pablasso/quadro/internal/task"
)

// NewTaskAPI starts the real task API over an in-memory store and registers
// its shutdown with t.
func NewTaskAPI(t *testing.T) (*httptest.Server, *server.Store) {
	t.Helper()
	store := server.NewStore("", nil)
	ts := httptest.NewServer(server.New(store, nil).Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

// Seed creates a task directly in store.
func Seed(t *testing.T, store *server.Store, title, status string) task.Task {
	t.Helper()
	created, err := store.Create(task.Patch{Title: &title, Status: &status})
	if err != nil {
		t.Fatalf("seed %q: %v", title, err)
	}
	return created
}

// SetupConfigHome points XDG_CONFIG_HOME at a fresh temp directory and clears
// the quadro environment variables, so a developer's own config never leaks
// into a test. Returns the resolved directory.
func SetupConfigHome(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	// Resolve symlinks for macOS (/var -> /private/var)
	if resolved, err := filepath.EvalSymlinks(dir); err != nil {
		t.Logf("warning: could not resolve symlinks for temp dir: %v", err)
	} else {
		dir = resolved
	}

	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{"QUADRO_API_URL", "QUADRO_LOG_LEVEL", "QUADRO_LOG_FILE", "PORT", "TASKS_FILE"} {
		t.Setenv(k, "")
	}
	return dir
}

// WriteFile writes content to name inside dir and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
