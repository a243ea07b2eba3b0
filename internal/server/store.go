package server

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/pablasso/quadro/internal/task"
)

// Store keeps tasks in memory and mirrors them to a JSON file.
// It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	tasks  map[string]task.Task
	nextID int
	path   string
	log    log.FieldLogger
	now    func() time.Time
}

// NewStore creates an empty store persisted at path. An empty path keeps
// everything in memory.
func NewStore(path string, logger log.FieldLogger) *Store {
	if logger == nil {
		silent := log.New()
		silent.SetOutput(io.Discard)
		logger = silent
	}
	return &Store{
		tasks: make(map[string]task.Task),
		path:  path,
		log:   logger,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// OpenStore creates a store and loads the file at path. A missing file is an
// empty store; an unreadable or corrupt file is logged and ignored.
func OpenStore(path string, logger log.FieldLogger) *Store {
	s := NewStore(path, logger)
	if err := s.Load(); err != nil {
		s.log.WithError(err).WithField("file", path).Warn("ignoring task file")
	}
	return s
}

// Load replaces the store contents with the tasks in the backing file and
// restores the id counter from the highest numeric id.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read task file: %w", err)
	}

	var list []*task.Task
	if err := sonic.ConfigStd.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to parse task file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make(map[string]task.Task, len(list))
	maxID := 0
	for _, t := range list {
		if t == nil || t.ID.IsZero() {
			continue
		}
		id := t.ID.String()
		t.ID = task.ID(id)
		s.tasks[id] = *t
		if n, err := strconv.Atoi(id); err == nil && n > maxID {
			maxID = n
		}
	}
	s.nextID = maxID
	return nil
}

// List returns every task ordered by id.
func (s *Store) List() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Get returns the task with the given id.
func (s *Store) Get(id task.ID) (task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id.String()]
	return t, ok
}

// Create validates the input and stores a new task with the next id.
// A missing status defaults to the first column.
func (s *Store) Create(in task.Patch) (task.Task, error) {
	var title string
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
	}
	if err := task.ValidateTitle(title); err != nil {
		return task.Task{}, err
	}
	status := task.StatusTodo
	if in.Status != nil && *in.Status != "" {
		if err := task.ValidateStatus(*in.Status); err != nil {
			return task.Task{}, err
		}
		status = *in.Status
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.now()
	t := task.Task{
		ID:        task.ID(strconv.Itoa(s.nextID)),
		Title:     title,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	s.tasks[t.ID.String()] = t
	s.persist()
	return t, nil
}

// Update applies a partial update. Nothing changes unless every given
// field is valid.
func (s *Store) Update(id task.ID, in task.Patch) (task.Task, error) {
	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		if err := task.ValidateTitle(trimmed); err != nil {
			return task.Task{}, err
		}
		in.Title = &trimmed
	}
	if in.Status != nil {
		if err := task.ValidateStatus(*in.Status); err != nil {
			return task.Task{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[id.String()]
	if !ok {
		return task.Task{}, &task.NotFoundError{ID: id}
	}
	updated := in.Apply(existing)
	updated.UpdatedAt = s.now()
	s.tasks[id.String()] = updated
	s.persist()
	return updated, nil
}

// Delete removes the task with the given id.
func (s *Store) Delete(id task.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id.String()]; !ok {
		return &task.NotFoundError{ID: id}
	}
	delete(s.tasks, id.String())
	s.persist()
	return nil
}

// snapshot must be called with s.mu held.
func (s *Store) snapshot() []task.Task {
	out := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b task.Task) int {
		return compareIDs(a.ID.String(), b.ID.String())
	})
	return out
}

// persist must be called with s.mu held. Write failures keep the in-memory
// state and are logged.
func (s *Store) persist() {
	if s.path == "" {
		return
	}
	data, err := sonic.ConfigStd.MarshalIndent(s.snapshot(), "", "  ")
	if err != nil {
		s.log.WithError(err).Error("failed to encode tasks")
		return
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			s.log.WithError(err).Error("failed to create data directory")
			return
		}
	}
	if err := writeFileAtomic(s.path, data, 0644); err != nil {
		s.log.WithError(err).WithField("file", s.path).Error("failed to save tasks")
	}
}

// compareIDs orders numeric ids numerically, before any non-numeric id.
func compareIDs(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// writeFileAtomic writes to a temp file, fsyncs it and renames it over path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
