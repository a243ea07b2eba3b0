package board

import (
	"context"
	"fmt"

	"github.com/pablasso/quadro/internal/task"
)

// Lister fetches the full task set.
type Lister interface {
	List(ctx context.Context) ([]task.Task, error)
}

// Loaded is the outcome of a board load.
type Loaded struct {
	Tasks []task.Task
	Err   error
}

// Load returns the remote call that fetches every task.
func Load(remote Lister) func(ctx context.Context) Loaded {
	return func(ctx context.Context) Loaded {
		tasks, err := remote.List(ctx)
		return Loaded{Tasks: tasks, Err: err}
	}
}

// ApplyLoaded replaces the board with a successful listing. On failure the
// board is left as it was.
func (s *Store) ApplyLoaded(l Loaded) error {
	if l.Err != nil {
		s.log.WithError(l.Err).Warn("failed to load tasks")
		return fmt.Errorf("failed to load tasks: %w", l.Err)
	}
	s.ReplaceAll(l.Tasks)
	return nil
}
