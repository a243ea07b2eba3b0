package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/pablasso/quadro/internal/task"
)

// TaskCreator creates tasks on the server.
type TaskCreator interface {
	Create(ctx context.Context, title, description, status string) (task.Task, error)
}

// Created is the outcome of a create call.
type Created struct {
	Column task.Column
	Task   task.Task
	Err    error
}

// Create validates the title and returns the remote call that creates a task
// in column c. Nothing touches the board until ApplyCreated sees a success.
func Create(remote TaskCreator, c task.Column, title, description string) (func(ctx context.Context) Created, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if err := task.ValidateTitle(title); err != nil {
		return nil, err
	}
	if !c.Valid() {
		return nil, &task.ValidationError{Field: "column", Message: fmt.Sprintf("invalid column %v", c)}
	}
	status := c.Status()

	return func(ctx context.Context) Created {
		t, err := remote.Create(ctx, title, description, status)
		return Created{Column: c, Task: t, Err: err}
	}, nil
}

// ApplyCreated appends a successfully created task to the column of the
// status the server returned.
func (s *Store) ApplyCreated(c Created) error {
	if c.Err != nil {
		s.log.WithError(c.Err).Warn("failed to create task")
		return fmt.Errorf("failed to create task: %w", c.Err)
	}
	col := c.Column
	if task.IsValidStatus(c.Task.Status) {
		col = c.Task.Column()
	}
	s.InsertIntoColumn(col, c.Task)
	return nil
}
