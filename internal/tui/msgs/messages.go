// Package msgs defines shared message types passed between the TUI views
// and the app model.
package msgs

import (
	"github.com/pablasso/quadro/internal/board"
	"github.com/pablasso/quadro/internal/detail"
	"github.com/pablasso/quadro/internal/task"
)

// Requests emitted by views

// DragMsg carries a completed drag from pickup to drop.
type DragMsg struct {
	Drag board.DragResult
}

// CreateTaskMsg asks for a new card at the end of Column.
type CreateTaskMsg struct {
	Column task.Column
	Title  string
}

// OpenDetailMsg asks to open the detail dialog for a card.
type OpenDetailMsg struct {
	Task task.Task
}

// SaveDetailMsg submits the detail dialog's fields.
type SaveDetailMsg struct {
	Fields task.Fields
}

// DeleteDetailMsg asks to delete the task shown in the detail dialog.
type DeleteDetailMsg struct{}

// CloseDetailMsg dismisses the detail dialog without saving.
type CloseDetailMsg struct{}

// ReloadMsg asks for a full refresh from the server.
type ReloadMsg struct{}

// Results of background calls

// LoadedMsg delivers the result of a list call.
type LoadedMsg struct {
	Loaded board.Loaded
}

// CreatedMsg delivers the result of a create call.
type CreatedMsg struct {
	Created board.Created
}

// ResultMsg delivers the result of a status write started by a drag.
type ResultMsg struct {
	Result board.Result
}

// OutcomeMsg delivers the result of a detail save or delete.
type OutcomeMsg struct {
	Outcome detail.Outcome
}
