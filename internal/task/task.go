package task

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// ID identifies a task. Servers may send ids as JSON strings or numbers;
// both decode into the same canonical string form.
type ID string

// String returns the canonical form of the id.
func (id ID) String() string {
	return strings.TrimSpace(string(id))
}

// Equal reports whether two ids refer to the same task.
func (id ID) Equal(other ID) bool {
	return id.String() == other.String()
}

// IsZero reports whether the id is missing.
func (id ID) IsZero() bool {
	return id.String() == ""
}

// UnmarshalJSON accepts "7", 7 and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := sonic.ConfigStd.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	// Numbers keep their literal text so 1 and "1" agree.
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return err
	}
	*id = ID(data)
	return nil
}

// Task represents a single card on the board.
type Task struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Column returns the column the task belongs to given its status.
func (t Task) Column() Column {
	return ColumnForStatus(t.Status)
}

// Patch holds a partial update. Nil fields are left unchanged.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// StatusPatch returns a patch that only changes the status.
func StatusPatch(status string) Patch {
	return Patch{Status: &status}
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

// Apply returns a copy of t with the patch merged in.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	return t
}

// Fields is the editable part of a task.
type Fields struct {
	Title       string
	Description string
	Status      string
}

// FieldsOf copies the editable fields out of t.
func FieldsOf(t Task) Fields {
	return Fields{Title: t.Title, Description: t.Description, Status: t.Status}
}

// Normalize trims title and description and defaults an empty status.
func (f Fields) Normalize() Fields {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	if f.Status == "" {
		f.Status = StatusTodo
	}
	return f
}

// Validate checks the fields before they are sent to the server.
func (f Fields) Validate() error {
	if err := ValidateTitle(f.Title); err != nil {
		return err
	}
	return ValidateStatus(f.Status)
}

// Patch turns the fields into a full patch.
func (f Fields) Patch() Patch {
	return Patch{Title: &f.Title, Description: &f.Description, Status: &f.Status}
}

// ValidateTitle rejects titles that are empty after trimming.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	return nil
}

// ValidateStatus rejects unknown status strings.
func ValidateStatus(status string) error {
	if !IsValidStatus(status) {
		return &ValidationError{
			Field:   "status",
			Message: "invalid status: use '" + StatusTodo + "', '" + StatusDoing + "' or '" + StatusDone + "'",
		}
	}
	return nil
}
