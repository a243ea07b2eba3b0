package task

import "fmt"

// Task status constants. These are the exact strings the task API uses.
const (
	StatusTodo  = "A Fazer"
	StatusDoing = "Em Progresso"
	StatusDone  = "Concluída"
)

// Column is one of the three fixed lanes of the board.
type Column int

// Columns in board order.
const (
	Todo Column = iota
	Doing
	Done
)

// NumColumns is the number of lanes on the board.
const NumColumns = 3

type columnInfo struct {
	key    string
	title  string
	status string
}

var columnTable = [NumColumns]columnInfo{
	Todo:  {key: "todo", title: "To Do", status: StatusTodo},
	Doing: {key: "doing", title: "In Progress", status: StatusDoing},
	Done:  {key: "done", title: "Done", status: StatusDone},
}

var columnByStatus = map[string]Column{
	StatusTodo:  Todo,
	StatusDoing: Doing,
	StatusDone:  Done,
}

var columnByKey = map[string]Column{
	"todo":  Todo,
	"doing": Doing,
	"done":  Done,
}

// Columns returns all columns in board order.
func Columns() []Column {
	return []Column{Todo, Doing, Done}
}

// Valid reports whether c is one of the three lanes.
func (c Column) Valid() bool {
	return c >= Todo && c <= Done
}

// Key returns the column key (todo, doing, done).
func (c Column) Key() string {
	if !c.Valid() {
		return ""
	}
	return columnTable[c].key
}

// Title returns the display name of the column.
func (c Column) Title() string {
	if !c.Valid() {
		return ""
	}
	return columnTable[c].title
}

// Status returns the task status that corresponds to the column.
func (c Column) Status() string {
	if !c.Valid() {
		return StatusTodo
	}
	return columnTable[c].status
}

// String implements fmt.Stringer.
func (c Column) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Column(%d)", int(c))
	}
	return c.Key()
}

// ColumnForStatus maps a status to its column. Unknown statuses land in Todo.
func ColumnForStatus(status string) Column {
	if c, ok := columnByStatus[status]; ok {
		return c
	}
	return Todo
}

// ParseColumn parses a column key.
func ParseColumn(key string) (Column, error) {
	if c, ok := columnByKey[key]; ok {
		return c, nil
	}
	return Todo, fmt.Errorf("invalid column %q: use todo, doing or done", key)
}

// IsValidStatus reports whether status is one of the three known statuses.
func IsValidStatus(status string) bool {
	_, ok := columnByStatus[status]
	return ok
}

// Statuses returns the known statuses in board order.
func Statuses() []string {
	return []string{StatusTodo, StatusDoing, StatusDone}
}
