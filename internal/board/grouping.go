// Package board holds the three-column state of the Kanban board and the
// rules for changing it.
//
// A Grouping is immutable: every operation returns a new Grouping and leaves
// the receiver, and any lane a reader obtained from it, untouched.
package board

import (
	"slices"

	"github.com/pablasso/quadro/internal/task"
)

// Grouping maps each column to its ordered tasks.
type Grouping struct {
	lanes [task.NumColumns][]task.Task
}

// Group builds a grouping from a flat list, placing each task in the column
// of its status. Records without an id are dropped.
func Group(tasks []task.Task) Grouping {
	var g Grouping
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.ID.IsZero() {
			continue
		}
		key := t.ID.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		c := t.Column()
		g.lanes[c] = append(g.lanes[c], t)
	}
	return g
}

// Lane returns a copy of the tasks in column c.
func (g Grouping) Lane(c task.Column) []task.Task {
	if !c.Valid() {
		return nil
	}
	return slices.Clone(g.lanes[c])
}

// LaneLen returns the number of tasks in column c.
func (g Grouping) LaneLen(c task.Column) int {
	if !c.Valid() {
		return 0
	}
	return len(g.lanes[c])
}

// At returns the task at index i of column c.
func (g Grouping) At(c task.Column, i int) (task.Task, bool) {
	if !c.Valid() || i < 0 || i >= len(g.lanes[c]) {
		return task.Task{}, false
	}
	return g.lanes[c][i], true
}

// Len returns the total number of tasks.
func (g Grouping) Len() int {
	n := 0
	for _, lane := range g.lanes {
		n += len(lane)
	}
	return n
}

// Tasks returns every task in board order.
func (g Grouping) Tasks() []task.Task {
	out := make([]task.Task, 0, g.Len())
	for _, lane := range g.lanes {
		out = append(out, lane...)
	}
	return out
}

// IDs returns the ids in column c, in order.
func (g Grouping) IDs(c task.Column) []task.ID {
	if !c.Valid() {
		return nil
	}
	ids := make([]task.ID, len(g.lanes[c]))
	for i, t := range g.lanes[c] {
		ids[i] = t.ID
	}
	return ids
}

// Find locates a task by id across all columns.
func (g Grouping) Find(id task.ID) (t task.Task, c task.Column, index int, ok bool) {
	for _, col := range task.Columns() {
		for i, candidate := range g.lanes[col] {
			if candidate.ID.Equal(id) {
				return candidate, col, i, true
			}
		}
	}
	return task.Task{}, task.Todo, -1, false
}

// Reorder moves the task at from to position to within column c. It reports
// false when nothing changed.
func (g Grouping) Reorder(c task.Column, from, to int) (Grouping, bool) {
	if !c.Valid() {
		return g, false
	}
	lane := g.lanes[c]
	if from < 0 || from >= len(lane) {
		return g, false
	}
	to = clamp(to, 0, len(lane)-1)
	if from == to {
		return g, false
	}

	moved := lane[from]
	out := slices.Delete(slices.Clone(lane), from, from+1)
	out = slices.Insert(out, to, moved)
	g.lanes[c] = out
	return g, true
}

// Move takes the task at fromIndex out of column from, sets its status to the
// status of column to, and inserts it at toIndex. A fromIndex that no longer
// exists is a no-op.
func (g Grouping) Move(from, to task.Column, fromIndex, toIndex int) (Grouping, bool) {
	if !from.Valid() || !to.Valid() {
		return g, false
	}
	if from == to {
		return g.Reorder(from, fromIndex, toIndex)
	}
	src := g.lanes[from]
	if fromIndex < 0 || fromIndex >= len(src) {
		return g, false
	}

	moved := src[fromIndex]
	moved.Status = to.Status()

	dst := g.lanes[to]
	toIndex = clamp(toIndex, 0, len(dst))

	g.lanes[from] = slices.Delete(slices.Clone(src), fromIndex, fromIndex+1)
	g.lanes[to] = slices.Insert(slices.Clone(dst), toIndex, moved)
	return g, true
}

// Insert appends t to column c. The task takes the column's status, and any
// earlier copy of the same id is dropped first.
func (g Grouping) Insert(c task.Column, t task.Task) Grouping {
	if !c.Valid() || t.ID.IsZero() {
		return g
	}
	g, _ = g.Remove(t.ID)
	t.Status = c.Status()
	g.lanes[c] = append(slices.Clone(g.lanes[c]), t)
	return g
}

// Update merges patch into the task with the given id. If the merged status
// belongs to another column, the task is appended to that column.
func (g Grouping) Update(id task.ID, patch task.Patch) (Grouping, bool) {
	current, _, _, ok := g.Find(id)
	if !ok {
		return g, false
	}
	return g.replace(current, patch.Apply(current))
}

// Merge replaces the stored copy of t.ID with the authoritative record t,
// following the same column rule as Update. Unknown ids are ignored.
func (g Grouping) Merge(t task.Task) (Grouping, bool) {
	current, _, _, ok := g.Find(t.ID)
	if !ok {
		return g, false
	}
	// Keep the id spelling already on the board.
	t.ID = current.ID
	return g.replace(current, t)
}

// Remove drops the task with the given id.
func (g Grouping) Remove(id task.ID) (Grouping, bool) {
	_, c, i, ok := g.Find(id)
	if !ok {
		return g, false
	}
	g.lanes[c] = slices.Delete(slices.Clone(g.lanes[c]), i, i+1)
	return g, true
}

func (g Grouping) replace(current, next task.Task) (Grouping, bool) {
	if next == current {
		return g, false
	}
	_, c, i, _ := g.Find(current.ID)
	dest := next.Column()
	if dest == c {
		lane := slices.Clone(g.lanes[c])
		lane[i] = next
		g.lanes[c] = lane
		return g, true
	}
	g.lanes[c] = slices.Delete(slices.Clone(g.lanes[c]), i, i+1)
	g.lanes[dest] = append(slices.Clone(g.lanes[dest]), next)
	return g, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
