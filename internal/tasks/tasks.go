// Package tasks keeps the to-do list and its completion progress.
package tasks

import (
	"sort"
	"strings"

	"melodi/internal/core"
)

// List operates on the tasks of a state.
type List struct {
	st  *core.State
	ids core.IDSource
}

func New(st *core.State, ids core.IDSource) *List {
	return &List{st: st, ids: ids}
}

// Create appends an incomplete task. due is optional and stored as given.
func (l *List) Create(text string, due core.Day) (core.Task, error) {
	if core.IsBlank(text) {
		return core.Task{}, core.ErrBlankText
	}
	t := core.Task{
		ID:   l.ids.Next(),
		Text: text,
		Due:  core.Day(strings.TrimSpace(string(due))),
	}
	l.st.Tasks = append(l.st.Tasks, t)
	return t, nil
}

// Toggle flips the completion flag. It reports whether the task exists.
func (l *List) Toggle(id int64) (core.Task, bool) {
	for i := range l.st.Tasks {
		if l.st.Tasks[i].ID == id {
			l.st.Tasks[i].Completed = !l.st.Tasks[i].Completed
			return l.st.Tasks[i], true
		}
	}
	return core.Task{}, false
}

// Delete removes a task by id. It reports whether anything was removed.
func (l *List) Delete(id int64) bool {
	for i, t := range l.st.Tasks {
		if t.ID == id {
			l.st.Tasks = append(l.st.Tasks[:i:i], l.st.Tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Sorted returns the tasks with incomplete ones first. Relative order within
// each group is preserved.
func (l *List) Sorted() []core.Task {
	return Sorted(l.st.Tasks)
}

func Sorted(in []core.Task) []core.Task {
	out := append([]core.Task{}, in...)
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].Completed && out[j].Completed
	})
	return out
}

// CompletionPercentage is 0 for an empty list, otherwise the share of
// completed tasks in [0, 100].
func (l *List) CompletionPercentage() float64 {
	return ProgressOf(l.st.Tasks).Percentage
}

// Progress returns the completion summary.
func (l *List) Progress() core.Progress {
	return ProgressOf(l.st.Tasks)
}

func ProgressOf(in []core.Task) core.Progress {
	p := core.Progress{Total: len(in)}
	for _, t := range in {
		if t.Completed {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percentage = 100 * float64(p.Completed) / float64(p.Total)
	}
	return p
}
