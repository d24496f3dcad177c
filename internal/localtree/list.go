package localtree

import (
	"tasknav/internal/model"

	"github.com/google/uuid"
)

// List is a purely local todo list: top-level todos with optional sub-todos.
// Completed top-level todos are kept after the open ones.
type List struct {
	tasks []model.Task
	newID func() string
}

func NewList() *List {
	return &List{newID: uuid.NewString}
}

// Tasks returns the current tree. Callers must treat it as read-only.
func (l *List) Tasks() []model.Task { return l.tasks }

// Set replaces the list, regrouping by completion.
func (l *List) Set(tasks []model.Task) {
	l.tasks = groupByDone(tasks)
}

func (l *List) Add(title string) model.Task {
	t := model.Task{ID: l.newID(), Title: title, Children: []model.Task{}}
	next := make([]model.Task, 0, len(l.tasks)+1)
	next = append(next, l.tasks...)
	l.tasks = groupByDone(append(next, t))
	return t
}

// AddSub appends a sub-todo under parentID and opens the parent.
func (l *List) AddSub(parentID, title string) (model.Task, bool) {
	t := model.Task{ID: l.newID(), Title: title, Children: []model.Task{}}
	next, ok := AddChild(l.tasks, parentID, t)
	if !ok {
		return model.Task{}, false
	}
	l.tasks = next
	return t, true
}

func (l *List) Toggle(id string) bool {
	next, ok := Toggle(l.tasks, id)
	if ok {
		l.tasks = groupByDone(next)
	}
	return ok
}

func (l *List) SetOpen(id string, open bool) bool {
	next, ok := SetExpanded(l.tasks, id, open)
	l.tasks = next
	return ok
}

func (l *List) Remove(id string) bool {
	next, ok := Remove(l.tasks, id)
	l.tasks = next
	return ok
}

func (l *List) RemoveSub(parentID, subID string) bool {
	next, ok := RemoveSub(l.tasks, parentID, subID)
	l.tasks = next
	return ok
}

func (l *List) UpdateText(id, title string) bool {
	next, ok := Rename(l.tasks, id, title)
	l.tasks = next
	return ok
}

func (l *List) UpdateSubText(parentID, subID, title string) bool {
	next, ok := UpdateSub(l.tasks, parentID, subID, func(t model.Task) model.Task {
		t.Title = title
		return t
	})
	l.tasks = next
	return ok
}

// Reorder moves the top-level todo at index from to index to.
func (l *List) Reorder(from, to int) bool {
	n := len(l.tasks)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	if from == to {
		return true
	}
	moved := l.tasks[from]
	rest := make([]model.Task, 0, n)
	rest = append(rest, l.tasks[:from]...)
	rest = append(rest, l.tasks[from+1:]...)
	out := make([]model.Task, 0, n)
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	l.tasks = out
	return true
}

// groupByDone keeps open todos first and completed ones last, stable within
// each group.
func groupByDone(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	for _, t := range tasks {
		if t.Completed {
			out = append(out, t)
		}
	}
	return out
}
