// Package localtree edits an in-memory task tree without a backend.
//
// Every edit returns a new slice. Only the nodes on the path from the root to
// the edited node are copied; untouched branches keep sharing their backing
// arrays with the input tree, and the input is never modified.
package localtree

import (
	"tasknav/internal/model"
)

// UpdateFirst replaces the first node matching pred (depth-first, parent
// before children) with edit(node). It reports whether a node matched; when
// none did, the input slice is returned as is.
func UpdateFirst(tasks []model.Task, pred func(model.Task) bool, edit func(model.Task) model.Task) ([]model.Task, bool) {
	for i := range tasks {
		t := tasks[i]
		if pred(t) {
			out := copyTasks(tasks)
			out[i] = edit(t)
			return out, true
		}
		if len(t.Children) == 0 {
			continue
		}
		kids, ok := UpdateFirst(t.Children, pred, edit)
		if ok {
			out := copyTasks(tasks)
			t.Children = kids
			out[i] = t
			return out, true
		}
	}
	return tasks, false
}

func byID(id string) func(model.Task) bool {
	return func(t model.Task) bool { return t.ID == id }
}

func copyTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}

func Find(tasks []model.Task, id string) (model.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
		if found, ok := Find(t.Children, id); ok {
			return found, true
		}
	}
	return model.Task{}, false
}

func Toggle(tasks []model.Task, id string) ([]model.Task, bool) {
	return UpdateFirst(tasks, byID(id), func(t model.Task) model.Task {
		t.Completed = !t.Completed
		return t
	})
}

func ToggleExpanded(tasks []model.Task, id string) ([]model.Task, bool) {
	return UpdateFirst(tasks, byID(id), func(t model.Task) model.Task {
		t.IsExpanded = !t.IsExpanded
		return t
	})
}

func SetExpanded(tasks []model.Task, id string, expanded bool) ([]model.Task, bool) {
	return UpdateFirst(tasks, byID(id), func(t model.Task) model.Task {
		t.IsExpanded = expanded
		return t
	})
}

func Rename(tasks []model.Task, id, title string) ([]model.Task, bool) {
	return UpdateFirst(tasks, byID(id), func(t model.Task) model.Task {
		t.Title = title
		return t
	})
}

// AddChild appends child under parentID and forces the parent open.
func AddChild(tasks []model.Task, parentID string, child model.Task) ([]model.Task, bool) {
	return appendChild(tasks, parentID, child, true)
}

func appendChild(tasks []model.Task, parentID string, child model.Task, open bool) ([]model.Task, bool) {
	return UpdateFirst(tasks, byID(parentID), func(t model.Task) model.Task {
		kids := make([]model.Task, 0, len(t.Children)+1)
		kids = append(kids, t.Children...)
		t.Children = append(kids, child)
		if open {
			t.IsExpanded = true
		}
		return t
	})
}

// Remove drops the node with id together with its subtree.
func Remove(tasks []model.Task, id string) ([]model.Task, bool) {
	out, _, ok := extract(tasks, id)
	return out, ok
}

func extract(tasks []model.Task, id string) ([]model.Task, model.Task, bool) {
	for i := range tasks {
		if tasks[i].ID == id {
			out := make([]model.Task, 0, len(tasks)-1)
			out = append(out, tasks[:i]...)
			out = append(out, tasks[i+1:]...)
			return out, tasks[i], true
		}
	}
	for i := range tasks {
		if len(tasks[i].Children) == 0 {
			continue
		}
		kids, removed, ok := extract(tasks[i].Children, id)
		if ok {
			out := copyTasks(tasks)
			out[i].Children = kids
			return out, removed, true
		}
	}
	return tasks, model.Task{}, false
}

// UpdateSub edits the direct child subID of the top-level task parentID.
// Deeper descendants are not searched.
func UpdateSub(tasks []model.Task, parentID, subID string, edit func(model.Task) model.Task) ([]model.Task, bool) {
	for i := range tasks {
		if tasks[i].ID != parentID {
			continue
		}
		for j := range tasks[i].Children {
			if tasks[i].Children[j].ID != subID {
				continue
			}
			out := copyTasks(tasks)
			kids := copyTasks(tasks[i].Children)
			kids[j] = edit(kids[j])
			out[i].Children = kids
			return out, true
		}
		return tasks, false
	}
	return tasks, false
}

// RemoveSub drops the direct child subID of the top-level task parentID.
func RemoveSub(tasks []model.Task, parentID, subID string) ([]model.Task, bool) {
	for i := range tasks {
		if tasks[i].ID != parentID {
			continue
		}
		kids := make([]model.Task, 0, len(tasks[i].Children))
		for _, c := range tasks[i].Children {
			if c.ID != subID {
				kids = append(kids, c)
			}
		}
		if len(kids) == len(tasks[i].Children) {
			return tasks, false
		}
		out := copyTasks(tasks)
		out[i].Children = kids
		return out, true
	}
	return tasks, false
}

// Move re-parents id under newParentID ("" is root), appending it last.
// Moving a node under itself or one of its descendants is refused.
func Move(tasks []model.Task, id, newParentID string) ([]model.Task, bool) {
	node, ok := Find(tasks, id)
	if !ok {
		return tasks, false
	}
	if newParentID == id {
		return tasks, false
	}
	if newParentID != "" {
		if _, inside := Find(node.Children, newParentID); inside {
			return tasks, false
		}
		if _, exists := Find(tasks, newParentID); !exists {
			return tasks, false
		}
	}
	rest, moved, _ := extract(tasks, id)
	if newParentID == "" {
		out := make([]model.Task, 0, len(rest)+1)
		out = append(out, rest...)
		return append(out, moved), true
	}
	return appendChild(rest, newParentID, moved, false)
}

// ReorderChildren arranges parentID's children ("" is root) in the given
// order. The order must be a permutation of the current child ids.
func ReorderChildren(tasks []model.Task, parentID string, order []string) ([]model.Task, bool) {
	arrange := func(kids []model.Task) ([]model.Task, bool) {
		if len(order) != len(kids) {
			return nil, false
		}
		idx := make(map[string]int, len(kids))
		for i, k := range kids {
			idx[k.ID] = i
		}
		out := make([]model.Task, 0, len(kids))
		for _, id := range order {
			i, ok := idx[id]
			if !ok {
				return nil, false
			}
			delete(idx, id)
			out = append(out, kids[i])
		}
		return out, true
	}
	if parentID == "" {
		out, ok := arrange(tasks)
		if !ok {
			return tasks, false
		}
		return out, true
	}
	applied := false
	out, found := UpdateFirst(tasks, byID(parentID), func(t model.Task) model.Task {
		kids, ok := arrange(t.Children)
		if ok {
			t.Children = kids
			applied = true
		}
		return t
	})
	if !found || !applied {
		return tasks, false
	}
	return out, true
}
