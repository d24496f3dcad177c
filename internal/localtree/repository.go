package localtree

import (
	"context"
	"strings"
	"sync"

	"tasknav/internal/model"
	"tasknav/internal/repo"

	"github.com/google/uuid"
)

// Repository serves the repository commands from an in-memory tree. It is
// the backend used when no remote authority exists.
type Repository struct {
	mu    sync.Mutex
	tasks []model.Task
	newID func() string
}

func NewRepository(seed []model.Task) *Repository {
	return &Repository{tasks: model.CloneTasks(seed), newID: uuid.NewString}
}

// Snapshot returns a deep copy of the whole tree.
func (r *Repository) Snapshot() []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return model.CloneTasks(r.tasks)
}

func (r *Repository) GetTask(_ context.Context, id string) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := Find(r.tasks, id)
	if !ok {
		return model.Task{}, repo.NotFoundError{Kind: "task", ID: id}
	}
	out := t
	out.Children = model.CloneTasks(t.Children)
	return out, nil
}

func (r *Repository) LoadRootTasks(_ context.Context) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return nonNil(model.CloneTasks(r.tasks)), nil
}

func (r *Repository) LoadSubtasks(ctx context.Context, parentID string) ([]model.Task, error) {
	t, err := r.GetTask(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return nonNil(t.Children), nil
}

func (r *Repository) AddTask(_ context.Context, parentID, title string) (model.Task, error) {
	if err := repo.ValidateTitle("add_task", title); err != nil {
		return model.Task{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t := model.Task{ID: r.newID(), Title: strings.TrimSpace(title), Children: []model.Task{}}
	if parentID == "" {
		next := make([]model.Task, 0, len(r.tasks)+1)
		next = append(next, r.tasks...)
		r.tasks = append(next, t)
		return t, nil
	}
	next, ok := appendChild(r.tasks, parentID, t, false)
	if !ok {
		return model.Task{}, repo.NotFoundError{Kind: "task", ID: parentID}
	}
	r.tasks = next
	return t, nil
}

func (r *Repository) UpdateTask(_ context.Context, id, newTitle string) (model.Task, error) {
	if err := repo.ValidateTitle("update_task", newTitle); err != nil {
		return model.Task{}, err
	}
	return r.edit(id, func(ts []model.Task) ([]model.Task, bool) {
		return Rename(ts, id, strings.TrimSpace(newTitle))
	})
}

func (r *Repository) ToggleComplete(_ context.Context, id string) (model.Task, error) {
	return r.edit(id, func(ts []model.Task) ([]model.Task, bool) {
		return Toggle(ts, id)
	})
}

func (r *Repository) edit(id string, fn func([]model.Task) ([]model.Task, bool)) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next, ok := fn(r.tasks)
	if !ok {
		return model.Task{}, repo.NotFoundError{Kind: "task", ID: id}
	}
	r.tasks = next
	t, _ := Find(next, id)
	out := t
	out.Children = model.CloneTasks(t.Children)
	return out, nil
}

func (r *Repository) RemoveTask(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next, ok := Remove(r.tasks, id)
	if !ok {
		return repo.NotFoundError{Kind: "task", ID: id}
	}
	r.tasks = next
	return nil
}

func (r *Repository) ReorderChildren(_ context.Context, parentID string, newOrder []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kids := r.tasks
	if parentID != "" {
		p, ok := Find(r.tasks, parentID)
		if !ok {
			return repo.NotFoundError{Kind: "task", ID: parentID}
		}
		kids = p.Children
	}
	if err := repo.ValidateOrder(kids, newOrder); err != nil {
		return err
	}
	next, _ := ReorderChildren(r.tasks, parentID, newOrder)
	r.tasks = next
	return nil
}

func (r *Repository) MoveTask(_ context.Context, id, newParentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := Find(r.tasks, id); !ok {
		return repo.NotFoundError{Kind: "task", ID: id}
	}
	if newParentID != "" {
		if _, ok := Find(r.tasks, newParentID); !ok {
			return repo.NotFoundError{Kind: "task", ID: newParentID}
		}
	}
	next, ok := Move(r.tasks, id, newParentID)
	if !ok {
		return repo.InvalidOperationError{Op: "move_task", Reason: "cannot move a task under itself"}
	}
	r.tasks = next
	return nil
}

func nonNil(ts []model.Task) []model.Task {
	if ts == nil {
		return []model.Task{}
	}
	return ts
}
