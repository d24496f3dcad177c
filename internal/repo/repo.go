// Package repo defines the task repository boundary consumed by the page
// cache and mutation coordinator, plus the error kinds every backend returns.
package repo

import (
	"context"

	"tasknav/internal/model"
)

// Repository is the command interface of a task backend. An empty parent id
// addresses the root level.
type Repository interface {
	GetTask(ctx context.Context, id string) (model.Task, error)
	LoadRootTasks(ctx context.Context) ([]model.Task, error)
	LoadSubtasks(ctx context.Context, parentID string) ([]model.Task, error)
	AddTask(ctx context.Context, parentID, title string) (model.Task, error)
	UpdateTask(ctx context.Context, id, newTitle string) (model.Task, error)
	ToggleComplete(ctx context.Context, id string) (model.Task, error)
	RemoveTask(ctx context.Context, id string) error
	ReorderChildren(ctx context.Context, parentID string, newOrder []string) error
	MoveTask(ctx context.Context, id, newParentID string) error
}

// LoadChildren dispatches to LoadRootTasks or LoadSubtasks.
func LoadChildren(ctx context.Context, r Repository, parentID string) ([]model.Task, error) {
	if parentID == "" {
		return r.LoadRootTasks(ctx)
	}
	return r.LoadSubtasks(ctx, parentID)
}
