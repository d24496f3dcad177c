// Package mutate runs task mutations against the repository and keeps the
// session's page cache and displayed page consistent with the result.
//
// Every mutation follows the same steps: issue the backend command,
// invalidate the affected cache keys, then re-resolve and publish the page
// currently on display. Mutations never change the navigation state.
package mutate

import (
	"context"
	"strings"

	"tasknav/internal/model"
	"tasknav/internal/repo"
	"tasknav/internal/session"
)

type Result struct {
	// Task is the created or edited task, when the backend returns one.
	Task *model.Task `json:"task,omitempty"`
	// Page is the refreshed page on display.
	Page model.PageData `json:"page"`
}

type Coordinator struct {
	s *session.Session
}

func New(s *session.Session) *Coordinator {
	return &Coordinator{s: s}
}

// Add creates a task titled title under parentID ("" is root).
func (c *Coordinator) Add(ctx context.Context, parentID, title string) (Result, error) {
	title = strings.TrimSpace(title)
	if err := repo.ValidateTitle("add_task", title); err != nil {
		return Result{}, err
	}
	t, err := c.s.Repo.AddTask(ctx, parentID, title)
	if err != nil {
		return Result{}, err
	}
	return c.refresh(ctx, "add_task", &t, parentID)
}

// Update renames id. Its cached title is dropped as well, so a later
// navigation into id shows the new title.
func (c *Coordinator) Update(ctx context.Context, id, newTitle string) (Result, error) {
	newTitle = strings.TrimSpace(newTitle)
	if err := repo.ValidateTitle("update_task", newTitle); err != nil {
		return Result{}, err
	}
	t, err := c.s.Repo.UpdateTask(ctx, id, newTitle)
	if err != nil {
		return Result{}, err
	}
	c.s.Cache.InvalidateTitle(id)
	return c.refresh(ctx, "update_task", &t, c.s.CurrentID())
}

func (c *Coordinator) Toggle(ctx context.Context, id string) (Result, error) {
	t, err := c.s.Repo.ToggleComplete(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return c.refresh(ctx, "toggle_complete", &t, c.s.CurrentID())
}

// Remove deletes id and its subtree.
func (c *Coordinator) Remove(ctx context.Context, id string) (Result, error) {
	if err := c.s.Repo.RemoveTask(ctx, id); err != nil {
		return Result{}, err
	}
	return c.refresh(ctx, "remove_task", nil, c.s.CurrentID())
}

// Reorder persists newOrder as the child order of parentID. The order is
// checked against the parent's current children before the backend is
// called.
func (c *Coordinator) Reorder(ctx context.Context, parentID string, newOrder []string) (Result, error) {
	current, err := c.s.Load(ctx, parentID)
	if err != nil {
		return Result{}, err
	}
	if err := repo.ValidateOrder(current.Children, newOrder); err != nil {
		return Result{}, err
	}
	if err := c.s.Repo.ReorderChildren(ctx, parentID, newOrder); err != nil {
		return Result{}, err
	}
	return c.refresh(ctx, "reorder_children", nil, parentID)
}

// Move re-parents id under newParentID ("" is root).
func (c *Coordinator) Move(ctx context.Context, id, newParentID string) (Result, error) {
	if id == newParentID {
		return Result{}, repo.InvalidOperationError{Op: "move_task", Reason: "cannot move a task under itself"}
	}
	if err := c.s.Repo.MoveTask(ctx, id, newParentID); err != nil {
		return Result{}, err
	}
	return c.refresh(ctx, "move_task", nil, c.s.CurrentID(), newParentID)
}

func (c *Coordinator) refresh(ctx context.Context, op string, t *model.Task, keys ...string) (Result, error) {
	for _, k := range keys {
		c.s.Cache.Invalidate(k)
	}
	c.s.Logger().Debug("mutation applied", "op", op, "invalidated", cacheKeys(keys))
	page, err := c.s.Resolve(ctx)
	if err != nil {
		return Result{Task: t}, err
	}
	return Result{Task: t, Page: page}, nil
}

func cacheKeys(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.CacheKey(id))
	}
	return out
}
