// Package repotest provides a call-counting repository for tests.
package repotest

import (
	"context"
	"sync"

	"tasknav/internal/localtree"
	"tasknav/internal/model"
	"tasknav/internal/repo"
)

// Counting wraps an in-memory repository, counts calls per command and can
// inject failures.
type Counting struct {
	*localtree.Repository

	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func New(seed []model.Task) *Counting {
	return &Counting{
		Repository: localtree.NewRepository(seed),
		calls:      map[string]int{},
		fail:       map[string]error{},
	}
}

// Calls returns how many times cmd was issued.
func (c *Counting) Calls(cmd string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[cmd]
}

// Total returns the number of calls across all commands.
func (c *Counting) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func (c *Counting) Reset() {
	c.mu.Lock()
	c.calls = map[string]int{}
	c.mu.Unlock()
}

// FailWith makes cmd return err until cleared with FailWith(cmd, nil).
func (c *Counting) FailWith(cmd string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.fail, cmd)
		return
	}
	c.fail[cmd] = err
}

func (c *Counting) record(cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[cmd]++
	return c.fail[cmd]
}

func (c *Counting) GetTask(ctx context.Context, id string) (model.Task, error) {
	if err := c.record("get_task"); err != nil {
		return model.Task{}, err
	}
	return c.Repository.GetTask(ctx, id)
}

func (c *Counting) LoadRootTasks(ctx context.Context) ([]model.Task, error) {
	if err := c.record("load_root_tasks"); err != nil {
		return nil, err
	}
	return c.Repository.LoadRootTasks(ctx)
}

func (c *Counting) LoadSubtasks(ctx context.Context, parentID string) ([]model.Task, error) {
	if err := c.record("load_subtasks"); err != nil {
		return nil, err
	}
	return c.Repository.LoadSubtasks(ctx, parentID)
}

func (c *Counting) AddTask(ctx context.Context, parentID, title string) (model.Task, error) {
	if err := c.record("add_task"); err != nil {
		return model.Task{}, err
	}
	return c.Repository.AddTask(ctx, parentID, title)
}

func (c *Counting) UpdateTask(ctx context.Context, id, newTitle string) (model.Task, error) {
	if err := c.record("update_task"); err != nil {
		return model.Task{}, err
	}
	return c.Repository.UpdateTask(ctx, id, newTitle)
}

func (c *Counting) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	if err := c.record("toggle_complete"); err != nil {
		return model.Task{}, err
	}
	return c.Repository.ToggleComplete(ctx, id)
}

func (c *Counting) RemoveTask(ctx context.Context, id string) error {
	if err := c.record("remove_task"); err != nil {
		return err
	}
	return c.Repository.RemoveTask(ctx, id)
}

func (c *Counting) ReorderChildren(ctx context.Context, parentID string, newOrder []string) error {
	if err := c.record("reorder_children"); err != nil {
		return err
	}
	return c.Repository.ReorderChildren(ctx, parentID, newOrder)
}

func (c *Counting) MoveTask(ctx context.Context, id, newParentID string) error {
	if err := c.record("move_task"); err != nil {
		return err
	}
	return c.Repository.MoveTask(ctx, id, newParentID)
}

var _ repo.Repository = (*Counting)(nil)

// Tree returns a small fixture: root tasks A and B, A with children A1, A2.
func Tree() []model.Task {
	return []model.Task{
		{ID: "A", Title: "Alpha", Children: []model.Task{
			{ID: "A1", Title: "Alpha one", Children: []model.Task{}},
			{ID: "A2", Title: "Alpha two", Children: []model.Task{}},
		}},
		{ID: "B", Title: "Beta", Children: []model.Task{}},
	}
}
