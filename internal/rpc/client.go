package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tasknav/internal/model"
	"tasknav/internal/repo"
)

// Client is a repo.Repository backed by a remote Server. Requests are not
// retried; every transport failure surfaces as BackendUnavailableError.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) GetTask(ctx context.Context, id string) (model.Task, error) {
	var out taskResponse
	err := c.call(ctx, CmdGetTask, request{ID: id}, &out)
	return out.Task, err
}

func (c *Client) LoadRootTasks(ctx context.Context) ([]model.Task, error) {
	var out tasksResponse
	if err := c.call(ctx, CmdLoadRootTasks, request{}, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Tasks), nil
}

func (c *Client) LoadSubtasks(ctx context.Context, parentID string) ([]model.Task, error) {
	var out tasksResponse
	if err := c.call(ctx, CmdLoadSubtasks, request{ParentID: parentID}, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Tasks), nil
}

func (c *Client) AddTask(ctx context.Context, parentID, title string) (model.Task, error) {
	var out taskResponse
	err := c.call(ctx, CmdAddTask, request{ParentID: parentID, Title: title}, &out)
	return out.Task, err
}

func (c *Client) UpdateTask(ctx context.Context, id, newTitle string) (model.Task, error) {
	var out taskResponse
	err := c.call(ctx, CmdUpdateTask, request{ID: id, NewTitle: newTitle}, &out)
	return out.Task, err
}

func (c *Client) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	var out taskResponse
	err := c.call(ctx, CmdToggleComplete, request{ID: id}, &out)
	return out.Task, err
}

func (c *Client) RemoveTask(ctx context.Context, id string) error {
	return c.call(ctx, CmdRemoveTask, request{ID: id}, nil)
}

func (c *Client) ReorderChildren(ctx context.Context, parentID string, newOrder []string) error {
	return c.call(ctx, CmdReorderChildren, request{ParentID: parentID, NewOrder: newOrder}, nil)
}

func (c *Client) MoveTask(ctx context.Context, id, newParentID string) error {
	return c.call(ctx, CmdMoveTask, request{ID: id, NewParentID: newParentID}, nil)
}

func (c *Client) call(ctx context.Context, cmd string, body request, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/rpc/"+cmd, bytes.NewReader(b))
	if err != nil {
		return repo.BackendUnavailableError{Op: cmd, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return repo.BackendUnavailableError{Op: cmd, Err: err}
	}
	defer resp.Body.Close()

	// Responses are not size-capped: load_root_tasks carries the whole forest.
	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error.Kind == "" {
			return repo.BackendUnavailableError{Op: cmd, Err: fmt.Errorf("http %d", resp.StatusCode)}
		}
		return er.Error.decode(cmd)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return repo.BackendUnavailableError{Op: cmd, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Ping checks GET /health.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return repo.BackendUnavailableError{Op: "health", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return repo.BackendUnavailableError{Op: "health", Err: errors.New(resp.Status)}
	}
	return nil
}

func nonNil(ts []model.Task) []model.Task {
	if ts == nil {
		return []model.Task{}
	}
	return ts
}

var _ repo.Repository = (*Client)(nil)
