// Package rpc carries repository commands over HTTP so a TUI or CLI can drive
// a task tree owned by another process.
package rpc

import (
	"errors"

	"tasknav/internal/model"
	"tasknav/internal/repo"
)

// Command names accepted under POST /rpc/{command}.
const (
	CmdGetTask         = "get_task"
	CmdLoadRootTasks   = "load_root_tasks"
	CmdLoadSubtasks    = "load_subtasks"
	CmdAddTask         = "add_task"
	CmdUpdateTask      = "update_task"
	CmdToggleComplete  = "toggle_complete"
	CmdRemoveTask      = "remove_task"
	CmdReorderChildren = "reorder_children"
	CmdMoveTask        = "move_task"
)

type request struct {
	ID          string   `json:"id,omitempty"`
	ParentID    string   `json:"parentId,omitempty"`
	Title       string   `json:"title,omitempty"`
	NewTitle    string   `json:"newTitle,omitempty"`
	NewOrder    []string `json:"newOrder,omitempty"`
	NewParentID string   `json:"newParentId,omitempty"`
}

type taskResponse struct {
	Task model.Task `json:"task"`
}

type tasksResponse struct {
	Tasks []model.Task `json:"tasks"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

const (
	kindNotFound    = "not_found"
	kindInvalid     = "invalid"
	kindUnavailable = "unavailable"
)

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	// Op, Resource and ID let the client rebuild the typed error.
	Op       string `json:"op,omitempty"`
	Resource string `json:"resource,omitempty"`
	ID       string `json:"id,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func encodeError(err error) (int, errorResponse) {
	var nf repo.NotFoundError
	var inv repo.InvalidOperationError
	var un repo.BackendUnavailableError
	switch {
	case errors.As(err, &nf):
		return 404, errorResponse{Error: errorBody{Kind: kindNotFound, Message: err.Error(), Resource: nf.Kind, ID: nf.ID}}
	case errors.As(err, &inv):
		return 400, errorResponse{Error: errorBody{Kind: kindInvalid, Message: inv.Reason, Op: inv.Op}}
	case errors.As(err, &un):
		return 503, errorResponse{Error: errorBody{Kind: kindUnavailable, Message: err.Error(), Op: un.Op}}
	default:
		return 503, errorResponse{Error: errorBody{Kind: kindUnavailable, Message: err.Error()}}
	}
}

func (b errorBody) decode(op string) error {
	switch b.Kind {
	case kindNotFound:
		kind := b.Resource
		if kind == "" {
			kind = "task"
		}
		return repo.NotFoundError{Kind: kind, ID: b.ID}
	case kindInvalid:
		if b.Op != "" {
			op = b.Op
		}
		return repo.InvalidOperationError{Op: op, Reason: b.Message}
	default:
		return repo.BackendUnavailableError{Op: op, Err: remoteError(b.Message)}
	}
}

type remoteError string

func (e remoteError) Error() string { return "remote: " + string(e) }
