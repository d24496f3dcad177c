package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tasknav/internal/model"
	"tasknav/internal/repo"
	"tasknav/internal/repo/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPair(t *testing.T) (*Client, *repotest.Counting) {
	t.Helper()
	backend := repotest.New(repotest.Tree())
	srv := httptest.NewServer(NewServer(backend, nil))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL), backend
}

func TestClient_ReadCommands(t *testing.T) {
	ctx := context.Background()
	c, backend := newPair(t)

	roots, err := c.LoadRootTasks(ctx)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "A", roots[0].ID)

	kids, err := c.LoadSubtasks(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, []string{kids[0].ID, kids[1].ID})

	task, err := c.GetTask(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", task.Title)

	empty, err := c.LoadSubtasks(ctx, "B")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	assert.Equal(t, 1, backend.Calls(CmdLoadRootTasks))
	assert.Equal(t, 2, backend.Calls(CmdLoadSubtasks))
	assert.Equal(t, 1, backend.Calls(CmdGetTask))
}

func TestClient_LargeForestIsNotTruncated(t *testing.T) {
	seed := make([]model.Task, 20000)
	for i := range seed {
		seed[i] = model.Task{
			ID:       fmt.Sprintf("t-%05d", i),
			Title:    fmt.Sprintf("task %05d %s", i, strings.Repeat("x", 40)),
			Children: []model.Task{},
		}
	}
	srv := httptest.NewServer(NewServer(repotest.New(seed), nil))
	t.Cleanup(srv.Close)

	roots, err := NewClient(srv.URL).LoadRootTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, roots, len(seed))
	assert.Equal(t, "t-19999", roots[len(roots)-1].ID)
}

func TestClient_WriteCommands(t *testing.T) {
	ctx := context.Background()
	c, backend := newPair(t)

	added, err := c.AddTask(ctx, "B", "Beta one")
	require.NoError(t, err)
	assert.Equal(t, "Beta one", added.Title)

	renamed, err := c.UpdateTask(ctx, "A", "Alpha!")
	require.NoError(t, err)
	assert.Equal(t, "Alpha!", renamed.Title)

	toggled, err := c.ToggleComplete(ctx, "A1")
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	require.NoError(t, c.ReorderChildren(ctx, "A", []string{"A2", "A1"}))
	require.NoError(t, c.MoveTask(ctx, "A2", "B"))
	require.NoError(t, c.RemoveTask(ctx, "A1"))

	snap := backend.Snapshot()
	require.Len(t, snap, 2)
	assert.Empty(t, snap[0].Children)
	require.Len(t, snap[1].Children, 2)
	assert.Equal(t, added.ID, snap[1].Children[0].ID)
	assert.Equal(t, "A2", snap[1].Children[1].ID)
}

func TestClient_DecodesTypedErrors(t *testing.T) {
	ctx := context.Background()
	c, backend := newPair(t)

	_, err := c.GetTask(ctx, "missing")
	var nf repo.NotFoundError
	require.True(t, errors.As(err, &nf), "got %v", err)
	assert.Equal(t, "missing", nf.ID)
	assert.Equal(t, "task", nf.Kind)

	err = c.ReorderChildren(ctx, "A", []string{"A1"})
	assert.True(t, repo.IsInvalid(err), "got %v", err)

	_, err = c.AddTask(ctx, "", "   ")
	assert.True(t, repo.IsInvalid(err), "got %v", err)

	backend.FailWith(CmdLoadRootTasks, errors.New("disk on fire"))
	_, err = c.LoadRootTasks(ctx)
	assert.True(t, repo.IsUnavailable(err), "got %v", err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestClient_TransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url)
	_, err := c.LoadRootTasks(context.Background())
	assert.True(t, repo.IsUnavailable(err), "got %v", err)
	assert.Error(t, c.Ping(context.Background()))
}

func TestServer_HealthAndUnknownCommand(t *testing.T) {
	srv := httptest.NewServer(NewServer(repotest.New(nil), nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, NewClient(srv.URL).Ping(context.Background()))

	resp, err = http.Post(srv.URL+"/rpc/drop_tables", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/rpc/get_task", "application/json", strings.NewReader(`{not json`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
