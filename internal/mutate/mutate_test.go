package mutate

import (
	"context"
	"errors"
	"testing"

	"tasknav/internal/model"
	"tasknav/internal/nav"
	"tasknav/internal/repo"
	"tasknav/internal/repo/repotest"
	"tasknav/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	r   *repotest.Counting
	s   *session.Session
	nav *nav.Controller
	mut *Coordinator
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	r := repotest.New(repotest.Tree())
	s := session.New(r, session.Options{})
	_, err := s.Resolve(context.Background())
	require.NoError(t, err)
	return fixture{r: r, s: s, nav: nav.New(s, nav.Options{}), mut: New(s)}
}

func titlesOf(p model.PageData) []string {
	out := make([]string, 0, len(p.Children))
	for _, c := range p.Children {
		out = append(out, c.Title)
	}
	return out
}

func TestAdd_AtRootRefreshesRootPage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.r.Reset()

	res, err := f.mut.Add(ctx, "", "New")
	require.NoError(t, err)
	require.NotNil(t, res.Task)
	assert.Equal(t, "New", res.Task.Title)
	assert.Equal(t, []string{"Alpha", "Beta", "New"}, titlesOf(res.Page))
	assert.Equal(t, res.Page, f.s.Page())

	assert.Equal(t, 1, f.r.Calls("add_task"))
	assert.Equal(t, 1, f.r.Calls("load_root_tasks"), "exactly one refetch per mutation")
	assert.Equal(t, 2, f.r.Total())
}

func TestAdd_BackToParentShowsNoStaleSubtree(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.nav.NavigateTo(ctx, "A")
	require.NoError(t, err)
	res, err := f.mut.Add(ctx, "A", "Alpha three")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha one", "Alpha two", "Alpha three"}, titlesOf(res.Page))

	root, err := f.nav.NavigateBack(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, root.ChildIDs())
	assert.Empty(t, root.Children[0].Children, "root page holds no copy of A's children")

	alpha, err := f.nav.NavigateTo(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha one", "Alpha two", "Alpha three"}, titlesOf(alpha))
}

func TestAdd_UnderOtherParentInvalidatesThatParent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.nav.NavigateTo(ctx, "A")
	require.NoError(t, err)
	_, err = f.nav.NavigateBack(ctx)
	require.NoError(t, err)
	require.True(t, f.s.Cache.Has("A"))

	_, err = f.mut.Add(ctx, "A", "Alpha three")
	require.NoError(t, err)
	assert.False(t, f.s.Cache.Has("A"))

	page, err := f.nav.NavigateTo(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha one", "Alpha two", "Alpha three"}, titlesOf(page))
}

func TestUpdate_RefreshesPageAndTitle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Visit A so its title is cached, then come back to root.
	_, _ = f.nav.NavigateTo(ctx, "A")
	_, _ = f.nav.NavigateBack(ctx)

	res, err := f.mut.Update(ctx, "A", "Alpha prime")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha prime", "Beta"}, titlesOf(res.Page))

	page, err := f.nav.NavigateTo(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "Alpha prime", page.ParentTitle)
}

func TestToggle_NoStaleCacheHit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _ = f.nav.NavigateTo(ctx, "A")

	res, err := f.mut.Toggle(ctx, "A1")
	require.NoError(t, err)
	assert.True(t, res.Task.Completed)
	assert.True(t, res.Page.Children[0].Completed)

	again, err := f.s.Load(ctx, "A")
	require.NoError(t, err)
	assert.True(t, again.Children[0].Completed)
}

func TestRemove_RefreshesCurrentPage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.mut.Remove(ctx, "A")
	require.NoError(t, err)
	assert.Nil(t, res.Task)
	assert.Equal(t, []string{"B"}, res.Page.ChildIDs())
}

func TestReorder_ScenarioC2C1(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _ = f.nav.NavigateTo(ctx, "A")

	res, err := f.mut.Reorder(ctx, "A", []string{"A2", "A1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A2", "A1"}, res.Page.ChildIDs())

	page, err := f.s.Load(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A2", "A1"}, page.ChildIDs())
}

func TestReorder_MalformedRejectedBeforeBackend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _ = f.nav.NavigateTo(ctx, "A")
	f.r.Reset()

	for _, order := range [][]string{{"A1"}, {"A1", "A1"}, {"A1", "B"}} {
		_, err := f.mut.Reorder(ctx, "A", order)
		assert.True(t, repo.IsInvalid(err), "order %v: %v", order, err)
	}
	assert.Equal(t, 0, f.r.Calls("reorder_children"))
	assert.True(t, f.s.Cache.Has("A"), "rejected reorder must not invalidate")
}

func TestMove_InvalidatesCurrentAndDestination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _ = f.nav.NavigateTo(ctx, "B")
	_, _ = f.nav.NavigateTo(ctx, "A")

	res, err := f.mut.Move(ctx, "A2", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, res.Page.ChildIDs())
	assert.False(t, f.s.Cache.Has("B"))

	page, err := f.nav.NavigateBack(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A2"}, page.ChildIDs())

	_, err = f.mut.Move(ctx, "A", "A")
	assert.True(t, repo.IsInvalid(err))
}

func TestMutations_DoNotTouchNavigation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _ = f.nav.NavigateTo(ctx, "A")
	_, _ = f.nav.NavigateTo(ctx, "A1")
	before := f.s.State()

	_, err := f.mut.Add(ctx, "A1", "deep")
	require.NoError(t, err)
	_, err = f.mut.Toggle(ctx, "A1")
	require.NoError(t, err)
	_, err = f.mut.Update(ctx, "A1", "Renamed")
	require.NoError(t, err)

	assert.Equal(t, before, f.s.State())
	assert.Equal(t, "Renamed", f.s.Page().ParentTitle)
}

func TestBackendFailure_LeavesCacheUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	shown := f.s.Page()

	f.r.FailWith("add_task", repo.BackendUnavailableError{Op: "add_task", Err: errors.New("offline")})
	_, err := f.mut.Add(ctx, "", "Lost")
	require.Error(t, err)
	assert.True(t, repo.IsUnavailable(err))
	assert.True(t, f.s.Cache.Has(""))
	assert.Equal(t, shown, f.s.Page())

	_, err = f.mut.Toggle(ctx, "missing")
	assert.True(t, repo.IsNotFound(err))
	assert.True(t, f.s.Cache.Has(""))
}

func TestAdd_BlankTitleRejected(t *testing.T) {
	f := newFixture(t)
	f.r.Reset()
	_, err := f.mut.Add(context.Background(), "", "   ")
	assert.True(t, repo.IsInvalid(err))
	assert.Equal(t, 0, f.r.Total())
}
