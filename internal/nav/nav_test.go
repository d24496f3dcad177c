package nav

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"tasknav/internal/model"
	"tasknav/internal/repo"
	"tasknav/internal/repo/repotest"
	"tasknav/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T, opts Options) (*Controller, *session.Session, *repotest.Counting) {
	t.Helper()
	r := repotest.New(repotest.Tree())
	s := session.New(r, session.Options{})
	return New(s, opts), s, r
}

func TestNavigate_ForwardAndBackScenario(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newController(t, Options{})

	_, err := c.NavigateTo(ctx, "A")
	require.NoError(t, err)
	st := s.State()
	assert.Equal(t, "A", st.CurrentID)
	assert.Empty(t, st.History)
	assert.Equal(t, model.DirectionForward, st.Direction)

	page, err := c.NavigateTo(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, "Beta", page.ParentTitle)
	st = s.State()
	assert.Equal(t, "B", st.CurrentID)
	assert.Equal(t, []string{"A"}, st.History)

	page, err = c.NavigateBack(ctx)
	require.NoError(t, err)
	st = s.State()
	assert.Equal(t, "A", st.CurrentID)
	assert.Empty(t, st.History)
	assert.Equal(t, model.DirectionBack, st.Direction)
	assert.Equal(t, "Alpha", page.ParentTitle)
	assert.Equal(t, page, s.Page())
}

func TestNavigateTo_SameIDDoesNotPush(t *testing.T) {
	ctx := context.Background()
	c, s, r := newController(t, Options{})

	_, _ = c.NavigateTo(ctx, "A")
	_, _ = c.NavigateTo(ctx, "A1")
	r.Reset()
	_, err := c.NavigateTo(ctx, "A1")
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, s.State().History)
	assert.Equal(t, 0, r.Total(), "re-resolving a cached page is free")
}

func TestNavigateBack_AtRootIsNoop(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newController(t, Options{})

	for i := 0; i < 3; i++ {
		page, err := c.NavigateBack(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Project", page.ParentTitle)
		assert.True(t, s.State().AtRoot())
		assert.Empty(t, s.State().History)
	}
}

func TestNavigate_PushPopAreInverses(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newController(t, Options{})
	ids := []string{"A", "A1", "A2", "B"}
	rng := rand.New(rand.NewSource(7))

	var snapshots []model.NavigationState
	for i := 0; i < 200; i++ {
		if len(snapshots) > 0 && rng.Intn(3) == 0 {
			before := snapshots[len(snapshots)-1]
			snapshots = snapshots[:len(snapshots)-1]
			_, err := c.NavigateBack(ctx)
			require.NoError(t, err)
			assert.Equal(t, before.History, s.State().History)
			continue
		}
		id := ids[rng.Intn(len(ids))]
		before := s.State()
		if before.CurrentID == id {
			continue
		}
		_, err := c.NavigateTo(ctx, id)
		require.NoError(t, err)
		if before.CurrentID != "" {
			snapshots = append(snapshots, before)
		} else {
			// Leaving the root pushes nothing; backing out lands on root again.
			snapshots = snapshots[:0]
		}
	}
}

func TestNavigateTo_FetchThroughCacheByDefault(t *testing.T) {
	ctx := context.Background()
	c, _, r := newController(t, Options{})

	_, _ = c.NavigateTo(ctx, "A")
	_, _ = c.NavigateBack(ctx)
	r.Reset()
	_, err := c.NavigateTo(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 0, r.Total())
}

func TestNavigateTo_InvalidateOnNavigate(t *testing.T) {
	ctx := context.Background()
	c, _, r := newController(t, Options{InvalidateOnNavigate: true})

	_, _ = c.NavigateTo(ctx, "A")
	_, _ = c.NavigateBack(ctx)
	r.Reset()
	_, err := c.NavigateTo(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Calls("load_subtasks"))
}

func TestNavigate_FailureRestoresState(t *testing.T) {
	ctx := context.Background()
	c, s, r := newController(t, Options{})

	_, _ = c.NavigateTo(ctx, "A")
	before := s.State()
	shown := s.Page()

	r.FailWith("get_task", repo.BackendUnavailableError{Op: "get_task", Err: errors.New("down")})
	_, err := c.NavigateTo(ctx, "A1")
	require.Error(t, err)
	assert.True(t, repo.IsUnavailable(err))
	assert.Equal(t, before, s.State())
	assert.Equal(t, shown, s.Page())

	_, err = c.NavigateTo(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, before, s.State())
}

func TestNavigate_ScrollTopHook(t *testing.T) {
	ctx := context.Background()
	scrolled := 0
	c, _, r := newController(t, Options{ScrollTop: func() { scrolled++ }})

	_, _ = c.NavigateTo(ctx, "A")
	_, _ = c.NavigateBack(ctx)
	assert.Equal(t, 2, scrolled)

	r.FailWith("load_subtasks", errors.New("down"))
	_, _ = c.NavigateTo(ctx, "B")
	assert.Equal(t, 2, scrolled, "no scroll on failed navigation")
}

func TestBreadcrumbs(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newController(t, Options{})

	_, _ = c.NavigateTo(ctx, "A")
	_, _ = c.NavigateTo(ctx, "A1")

	crumbs, err := c.Breadcrumbs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Crumb{
		{ID: "", Title: "Project"},
		{ID: "A", Title: "Alpha"},
		{ID: "A1", Title: "Alpha one"},
	}, crumbs)
}

func TestNavigateRoot(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newController(t, Options{})
	_, _ = c.NavigateTo(ctx, "A")
	_, _ = c.NavigateTo(ctx, "A1")

	page, err := c.NavigateRoot(ctx)
	require.NoError(t, err)
	assert.True(t, s.State().AtRoot())
	assert.Empty(t, s.State().History)
	assert.Equal(t, []string{"A", "B"}, page.ChildIDs())
}

func TestNavigateTo_RootDropsHistory(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newController(t, Options{})
	_, err := c.NavigateTo(ctx, "A")
	require.NoError(t, err)

	page, err := c.NavigateTo(ctx, "")
	require.NoError(t, err)
	assert.True(t, s.State().AtRoot())
	assert.Empty(t, s.State().History)
	assert.Equal(t, []string{"A", "B"}, page.ChildIDs())

	_, err = c.NavigateTo(ctx, "A")
	require.NoError(t, err)
	st := s.State()
	assert.Equal(t, "A", st.CurrentID)
	assert.NotContains(t, st.History, st.CurrentID)
}
