// Package nav moves the session between tree levels and keeps the back
// history.
package nav

import (
	"context"

	"tasknav/internal/model"
	"tasknav/internal/session"
)

type Options struct {
	// InvalidateOnNavigate drops the destination page before entering it.
	// Off by default: mutations already invalidate what they touch.
	InvalidateOnNavigate bool

	// ScrollTop runs after every successful navigation.
	ScrollTop func()
}

type Controller struct {
	s    *session.Session
	opts Options
}

func New(s *session.Session, opts Options) *Controller {
	return &Controller{s: s, opts: opts}
}

// NavigateTo enters the level of id. The current id is pushed onto the
// history unless it is the root or id itself. On failure the previous
// navigation state is restored. Entering the root ("") is NavigateRoot.
func (c *Controller) NavigateTo(ctx context.Context, id string) (model.PageData, error) {
	if id == "" {
		return c.NavigateRoot(ctx)
	}
	prev := c.s.State()
	next := prev.Clone()
	next.Direction = model.DirectionForward
	if next.CurrentID != "" && next.CurrentID != id {
		next.History = append(next.History, next.CurrentID)
	}
	next.CurrentID = id
	if c.opts.InvalidateOnNavigate {
		c.s.Cache.Invalidate(id)
	}
	return c.enter(ctx, prev, next)
}

// NavigateBack pops the history, or returns to the root when it is empty.
func (c *Controller) NavigateBack(ctx context.Context) (model.PageData, error) {
	prev := c.s.State()
	next := prev.Clone()
	next.Direction = model.DirectionBack
	if n := len(next.History); n > 0 {
		next.CurrentID = next.History[n-1]
		next.History = next.History[:n-1]
	} else {
		next.CurrentID = ""
	}
	return c.enter(ctx, prev, next)
}

// NavigateRoot jumps to the root and drops the history.
func (c *Controller) NavigateRoot(ctx context.Context) (model.PageData, error) {
	prev := c.s.State()
	next := model.NavigationState{History: []string{}, Direction: model.DirectionBack}
	if c.opts.InvalidateOnNavigate {
		c.s.Cache.Invalidate("")
	}
	return c.enter(ctx, prev, next)
}

func (c *Controller) enter(ctx context.Context, prev, next model.NavigationState) (model.PageData, error) {
	c.s.SetState(next)
	page, err := c.s.Resolve(ctx)
	if err != nil {
		c.s.SetState(prev)
		return model.PageData{}, err
	}
	c.s.Logger().Debug("navigated",
		"direction", next.Direction,
		"current", model.CacheKey(next.CurrentID),
		"depth", len(next.History),
	)
	if c.opts.ScrollTop != nil {
		c.opts.ScrollTop()
	}
	return page, nil
}

// Crumb is one entry of the breadcrumb trail.
type Crumb struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Breadcrumbs returns root, the history stack and the current level in visit
// order. Titles come from the page cache, fetching any that are missing.
func (c *Controller) Breadcrumbs(ctx context.Context) ([]Crumb, error) {
	st := c.s.State()
	ids := append([]string{""}, st.History...)
	if st.CurrentID != "" {
		ids = append(ids, st.CurrentID)
	}
	out := make([]Crumb, 0, len(ids))
	for _, id := range ids {
		title, ok := c.s.Cache.Title(id)
		if !ok {
			page, err := c.s.Load(ctx, id)
			if err != nil {
				return nil, err
			}
			title = page.ParentTitle
		}
		out = append(out, Crumb{ID: id, Title: title})
	}
	return out, nil
}
