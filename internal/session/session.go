// Package session holds the per-session state shared by navigation and
// mutations: the page cache, the navigation state and the page currently on
// display.
package session

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"tasknav/internal/model"
	"tasknav/internal/pagecache"
	"tasknav/internal/repo"
)

// Snapshot is the published state consumed by renderers.
type Snapshot struct {
	Nav  model.NavigationState `json:"navigation"`
	Page model.PageData        `json:"page"`
}

type Options struct {
	RootTitle string
	Logger    *slog.Logger
}

type Session struct {
	Repo  repo.Repository
	Cache *pagecache.Cache
	log   *slog.Logger

	mu     sync.Mutex
	nav    model.NavigationState
	page   model.PageData
	nextID int
	subs   map[int]func(Snapshot)
}

func New(r repo.Repository, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		Repo:  r,
		Cache: pagecache.New(r, opts.RootTitle, log),
		log:   log,
		nav:   model.InitialNavigationState(),
		page:  model.PageData{ParentTitle: rootTitle(opts.RootTitle), Children: []model.Task{}},
		subs:  map[int]func(Snapshot){},
	}
}

func rootTitle(t string) string {
	if t == "" {
		return model.DefaultRootTitle
	}
	return t
}

func (s *Session) Logger() *slog.Logger { return s.log }

func (s *Session) State() model.NavigationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Clone()
}

// SetState replaces the navigation state. Only the navigation controller
// writes it.
func (s *Session) SetState(st model.NavigationState) {
	s.mu.Lock()
	s.nav = st.Clone()
	s.mu.Unlock()
}

func (s *Session) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.CurrentID
}

func (s *Session) Page() model.PageData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page.Clone()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Nav: s.nav.Clone(), Page: s.page.Clone()}
}

// Subscribe registers fn to receive every published snapshot. The returned
// func removes the subscription.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Load resolves the page of parentID through the cache without publishing it.
func (s *Session) Load(ctx context.Context, parentID string) (model.PageData, error) {
	return s.Cache.GetOrFetch(ctx, parentID)
}

// Publish makes page the displayed page and notifies subscribers.
func (s *Session) Publish(page model.PageData) {
	s.mu.Lock()
	s.page = page.Clone()
	snap := Snapshot{Nav: s.nav.Clone(), Page: s.page.Clone()}
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// Resolve fetches the current level through the cache and publishes it.
func (s *Session) Resolve(ctx context.Context) (model.PageData, error) {
	id := s.CurrentID()
	page, err := s.Load(ctx, id)
	if err != nil {
		s.log.Debug("resolve failed", "key", model.CacheKey(id), "err", err)
		return model.PageData{}, err
	}
	s.Publish(page)
	return page, nil
}

// Clear resets navigation to the root and empties the cache. The displayed
// page is reset to an empty root page, which is published to subscribers.
func (s *Session) Clear() {
	s.Cache.Clear()
	s.mu.Lock()
	s.nav = model.InitialNavigationState()
	s.mu.Unlock()
	s.log.Debug("session cleared")
	s.Publish(model.PageData{ParentTitle: s.Cache.RootTitle(), Children: []model.Task{}})
}
