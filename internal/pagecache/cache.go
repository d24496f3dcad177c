// Package pagecache caches resolved pages (a parent's title plus its direct
// children) keyed by parent id.
//
// Entries are only ever deleted, never patched: a stale page is invalidated
// and re-fetched from the repository on the next read.
package pagecache

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"tasknav/internal/model"
	"tasknav/internal/repo"
)

type Stats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}

type Cache struct {
	repo      repo.Repository
	rootTitle string
	log       *slog.Logger

	// mu guards the maps only; backend calls happen outside it, so two
	// overlapping fetches of one key both complete and the last write wins.
	mu       sync.Mutex
	children map[string][]model.Task
	titles   map[string]string
	stats    Stats
}

func New(r repo.Repository, rootTitle string, log *slog.Logger) *Cache {
	if strings.TrimSpace(rootTitle) == "" {
		rootTitle = model.DefaultRootTitle
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{
		repo:      r,
		rootTitle: rootTitle,
		log:       log,
		children:  map[string][]model.Task{},
		titles:    map[string]string{},
	}
}

// GetOrFetch returns the page for parentID ("" is root), fetching whatever
// part is not cached. On error nothing is written to the cache.
func (c *Cache) GetOrFetch(ctx context.Context, parentID string) (model.PageData, error) {
	key := model.CacheKey(parentID)

	c.mu.Lock()
	kids, haveKids := c.children[key]
	title, haveTitle := c.titles[parentID]
	c.mu.Unlock()

	if parentID == "" {
		title, haveTitle = c.rootTitle, true
	}
	if haveKids && haveTitle {
		c.mu.Lock()
		c.stats.Hits++
		c.mu.Unlock()
		c.log.Debug("page cache hit", "key", key)
		return model.PageData{ParentTitle: title, Children: model.CloneTasks(kids)}, nil
	}

	c.log.Debug("page cache miss", "key", key, "title", !haveTitle, "children", !haveKids)
	if !haveTitle {
		parent, err := c.repo.GetTask(ctx, parentID)
		if err != nil {
			return model.PageData{}, err
		}
		title = parent.Title
	}
	if !haveKids {
		fetched, err := repo.LoadChildren(ctx, c.repo, parentID)
		if err != nil {
			return model.PageData{}, err
		}
		kids = model.DirectChildren(fetched)
	}

	c.mu.Lock()
	c.stats.Misses++
	if !haveTitle {
		c.titles[parentID] = title
	}
	if !haveKids {
		c.children[key] = kids
	}
	c.mu.Unlock()

	return model.PageData{ParentTitle: title, Children: model.CloneTasks(kids)}, nil
}

// Invalidate drops the cached child list of parentID. Descendant pages and
// cached titles are left alone.
func (c *Cache) Invalidate(parentID string) {
	key := model.CacheKey(parentID)
	c.mu.Lock()
	delete(c.children, key)
	c.mu.Unlock()
	c.log.Debug("page cache invalidate", "key", key)
}

// InvalidateTitle drops the cached title of id.
func (c *Cache) InvalidateTitle(id string) {
	c.mu.Lock()
	delete(c.titles, id)
	c.mu.Unlock()
	c.log.Debug("page cache invalidate title", "id", id)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.children = map[string][]model.Task{}
	c.titles = map[string]string{}
	c.mu.Unlock()
	c.log.Debug("page cache cleared")
}

// Has reports whether the child list of parentID is cached.
func (c *Cache) Has(parentID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.children[model.CacheKey(parentID)]
	return ok
}

// Title returns the cached title of id, if any.
func (c *Cache) Title(id string) (string, bool) {
	if id == "" {
		return c.rootTitle, true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.titles[id]
	return t, ok
}

func (c *Cache) RootTitle() string { return c.rootTitle }

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
