package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tasknav/internal/localtree"
	"tasknav/internal/mutate"
	"tasknav/internal/nav"
	"tasknav/internal/repo"
	"tasknav/internal/rpc"
	"tasknav/internal/session"
	"tasknav/internal/store"
)

// openRepo opens the configured backend. The returned func releases it.
func openRepo(ctx context.Context, app *App) (repo.Repository, func(), error) {
	switch app.Backend {
	case store.BackendSQLite, "":
		s, err := store.Open(ctx, app.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case store.BackendRemote:
		if strings.TrimSpace(app.Remote) == "" {
			return nil, nil, fmt.Errorf("backend remote needs --remote or remoteUrl in config")
		}
		return rpc.NewClient(app.Remote), func() {}, nil
	case store.BackendMemory:
		return localtree.NewRepository(nil), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend: %s", app.Backend)
	}
}

// engine bundles one session with its navigation controller and mutation
// coordinator.
type engine struct {
	session *session.Session
	nav     *nav.Controller
	mut     *mutate.Coordinator
}

func newEngine(r repo.Repository, cfg *store.Config, log *slog.Logger) engine {
	rootTitle := ""
	invalidate := false
	if cfg != nil {
		rootTitle = cfg.RootTitle
		invalidate = cfg.InvalidateOnNavigate
	}
	s := session.New(r, session.Options{RootTitle: rootTitle, Logger: log})
	return engine{
		session: s,
		nav:     nav.New(s, nav.Options{InvalidateOnNavigate: invalidate}),
		mut:     mutate.New(s),
	}
}

func openEngine(ctx context.Context, app *App) (engine, func(), error) {
	r, closeFn, err := openRepo(ctx, app)
	if err != nil {
		return engine{}, nil, err
	}
	return newEngine(r, app.cfg, app.log), closeFn, nil
}

// enter makes id the displayed level ("" is root).
func (e engine) enter(ctx context.Context, id string) error {
	if id == "" {
		_, err := e.nav.NavigateRoot(ctx)
		return err
	}
	_, err := e.nav.NavigateTo(ctx, id)
	return err
}
