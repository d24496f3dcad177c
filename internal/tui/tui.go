// Package tui is the interactive page browser: one tree level at a time,
// driven by the navigation controller and mutation coordinator.
package tui

import (
	"context"
	"strings"

	"tasknav/internal/mutate"
	"tasknav/internal/nav"
	"tasknav/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Session  *session.Session
	Navigate *nav.Controller
	Mutate   *mutate.Coordinator
	// WatchDir, when set, reloads the page after external writes to the
	// task database in that directory.
	WatchDir string
}

func Run(ctx context.Context, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()

	m := newAppModel(ctx, opts.Session, opts.Navigate, opts.Mutate)
	if dir := strings.TrimSpace(opts.WatchDir); dir != "" {
		w, err := newDirWatcher(dir, opts.Session.Logger())
		if err != nil {
			opts.Session.Logger().Warn("watch disabled", "dir", dir, "err", err)
		} else {
			defer w.Close()
			m.watcher = w
		}
	}
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
