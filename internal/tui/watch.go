package tui

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// storeChangedMsg reports a write to the watched data directory.
type storeChangedMsg struct{}

const watchDebounce = 250 * time.Millisecond

// dirWatcher turns bursts of writes to the task database files under dir
// into single storeChangedMsg notifications.
type dirWatcher struct {
	w       *fsnotify.Watcher
	changes chan struct{}
	log     *slog.Logger
}

func newDirWatcher(dir string, log *slog.Logger) (*dirWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}
	dw := &dirWatcher{w: w, changes: make(chan struct{}, 1), log: log}
	go dw.loop()
	return dw, nil
}

func watchedFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, "tasks.sqlite") || base == "tasks.json"
}

func (d *dirWatcher) loop() {
	defer close(d.changes)
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case ev, ok := <-d.w.Events:
			if !ok {
				return
			}
			if !watchedFile(ev.Name) || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			select {
			case d.changes <- struct{}{}:
			default:
			}
		case err, ok := <-d.w.Errors:
			if !ok {
				return
			}
			d.log.Warn("watch error", "err", err)
		}
	}
}

// wait blocks until the next change and reports it to the program.
func (d *dirWatcher) wait() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-d.changes; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func (d *dirWatcher) Close() error {
	return d.w.Close()
}
