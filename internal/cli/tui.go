package cli

import (
	"tasknav/internal/store"
	"tasknav/internal/tui"

	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, app *App) error {
	ctx := commandContext(cmd)
	// The TUI owns the terminal, so logs go to a file next to the data.
	if log, closeLog, err := openFileLogger(app.Dir, app.LogLevel); err == nil {
		defer closeLog()
		app.log = log
	}
	e, closeFn, err := openEngine(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer closeFn()

	watchDir := ""
	if app.Backend == store.BackendSQLite {
		watchDir = app.Dir
	}
	return tui.Run(ctx, tui.Options{
		Session:  e.session,
		Navigate: e.nav,
		Mutate:   e.mut,
		WatchDir: watchDir,
	})
}
