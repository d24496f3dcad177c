package cli

import (
	"errors"
	"strings"

	"tasknav/internal/store"

	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <tasks.json>",
		Short: "Import a nested tasks.json export into the local database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Backend != store.BackendSQLite {
				return writeErr(cmd, errors.New("import needs the sqlite backend"))
			}
			ctx := commandContext(cmd)
			s, err := store.Open(ctx, app.Dir)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			n, err := s.ImportJSON(ctx, strings.TrimSpace(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"imported": n, "dir": app.Dir})
		},
	}
}
