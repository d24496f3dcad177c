package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"tasknav/internal/format"
	"tasknav/internal/store"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Backend    string
	Remote     string
	PrettyJSON bool
	Format     string
	LogLevel   string

	cfg *store.Config
	log *slog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "tasknav",
		Short:        "Browse and edit a task tree one level at a time",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive browser
  tasknav

  # Print the root level, or the children of one task
  tasknav page
  tasknav page 6f1c7d1e-1111-4bcb-9a57-0d6d3c7f2a10

  # Direct lookup (shortcut for: tasknav page <task-id>)
  tasknav 6f1c7d1e-1111-4bcb-9a57-0d6d3c7f2a10

  # Serve the local database to other machines
  tasknav serve --addr :7777
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.init(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("TASKNAV_DIR", ""), "Data directory holding tasks.sqlite (default: dataDir from config)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", envOr("TASKNAV_BACKEND", ""), "Task backend (sqlite|remote|memory)")
	cmd.PersistentFlags().StringVar(&app.Remote, "remote", envOr("TASKNAV_REMOTE", ""), "Base URL of a `tasknav serve` instance (implies --backend remote)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output (and render markdown)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKNAV_FORMAT", "json"), "Output format (json|text|markdown)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("TASKNAV_LOG_LEVEL", ""), "Log level (debug|info|warn|error)")

	cmd.AddCommand(newPageCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newRenameCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newReorderCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// init merges flags, env and the config file. Flags and env win over the
// file.
func (app *App) init(cmd *cobra.Command) error {
	cfg, err := store.LoadConfig()
	if err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg
	if strings.TrimSpace(app.Dir) == "" {
		app.Dir = cfg.DataDir
	}
	if strings.TrimSpace(app.Remote) == "" {
		app.Remote = cfg.RemoteURL
	} else if strings.TrimSpace(app.Backend) == "" {
		app.Backend = store.BackendRemote
	}
	if strings.TrimSpace(app.Backend) == "" {
		app.Backend = cfg.Backend
	}
	app.Backend = strings.ToLower(strings.TrimSpace(app.Backend))
	if strings.TrimSpace(app.LogLevel) == "" {
		app.LogLevel = cfg.LogLevel
	}
	log, err := newLogger(cmd.ErrOrStderr(), app.LogLevel)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.log = log
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
