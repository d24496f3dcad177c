package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tasknav/internal/rpc"
	"tasknav/internal/store"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task repository over HTTP for remote clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Backend == store.BackendRemote {
				return writeErr(cmd, errors.New("serve needs a local backend (sqlite or memory)"))
			}
			ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			r, closeFn, err := openRepo(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			srv := &http.Server{
				Addr:              addr,
				Handler:           rpc.NewServer(r, app.log),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			app.log.Info("serving", "addr", addr, "backend", app.Backend, "dir", app.Dir)
			fmt.Fprintf(cmd.ErrOrStderr(), "tasknav: serving %s on %s\n", app.Backend, addr)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return writeErr(cmd, err)
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:7777", "Listen address")
	return cmd
}
