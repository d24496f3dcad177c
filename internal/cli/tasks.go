package cli

import (
	"context"
	"strings"

	"tasknav/internal/mutate"
	"tasknav/internal/repo"

	"github.com/spf13/cobra"
)

// runMutation opens the backend, displays level in, applies fn and prints
// the refreshed level.
func runMutation(cmd *cobra.Command, app *App, in string, fn func(ctx context.Context, e engine) (mutate.Result, error)) error {
	ctx := commandContext(cmd)
	e, closeFn, err := openEngine(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer closeFn()

	if err := e.enter(ctx, strings.TrimSpace(in)); err != nil {
		return writeErr(cmd, err)
	}
	res, err := fn(ctx, e)
	if err != nil {
		return writeErr(cmd, err)
	}
	p, err := e.pageView(ctx, res.Task)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, p)
}

func newAddCmd(app *App) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task as the last child of --parent (root when omitted)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			return runMutation(cmd, app, parent, func(ctx context.Context, e engine) (mutate.Result, error) {
				return e.mut.Add(ctx, strings.TrimSpace(parent), title)
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent task id")
	return cmd
}

func newRenameCmd(app *App) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "rename <task-id> <title>",
		Short: "Change a task's title",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			title := strings.Join(args[1:], " ")
			return runMutation(cmd, app, in, func(ctx context.Context, e engine) (mutate.Result, error) {
				return e.mut.Update(ctx, id, title)
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "Level to print afterwards (task id; root when omitted)")
	return cmd
}

func newToggleCmd(app *App) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "toggle <task-id>",
		Short: "Flip a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return runMutation(cmd, app, in, func(ctx context.Context, e engine) (mutate.Result, error) {
				return e.mut.Toggle(ctx, id)
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "Level to print afterwards (task id; root when omitted)")
	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"remove"},
		Short:   "Delete a task and its subtree",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			level := strings.TrimSpace(in)
			return runMutation(cmd, app, level, func(ctx context.Context, e engine) (mutate.Result, error) {
				res, err := e.mut.Remove(ctx, id)
				if err == nil || !repo.IsNotFound(err) || level == "" {
					return res, err
				}
				// The displayed level went away with the removed subtree.
				if _, gerr := e.session.Repo.GetTask(ctx, level); !repo.IsNotFound(gerr) {
					return res, err
				}
				e.session.Cache.Invalidate("")
				page, err := e.nav.NavigateRoot(ctx)
				return mutate.Result{Page: page}, err
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "Level to print afterwards (task id; root when omitted)")
	return cmd
}

func newReorderCmd(app *App) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "reorder <task-id>...",
		Short: "Set the child order of --parent (root when omitted); every child must be listed once",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order := make([]string, 0, len(args))
			for _, a := range args {
				order = append(order, strings.TrimSpace(a))
			}
			return runMutation(cmd, app, parent, func(ctx context.Context, e engine) (mutate.Result, error) {
				return e.mut.Reorder(ctx, strings.TrimSpace(parent), order)
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent task id")
	return cmd
}

func newMoveCmd(app *App) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Re-parent a task under --to (root when omitted) as its last child",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return runMutation(cmd, app, to, func(ctx context.Context, e engine) (mutate.Result, error) {
				return e.mut.Move(ctx, id, strings.TrimSpace(to))
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "New parent task id")
	return cmd
}
