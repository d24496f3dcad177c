package cli

import (
	"context"
	"strings"

	"tasknav/internal/format"
	"tasknav/internal/model"

	"github.com/spf13/cobra"
)

func newPageCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "page [task-id]",
		Short: "Print the children of a task (root when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			e, closeFn, err := openEngine(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			id := ""
			if len(args) == 1 {
				id = strings.TrimSpace(args[0])
			}
			if err := e.enter(ctx, id); err != nil {
				return writeErr(cmd, err)
			}
			p, err := e.pageView(ctx, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, p)
		},
	}
}

// pageView renders the displayed level with its breadcrumb trail.
func (e engine) pageView(ctx context.Context, task *model.Task) (format.Page, error) {
	snap := e.session.Snapshot()
	crumbs, err := e.nav.Breadcrumbs(ctx)
	if err != nil {
		return format.Page{}, err
	}
	titles := make([]string, 0, len(crumbs))
	for _, c := range crumbs {
		titles = append(titles, c.Title)
	}
	children := snap.Page.Children
	if children == nil {
		children = []model.Task{}
	}
	return format.Page{
		ID:          snap.Nav.CurrentID,
		ParentTitle: snap.Page.ParentTitle,
		Breadcrumbs: titles,
		Children:    children,
		Task:        task,
	}, nil
}
