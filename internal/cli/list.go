package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/lazytodo/internal/db"
	"github.com/Joseda-hg/lazytodo/internal/display"
	"github.com/Joseda-hg/lazytodo/internal/model"
)

type listOptions struct {
	view      string
	columns   []string
	tags      []string
	parent    string
	all       bool
	completed bool
}

func newListCommand(a *app) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `List tasks ordered by deadline, soonest first, then by difficulty.
Open tasks are listed unless --all or --completed is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *db.Store) error {
				columns, err := opts.resolveColumns(cmd, a)
				if err != nil {
					return err
				}

				tasks, err := store.ListTasks(ctx, opts.filter())
				if err != nil {
					return err
				}
				return display.RenderTable(cmd.OutOrStdout(), tasks, columns, a.now())
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.view, "view", "v", "", "view mode: minimal, compact or full")
	flags.StringSliceVarP(&opts.columns, "columns", "c", nil, "columns to show, comma separated")
	flags.StringSliceVarP(&opts.tags, "tags", "t", nil, "only tasks with any of these tags")
	flags.StringVar(&opts.parent, "pid", "", "only subtasks of this parent ID")
	flags.BoolVarP(&opts.all, "all", "a", false, "include completed tasks")
	flags.BoolVar(&opts.completed, "completed", false, "only completed tasks")

	cmd.MarkFlagsMutuallyExclusive("view", "columns")
	cmd.MarkFlagsMutuallyExclusive("tags", "pid")
	cmd.MarkFlagsMutuallyExclusive("all", "completed")
	return cmd
}

func (o listOptions) filter() model.Filter {
	filter := model.Filter{Tags: o.tags, ParentPrefix: o.parent}
	switch {
	case o.all:
		filter.Scope = model.ScopeAll
	case o.completed:
		filter.Scope = model.ScopeCompleted
	}
	return filter
}

// resolveColumns picks flags first, then the configured columns, then the
// configured view.
func (o listOptions) resolveColumns(cmd *cobra.Command, a *app) ([]display.Column, error) {
	flags := cmd.Flags()
	switch {
	case flags.Changed("columns"):
		return display.ParseColumns(o.columns)
	case flags.Changed("view"):
		return display.ViewColumns(o.view)
	case len(a.cfg.Columns) > 0:
		return display.ParseColumns(a.cfg.Columns)
	default:
		return display.ViewColumns(a.cfg.View)
	}
}

func newTagsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the tags in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *db.Store) error {
				names, err := store.ListTagNames(ctx)
				if err != nil {
					return err
				}
				return display.RenderTags(cmd.OutOrStdout(), names)
			})
		},
	}
}
