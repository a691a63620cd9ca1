package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/lazytodo/internal/db"
	"github.com/Joseda-hg/lazytodo/internal/deadline"
	"github.com/Joseda-hg/lazytodo/internal/display"
	"github.com/Joseda-hg/lazytodo/internal/model"
)

func newAddCommand(a *app) *cobra.Command {
	var (
		input      model.TaskInput
		difficulty int
	)

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a new task",
		Long:  "Add a new task. The title is every positional argument joined by spaces.\n\n" + deadline.Formats,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Title = strings.Join(args, " ")
			if cmd.Flags().Changed("diff") {
				input.Difficulty = &difficulty
			}

			return a.withStore(cmd, func(ctx context.Context, store *db.Store) error {
				task, err := store.CreateTask(ctx, input)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added task with ID %s\n", model.ShortID(task.ID))
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&input.Description, "description", "d", "", "task description")
	flags.IntVar(&difficulty, "diff", 0, "difficulty from 0 to 10")
	flags.StringVarP(&input.Deadline, "deadline", "l", "", "deadline, e.g. tomorrow, friday, 2w, 2026-03-01")
	flags.StringSliceVarP(&input.Tags, "tags", "t", nil, "comma separated tags")
	flags.StringVar(&input.Parent, "pid", "", "ID of the parent task")
	return cmd
}

func newCompleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "complete ID",
		Aliases: []string{"done"},
		Short:   "Mark a task as complete",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *db.Store) error {
				task, err := store.CompleteTask(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task with ID %s marked as complete\n", model.ShortID(task.ID))
				return nil
			})
		},
	}
}

func newUpdateCommand(a *app) *cobra.Command {
	var (
		title, description, due, parent string
		difficulty                      int
		tags                            []string
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update the fields of a task",
		Long: `Update the fields of a task. Only the flags given are changed.
An empty value clears the description, deadline, tags or parent.

` + deadline.Formats,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var patch model.TaskPatch
			if flags.Changed("task") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("diff") {
				patch.Difficulty = &difficulty
			}
			if flags.Changed("deadline") {
				patch.Deadline = &due
			}
			if flags.Changed("tags") {
				patch.Tags = &tags
			}
			if flags.Changed("pid") {
				patch.Parent = &parent
			}
			if patch.Empty() {
				return errors.New("nothing to update, pass at least one field flag")
			}

			return a.withStore(cmd, func(ctx context.Context, store *db.Store) error {
				before, err := store.GetTask(ctx, args[0])
				if err != nil {
					return err
				}
				after, err := store.UpdateTask(ctx, before.ID, patch)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Updated task with ID %s\n", model.ShortID(after.ID))
				for _, change := range display.Changes(before, after) {
					fmt.Fprintf(out, "  %s\n", change)
				}
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&title, "task", "", "new title")
	flags.StringVarP(&description, "description", "d", "", "new description")
	flags.IntVar(&difficulty, "diff", 0, "new difficulty from 0 to 10")
	flags.StringVarP(&due, "deadline", "l", "", "new deadline")
	flags.StringSliceVarP(&tags, "tags", "t", nil, "replacement tags, comma separated")
	flags.StringVar(&parent, "pid", "", "new parent task ID")
	return cmd
}

func newNextCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Show the open task to work on next",
		Long:  "Show the open task with the earliest deadline. Harder tasks win ties.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *db.Store) error {
				task, err := store.NextTask(ctx)
				if err != nil {
					return err
				}
				return display.RenderTask(cmd.OutOrStdout(), task, a.now())
			})
		},
	}
}

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show the details of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *db.Store) error {
				task, err := store.GetTask(ctx, args[0])
				if err != nil {
					return err
				}
				return display.RenderTask(cmd.OutOrStdout(), task, a.now())
			})
		},
	}
}
