package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/lazytodo/internal/db"
)

func newRemoveCommand(a *app) *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:     "remove [ID...]",
		Aliases: []string{"rm"},
		Short:   "Remove tasks by ID or by tag",
		Long: `Remove tasks by ID or by tag. Subtasks are removed with their parent.
IDs that match no task are reported and skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			byTags := cmd.Flags().Changed("tags")
			switch {
			case byTags && len(args) > 0:
				return errors.New("pass either task IDs or --tags, not both")
			case !byTags && len(args) == 0:
				return errors.New("pass at least one task ID or --tags")
			}

			return a.withStore(cmd, func(ctx context.Context, store *db.Store) error {
				var removed int
				if byTags {
					n, err := store.RemoveByTags(ctx, tags)
					if err != nil {
						return err
					}
					removed = n
				} else {
					result, err := store.RemoveByIDs(ctx, args)
					if err != nil {
						return err
					}
					removed = result.Removed
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d task(s)\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "remove every task with any of these tags")
	return cmd
}

func newClearCommand(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every task and tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if !a.isTerminal() {
					return errors.New("refusing to clear without a terminal, pass --force")
				}
				if !a.confirm(cmd, "Are you sure you want to clear ALL tasks? This cannot be undone. [y/N] ") {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			return a.withStore(cmd, func(ctx context.Context, store *db.Store) error {
				if err := store.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cleared all tasks.")
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

// confirm defaults to no on anything but an explicit yes.
func (a *app) confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, _ := bufio.NewReader(a.stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
