package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"habitline/internal/ui"
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <habit>",
		Aliases: []string{"rm"},
		Short:   "Remove a habit and its history",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("habit id, id prefix or name is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			h, err := svc.FindHabit(ctx, args[0])
			if err != nil {
				return err
			}
			if err := svc.DeleteHabit(ctx, h.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", ui.Title.Render(h.Name), ui.Muted.Render("(history deleted, XP recomputed)"))
			return nil
		},
	}

	return cmd
}
