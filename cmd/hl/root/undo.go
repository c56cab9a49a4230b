package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"habitline/internal/ui"
)

func newUndoCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "undo <habit>",
		Short: "Clear a habit's progress for a day",
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

			day, err := parseDateFlag(date)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}

			res, err := svc.SetProgress(ctx, args[0], day, 0)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s on %s %s\n",
				ui.Title.Render(res.Habit.Name), res.Day,
				ui.Muted.Render(fmt.Sprintf("(XP %d, level %d)", res.TotalXP, res.Level)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Day to clear (YYYY-MM-DD, default today)")

	return cmd
}
