package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"habitline/internal/ui"
)

func newDoneCmd() *cobra.Command {
	var date string
	var amount int

	cmd := &cobra.Command{
		Use:   "done <habit>",
		Short: "Record progress on a habit (full goal by default)",
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

			target := amount
			if target < 0 {
				h, err := svc.FindHabit(ctx, args[0])
				if err != nil {
					return err
				}
				target = h.GoalAmount()
			}

			res, err := svc.SetProgress(ctx, args[0], day, target)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.GoalMet {
				fmt.Fprintf(out, "%s %s %s\n", ui.IconDone, ui.Good.Render(res.Habit.Name), ui.ProgressText(res.Progress, res.Habit.GoalAmount()))
			} else {
				fmt.Fprintf(out, "%s %s %s\n", ui.IconBolt, res.Habit.Name, ui.ProgressText(res.Progress, res.Habit.GoalAmount()))
			}
			fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("XP %d, level %d", res.TotalXP, res.Level)))
			if res.LevelUp {
				fmt.Fprintln(out, ui.IconTrophy+" "+ui.BadgeLevelUp)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Day to record (YYYY-MM-DD, default today)")
	cmd.Flags().IntVarP(&amount, "amount", "a", -1, "Progress amount (default: the habit's full goal)")

	return cmd
}
