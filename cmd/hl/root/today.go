package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"habitline/internal/habit"
	"habitline/internal/ui"
)

func newTodayCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the habits scheduled today",
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

			instances, err := svc.InstancesOn(ctx, day, time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconHabit, "Today — "+habit.DayKey(day)))
			if len(instances) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(nothing scheduled)"))
				return nil
			}
			for _, inst := range instances {
				mark := ui.Muted.Render("[ ]")
				if inst.Completed() {
					mark = ui.Good.Render("[x]")
				}
				carried := ""
				if !habit.SameDay(inst.OriginalDate, inst.CurrentDate) {
					carried = " " + ui.Warn.Render("(carried)")
				}
				fmt.Fprintf(out, "%s %s %s%s\n", mark, inst.Name, ui.ProgressText(inst.Progress, inst.GoalAmount), carried)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Day to show (YYYY-MM-DD, default today)")

	return cmd
}
