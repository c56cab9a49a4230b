package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"habitline/internal/ui"
)

func newScheduleCmd() *cobra.Command {
	var schedule string
	var days string
	var every int
	var count int

	cmd := &cobra.Command{
		Use:   "schedule <habit>",
		Short: "Replace a habit's schedule",
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

			sched, err := buildSchedule(schedule, days, every, count)
			if err != nil {
				return err
			}

			h, err := svc.ReplaceSchedule(ctx, args[0], sched)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s now runs %s %s\n",
				ui.IconHabit, ui.Title.Render(h.Name), h.Schedule,
				ui.Muted.Render("(XP recomputed)"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&schedule, "schedule", "s", "daily", "Schedule kind (daily|weekdays|weekends|weekday|weekday_list|every_n_days|days_per_week|days_per_month|times_per_week)")
	cmd.Flags().StringVar(&days, "days", "", "Comma-separated weekdays for weekday/weekday_list schedules (e.g. mon,thu)")
	cmd.Flags().IntVar(&every, "every", 2, "Interval in days for every_n_days schedules")
	cmd.Flags().IntVar(&count, "count", 3, "Target count for days_per_week/days_per_month/times_per_week schedules")

	return cmd
}
