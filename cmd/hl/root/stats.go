package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"habitline/internal/habit"
	"habitline/internal/progress"
	"habitline/internal/ui"
)

func newStatsCmd() *cobra.Command {
	var habitType string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion stats and trends",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			habits, err := svc.Habits(ctx)
			if err != nil {
				return err
			}

			now := time.Now()
			thisWeek := habit.WeekOf(now)
			lastWeek := habit.WeekOf(now.AddDate(0, 0, -7))
			thisMonth := habit.MonthOf(now)

			today := progress.DayCompletionRatio(now, now, habits)
			weekCur := progress.PeriodCompletionRatio(thisWeek, now, habits)
			weekPrev := progress.PeriodCompletionRatio(lastWeek, now, habits)
			month := progress.PeriodCompletionRatio(thisMonth, now, habits)
			trend := progress.TrendOf(weekCur, weekPrev)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconChart, "Stats"))
			fmt.Fprintf(out, "%s %s %.0f%%\n", ui.Key.Render("Today:"), ui.Bar(today, 20), today*100)
			fmt.Fprintf(out, "%s  %s %.0f%%\n", ui.Key.Render("Week:"), ui.Bar(weekCur, 20), weekCur*100)
			fmt.Fprintf(out, "%s %s %.0f%%\n", ui.Key.Render("Month:"), ui.Bar(month, 20), month*100)
			fmt.Fprintf(out, "%s %s %s\n", ui.Key.Render("Trend:"), ui.TrendText(trend), ui.Muted.Render(fmt.Sprintf("(last week %.0f%%)", weekPrev*100)))
			fmt.Fprintln(out, "")

			filter := habit.Type(habitType)
			if best, ratio, ok := progress.TopPerforming(thisWeek, now, habits, filter); ok {
				fmt.Fprintf(out, "%s %s %s\n", ui.IconTrophy, best.Name, ui.Good.Render(fmt.Sprintf("%.0f%%", ratio*100)))
			}
			if worst, ratio, ok := progress.NeedsAttention(thisWeek, now, habits, filter); ok {
				fmt.Fprintf(out, "%s %s %s\n", ui.IconWarn, worst.Name, ui.Bad.Render(fmt.Sprintf("%.0f%%", ratio*100)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&habitType, "type", "t", "", "Restrict rankings to one habit type (build|quit)")

	return cmd
}
