package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"habitline/internal/engine"
	"habitline/internal/habit"
	"habitline/internal/ui"
)

func newAddCmd() *cobra.Command {
	var habitType string
	var schedule string
	var days string
	var every int
	var count int
	var goal int
	var unit string
	var start string
	var end string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a habit",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("name is required")
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

			in := engine.CreateHabitInput{
				Name:     args[0],
				Type:     habit.Type(habitType),
				Schedule: sched,
				Goal:     habit.Goal{Amount: goal, Unit: unit, Period: habit.GoalPerDay},
			}
			if start != "" {
				d, err := habit.ParseDayKey(start)
				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				in.StartDate = d
			}
			if end != "" {
				d, err := habit.ParseDayKey(end)
				if err != nil {
					return fmt.Errorf("invalid --end: %w", err)
				}
				in.EndDate = &d
			}

			h, err := svc.CreateHabit(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s %s %s\n",
				ui.IconPlus, ui.TypeIcon(h.Type), ui.Title.Render(h.Name),
				ui.Muted.Render(fmt.Sprintf("(%s, id %s)", h.Schedule, shortID(h.ID))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&habitType, "type", "t", "build", "Habit type (build|quit)")
	cmd.Flags().StringVarP(&schedule, "schedule", "s", "daily", "Schedule kind (daily|weekdays|weekends|weekday|weekday_list|every_n_days|days_per_week|days_per_month|times_per_week)")
	cmd.Flags().StringVar(&days, "days", "", "Comma-separated weekdays for weekday/weekday_list schedules (e.g. mon,thu)")
	cmd.Flags().IntVar(&every, "every", 2, "Interval in days for every_n_days schedules")
	cmd.Flags().IntVar(&count, "count", 3, "Target count for days_per_week/days_per_month/times_per_week schedules")
	cmd.Flags().IntVarP(&goal, "goal", "g", 1, "Goal amount per day")
	cmd.Flags().StringVarP(&unit, "unit", "u", "count", "Goal unit (count, pages, minutes, ...)")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD, default open-ended)")

	return cmd
}

func buildSchedule(kind, days string, every, count int) (habit.Schedule, error) {
	k, err := habit.ParseScheduleKind(kind)
	if err != nil {
		return habit.Schedule{}, err
	}
	switch k {
	case habit.KindDaily:
		return habit.Daily(), nil
	case habit.KindWeekdays:
		return habit.OnWeekdays(), nil
	case habit.KindWeekends:
		return habit.OnWeekends(), nil
	case habit.KindSingleWeekday:
		wds, err := parseDays(days)
		if err != nil {
			return habit.Schedule{}, err
		}
		if len(wds) != 1 {
			return habit.Schedule{}, errors.New("weekday schedule needs exactly one --days value")
		}
		return habit.On(wds[0]), nil
	case habit.KindWeekdayList:
		wds, err := parseDays(days)
		if err != nil {
			return habit.Schedule{}, err
		}
		if len(wds) == 0 {
			return habit.Schedule{}, errors.New("weekday_list schedule needs --days")
		}
		return habit.OnDays(wds...), nil
	case habit.KindEveryNDays:
		return habit.EveryNDays(every), nil
	case habit.KindDaysPerWeek:
		return habit.DaysPerWeek(count), nil
	case habit.KindDaysPerMonth:
		return habit.DaysPerMonth(count), nil
	case habit.KindTimesPerWeek:
		return habit.TimesPerWeek(count), nil
	}
	return habit.Schedule{}, fmt.Errorf("unsupported schedule kind %q", kind)
}

func parseDays(s string) ([]habit.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []habit.Weekday
	for _, part := range strings.Split(s, ",") {
		wd, err := habit.ParseWeekday(part)
		if err != nil {
			return nil, err
		}
		out = append(out, wd)
	}
	return out, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
