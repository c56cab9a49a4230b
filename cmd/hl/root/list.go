package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"habitline/internal/habit"
	"habitline/internal/ui"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all habits",
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

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, "Habits"))
			if len(habits) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no habits yet — try `hl add`)"))
				return nil
			}
			for i := range habits {
				h := &habits[i]
				bounds := "from " + habit.DayKey(h.StartDate)
				if h.EndDate != nil {
					bounds += " to " + habit.DayKey(*h.EndDate)
				}
				fmt.Fprintf(out, "%s %s %s\n", ui.TypeIcon(h.Type), ui.Key.Render(h.Name), ui.Muted.Render(fmt.Sprintf("(id %s)", shortID(h.ID))))
				fmt.Fprintf(out, "   %s, goal %d %s/day, %s\n", h.Schedule, h.GoalAmount(), h.Goal.Unit, ui.Muted.Render(bounds))
			}
			return nil
		},
	}

	return cmd
}
