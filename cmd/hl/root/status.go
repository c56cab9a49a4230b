package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"habitline/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show XP, level and recent XP history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			snap := svc.XP().Snapshot()
			toNext := snap.XPForNextLevel - snap.TotalXP
			if toNext < 0 {
				toNext = 0
			}
			span := snap.XPForNextLevel - snap.XPForCurrentLevel
			var ratio float64
			if span > 0 {
				ratio = float64(snap.TotalXP-snap.XPForCurrentLevel) / float64(span)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Status"))
			fmt.Fprintln(out, ui.LabelValue("Profile", snap.Identity))
			fmt.Fprintln(out, ui.LabelValue("Level", snap.Level))
			fmt.Fprintln(out, ui.LabelValue("Total XP", fmt.Sprintf("%d (next at %d, %d to go)", snap.TotalXP, snap.XPForNextLevel, toNext)))
			fmt.Fprintln(out, ui.LabelValue("Today", fmt.Sprintf("+%d XP", snap.DailyXP)))
			fmt.Fprintf(out, "%s %s\n", ui.Key.Render("Progress:"), ui.Bar(ratio, 30))
			fmt.Fprintln(out, "")

			entries, err := svc.LedgerRepo().List(ctx, svc.Identity())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.H2.Render(ui.IconScroll+" Recent XP"))
			if len(entries) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no XP history yet)"))
				return nil
			}
			for _, e := range entries {
				sign := "+"
				if e.Amount < 0 {
					sign = ""
				}
				fmt.Fprintf(out, "- %s%d XP %s %s\n", sign, e.Amount, e.Reason, ui.Muted.Render(e.CreatedAt.Local().Format("2006-01-02 15:04")))
			}
			return nil
		},
	}

	return cmd
}
