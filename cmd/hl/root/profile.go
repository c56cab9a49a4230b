package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"habitline/internal/ui"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the active profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			snap := svc.XP().Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.IconProfile, ui.Title.Render(svc.Identity()),
				ui.Muted.Render(fmt.Sprintf("(level %d, %d XP)", snap.Level, snap.TotalXP)))
			return nil
		},
	}

	cmd.AddCommand(newProfileUseCmd())

	return cmd
}

func newProfileUseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <name>",
		Short: "Switch to a profile (creates it on first use)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
				return errors.New("profile name is required")
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

			name := strings.TrimSpace(args[0])
			if err := svc.Provider().SetCurrentIdentity(ctx, name); err != nil {
				return err
			}
			if err := svc.SwitchIdentity(ctx, name); err != nil {
				return err
			}

			snap := svc.XP().Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "%s Switched to %s %s\n", ui.IconProfile, ui.Title.Render(name),
				ui.Muted.Render(fmt.Sprintf("(level %d, %d XP)", snap.Level, snap.TotalXP)))
			return nil
		},
	}

	return cmd
}
