package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"habitline/internal/ui"
)

const Version = "0.1.0"

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "hl",
	Short:         "Habitline — local-first habit tracker with XP progression",
	Long:          "Habitline is a local-first CLI/TUI habit tracker with recurrence schedules, floating completion windows and XP-based progression.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newAddCmd(),
		newScheduleCmd(),
		newDoneCmd(),
		newUndoCmd(),
		newTodayCmd(),
		newListCmd(),
		newStatsCmd(),
		newStatusCmd(),
		newProfileCmd(),
		newRemoveCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
