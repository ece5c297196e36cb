package cli

import (
	"fmt"
	"os"

	"ai-menu-assistant/internal/prefs"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded recommendation overrides",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Only the preference file is needed here; skip full config
		// validation so the command works without oracle credentials.
		store, err := prefs.NewStore(os.Getenv("PREFERENCES_PATH"))
		if err != nil {
			return err
		}
		snapshot, err := store.Load()
		if err != nil {
			return err
		}

		if len(snapshot.Adjustments) == 0 {
			fmt.Println("No overrides recorded yet")
			return nil
		}
		for _, adjustment := range snapshot.Adjustments {
			fmt.Printf("%s  %s -> %s\n", adjustment.Date, adjustment.From, adjustment.To)
			if adjustment.Reason != "" {
				fmt.Printf("            because: %s\n", adjustment.Reason)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
