package cli

import (
	"fmt"

	"ai-menu-assistant/internal/config"

	"github.com/spf13/cobra"
)

var (
	usageDays  int
	usagePrune int
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Oracle token usage from the metrics store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewFromEnv()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		store, err := openMetrics(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if usagePrune > 0 {
			affected, err := store.Cleanup(usagePrune)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d old metric records.\n", affected)
			return nil
		}

		daily, err := store.GetDailyUsage(usageDays)
		if err != nil {
			return err
		}
		if len(daily) == 0 {
			fmt.Println("No oracle usage recorded yet")
			return nil
		}
		for _, day := range daily {
			fmt.Printf("%s  prompt=%d completion=%d calls=%d\n", day.Date, day.TotalPrompt, day.TotalCompletion, day.Calls)
		}
		return nil
	},
}

func init() {
	usageCmd.Flags().IntVar(&usageDays, "days", 30, "How many days back to report")
	usageCmd.Flags().IntVar(&usagePrune, "prune", 0, "Remove records older than N days instead of reporting")
	rootCmd.AddCommand(usageCmd)
}
