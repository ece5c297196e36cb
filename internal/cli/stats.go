package cli

import (
	"github.com/spf13/cobra"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Dish frequency over recent days",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, cleanup, err := newRunner(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if err := runner.Authenticate(cmd.Context()); err != nil {
			return err
		}
		return runner.DishStats(cmd.Context(), statsDays)
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", 30, "How many days back to scan")
	rootCmd.AddCommand(statsCmd)
}
