package cli

import (
	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Run the day-selection workflow",
	RunE:  runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	runner, cleanup, err := newRunner(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	return runner.Run(cmd.Context())
}
