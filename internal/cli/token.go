package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Set or replace the stored refresh token",
	Long:  "Prompt for a refresh token, verify it against the provider and store it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, cleanup, err := newRunner(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if err := runner.UpdateToken(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Token saved")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
