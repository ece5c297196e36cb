// Package cli wires the application commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ai-menu-assistant",
	Short: "Pick daily dishes for a meal-delivery subscription with an AI assistant",
	Long: `ai-menu-assistant automates daily menu selection for a subscription
meal-delivery service. It finds upcoming days whose menus are still open,
asks a language model to recommend one dish per meal slot based on your
recent choices, lets you confirm or override each pick, and submits the
resulting menu changes.

Commands:
  select   Run the day-selection workflow (also the default)
  token    Set or replace the stored refresh token
  history  Show recorded recommendation overrides
  stats    Dish frequency over recent days
  usage    Oracle token usage from the metrics store`,
	RunE: runSelect,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
