package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sniper",
	Short: "Paper-trading engine for crypto trading signals",
	Long: `Sniper is a simulated brokerage for crypto trading signals.

It provides tools for:
  - Running the automated paper-trading monitor against live alerts
  - Processing individual signals through the synchronous decision path
  - Inspecting a saved ledger's performance metrics
  - Journaling trades and equity to CSV or SQLite
  - Managing configuration files`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
