// Package cmd wires the CLI commands: serve, ask, and version.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hoopsight",
	Short: "HoopSight - NBA odds and betting analysis assistant",
	Long: `HoopSight serves an AI betting analyst over HTTP: conversational NBA
analysis grounded in a live odds-and-predictions feed, with structured game
data extracted from every answer.

Run 'hoopsight serve' to start the API server, or 'hoopsight ask' for a
one-shot question from the terminal.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Best effort: a missing .env file is the normal case in production.
	_ = godotenv.Load()
}
