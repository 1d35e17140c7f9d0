package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "commhub-cli",
	Short: "CommHub CLI tool",
	Long: `CommHub CLI is a command-line interface for operating a CommHub deployment.

Available commands:
  add-user    Create a user account directly in the database
  token       Issue an access token for an existing user

Use "commhub-cli [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
