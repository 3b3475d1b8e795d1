// Package cmd implements the gabtab command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gabtab",
	Short: "dialogue-box conversations in the terminal",
	Long: `gabtab - dialogue-box conversations in the terminal
  - typewriter message box with pluggable interactors
  - scripted conversations from YAML`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}
