// Package cmd provides the command-line interface for alloctrack.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "alloctrack",
	Short: "Alloctrack CLI tool can run attributed demo workloads and " +
		"inspect recorded allocation data.",
	Long: `Alloctrack CLI tool can run attributed demo workloads and ` +
		`inspect recorded allocation data. Currently, it supports running ` +
		`a demo session and summarizing heap profiles.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
