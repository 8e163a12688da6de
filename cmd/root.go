package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fletes-service",
	Short: "Freight billing and spreadsheet reconciliation service",
	Long:  `API service for tracking fletes and transportistas, with Excel import/export against the historical planillas`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
