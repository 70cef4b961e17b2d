package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command when called without subcommands
var rootCmd = &cobra.Command{
	Use:   "factorlab",
	Short: "factorlab - factor evaluation and catalog engine",
	Long: `factorlab Unified CLI

Evaluates cross-sectional equity factors against forward returns and
maintains the catalog of factors that pass admission.

Usage:
  go run ./cmd/factorlab [command]

Examples:
  go run ./cmd/factorlab evaluate momentum_20 --from 2024-01-02 --to 2025-12-30
  go run ./cmd/factorlab batch
  go run ./cmd/factorlab catalog list
  go run ./cmd/factorlab api
  go run ./cmd/factorlab scheduler start`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}
