// Package main provides the starsheet command: it imports characters from
// Hephaistos, computes their derived statistics and publishes them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "starsheet",
	Short: "Starfinder character statistics importer",
	Long: `starsheet fetches Starfinder characters from Hephaistos, computes their derived
statistics (ability scores, armor classes, vitals, initiative, conditions) and writes
them to Markdown note frontmatter and, optionally, a PostgreSQL snapshot table.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/dev.yaml", "path to configuration file")
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newComputeCmd())
	rootCmd.AddCommand(newHistoryCmd())
}
