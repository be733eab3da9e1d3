// Package commands implements CLI commands.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/undertow-db/undertow/internal/config"
	"github.com/undertow-db/undertow/internal/debug"
)

var rootCmd = &cobra.Command{
	Use:   "undertow",
	Short: "Compile adapter query specifications to SQL",
	Long: `Undertow compiles adapter-style query specifications into
dialect-specific SQL: a flat join-and-filter fragment with ordered bind
values, plus correlated subquery templates for associations that cannot
be flat-joined.`,
	SilenceUsage: true,
}

var (
	cfg       *config.Config
	debugFlag bool
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
		debug.Init(debugFlag || cfg.Debug)
		return nil
	}
}

// Execute is the main entry point for the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
