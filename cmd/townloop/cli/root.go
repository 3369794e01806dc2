// Package cli implements the townloop command-line surface: init,
// run <n>, status, and tui (the default command).
//
// A single package-level *cobra.Command tree, persistent flags parsed
// once in init(), Execute() as the sole process entry point.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/townloop/engine/slogger"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "townloop",
	Short: "townloop runs a simulated town of LLM-driven agents",
	Long: "townloop advances a tick-based simulation of autonomous agents " +
		"over a shared grid world, persisting every tick to SQLite and an " +
		"append-only event log.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return tuiCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "world.yaml", "path to the world config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(mcpCmd)
}

// Execute runs the root command, exiting the process with a non-zero
// status on failure (the exit code contract is implemented by individual
// subcommands via os.Exit before Execute returns).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootLogger() slogger.Logger {
	return slogger.New(slogger.LevelFromString(logLevel))
}
