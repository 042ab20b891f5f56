package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"bookshelf-api/pkg/logger"
)

var (
	// Global flags
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "bookshelfctl",
	Short: "Operational tooling for the bookshelf API",
	Long: `bookshelfctl manages the bookshelf database.

The connection is configured with the same DB_* environment variables
as the API server, optionally read from a .env file.`,
	Version:      "1.0.0",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
		}
		logger.Init(os.Getenv("APP_ENV"), logLevel)
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load (ignored when missing)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
