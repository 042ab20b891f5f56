package commands

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"bookshelf-api/internal/infrastructure/database/migrations"
	"bookshelf-api/pkg/container"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run the embedded goose migrations.

Subcommands:
  up       - Apply pending migrations
  down     - Roll back the last migration
  status   - Show applied and pending migrations
  version  - Print the current schema version
  files    - List the embedded migration files`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool) error {
			return migrations.Up(ctx, pool)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool) error {
			return migrations.Down(ctx, pool)
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool) error {
			return migrations.Status(ctx, pool)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool) error {
			v, err := migrations.Version(ctx, pool)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		})
	},
}

var migrateFilesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the embedded migration files",
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := migrations.Files()
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd, migrateVersionCmd, migrateFilesCmd)
	rootCmd.AddCommand(migrateCmd)
}

// withPool connects with the DB_* settings, runs fn and closes the pool.
func withPool(ctx context.Context, fn func(context.Context, *pgxpool.Pool) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := container.OpenDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, db.Pool)
}
