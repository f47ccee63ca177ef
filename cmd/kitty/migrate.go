package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"kitty/internal/storage"
)

func migrateCmd(e *env) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the SQLite schema to the latest version.

The other commands migrate on open as well; this command is for deploy
scripts and for checking the current version with --status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.cfg.DataBackend != "sqlite" {
				return fmt.Errorf("migrate needs DATA_BACKEND=sqlite, got %q", e.cfg.DataBackend)
			}
			dbPath := e.cfg.SQLiteDBPath

			if !status {
				slog.Info("Running database migrations", "database", dbPath)
				if err := storage.RunMigrations(dbPath); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
			}

			version, dirty, err := storage.SchemaVersion(dbPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d (dirty: %t) at %s\n", version, dirty, dbPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "show the current schema version without migrating")

	return cmd
}
