package main

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/stanstork/visitor-kiosk-api/internal/config"
	"github.com/stanstork/visitor-kiosk-api/internal/migration"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDatabase(func(db *sql.DB, cfg *config.Config) error {
					return migration.Up(cmd.Context(), db, newLogger(cfg.Log))
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which migrations have been applied",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDatabase(func(db *sql.DB, cfg *config.Config) error {
					return migration.Status(cmd.Context(), db, newLogger(cfg.Log))
				})
			},
		},
	)
	return cmd
}

func withDatabase(fn func(*sql.DB, *config.Config) error) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if cfg.Storage != config.StoragePostgres {
		return errNoDatabase
	}
	db, err := openDatabase(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db, cfg)
}
