package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/rehearse/internal/config"
	"github.com/MikeSquared-Agency/rehearse/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the interview tables in DATABASE_URL",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		setupLogging(cfg.LogLevel)

		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}
		db, err := store.New(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(cmd.Context()); err != nil {
			return err
		}
		slog.Info("schema applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
