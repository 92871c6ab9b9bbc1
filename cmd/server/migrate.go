package main

import (
	"github.com/spf13/cobra"

	"github.com/EgehanKilicarslan/recipe-api/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		db, err := database.Connect(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		log.Info("✅ [Migrate] Schema is up to date")
		return nil
	},
}
