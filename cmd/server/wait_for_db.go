package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EgehanKilicarslan/recipe-api/internal/config"
	"github.com/EgehanKilicarslan/recipe-api/internal/database"
)

var waitForDBCmd = &cobra.Command{
	Use:   "wait-for-db",
	Short: "Block until the database accepts connections",
	Long: `Pings the configured database until it answers, retrying DB_MAX_RETRIES
times with DB_RETRY_DELAY seconds between attempts. Exits non-zero when the
database never became available.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		db, err := database.Open(cfg, log)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		defer sqlDB.Close()

		retries := uint64(max(cfg.DBMaxRetries, 0))
		return database.WaitForDB(cmd.Context(), sqlDB, retries, config.Seconds(cfg.DBRetryDelay), log)
	},
}
