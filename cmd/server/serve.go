package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/EgehanKilicarslan/recipe-api/internal/app"
	"github.com/EgehanKilicarslan/recipe-api/internal/database"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("🚀 [Server] Starting recipe API...",
		"environment", cfg.AppEnv,
		"database", cfg.DatabaseDriver,
		"media", cfg.MediaStorage,
	)

	db, err := database.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("❌ [Server] Failed to connect to database", "error", err)
		return err
	}

	application, err := app.New(ctx, cfg, db, log)
	if err != nil {
		log.Error("❌ [Server] Failed to initialize", "error", err)
		return err
	}

	return application.Run(ctx)
}
