package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/EgehanKilicarslan/recipe-api/internal/config"
	"github.com/EgehanKilicarslan/recipe-api/internal/logger"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "recipeapp",
	Short: "Recipe catalog API server",
	Long: `Serves the recipe catalog REST API: user accounts and tokens, and
per-user recipes with their tags, ingredients and images.

Without a subcommand the HTTP server is started.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", os.Getenv("CONFIG_FILE"),
		"YAML file with configuration values (environment variables take precedence)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(waitForDBCmd)
	rootCmd.AddCommand(createSuperuserCmd)
}

// setup loads the configuration and installs the logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg := config.LoadConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, nil, err
		}
	}
	return cfg, logger.New(cfg), nil
}
