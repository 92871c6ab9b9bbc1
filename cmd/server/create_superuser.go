package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/EgehanKilicarslan/recipe-api/internal/database"
	"github.com/EgehanKilicarslan/recipe-api/internal/database/repository"
	"github.com/EgehanKilicarslan/recipe-api/internal/database/service"
)

var (
	superuserEmail    string
	superuserPassword string
	superuserName     string
)

var createSuperuserCmd = &cobra.Command{
	Use:   "create-superuser",
	Short: "Create a staff account with full permissions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if superuserPassword == "" {
			return errors.New("--password is required")
		}

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

		users := service.NewUserService(repository.NewStore(db), log)
		user, err := users.CreateSuperuser(cmd.Context(), superuserEmail, superuserPassword, superuserName)
		if err != nil {
			return err
		}

		cmd.Printf("Superuser %s created\n", user.Email)
		return nil
	},
}

func init() {
	createSuperuserCmd.Flags().StringVar(&superuserEmail, "email", "", "account email")
	createSuperuserCmd.Flags().StringVar(&superuserPassword, "password", "", "account password")
	createSuperuserCmd.Flags().StringVar(&superuserName, "name", "", "display name")
}
