package main

import (
	"fmt"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/user/dto"
	userRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/user/repository"
	userUCPkg "github.com/fekuna/omnipos-storefront-service/internal/user/usecase"
	"github.com/fekuna/omnipos-storefront-service/pkg/database/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	userEmail    string
	userPassword string
	userName     string
	userRole     string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts directly in the database",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account with any role",
	Long: `Creates an account straight in the database. This is how the first admin
of a merchant is made; later accounts can go through POST /api/v1/users.

Example:
  storectl user create --email owner@shop.test --password 's3cret-pass' --role admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := postgres.NewPostgres(postgresConfig())
		if err != nil {
			return err
		}
		defer db.Close()

		tokens := auth.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.TTL)
		uc := userUCPkg.NewUserUseCase(userRepoPkg.NewPGRepository(db), tokens, nil, appLogger)
		u, err := uc.CreateUser(cmd.Context(), &dto.CreateUserInput{
			MerchantID: merchantID,
			Email:      userEmail,
			Password:   userPassword,
			Name:       userName,
			Role:       userRole,
		})
		if err != nil {
			return err
		}
		appLogger.Info("Created user", zap.String("id", u.ID), zap.String("email", u.Email), zap.String("role", u.Role))
		fmt.Fprintln(cmd.OutOrStdout(), u.ID)
		return nil
	},
}

func init() {
	f := userCreateCmd.Flags()
	f.StringVar(&userEmail, "email", "", "login email")
	f.StringVar(&userPassword, "password", "", "password, at least 8 characters")
	f.StringVar(&userName, "name", "Administrator", "display name")
	f.StringVar(&userRole, "role", model.RoleAdmin, "customer, staff or admin")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userCreateCmd)
}
