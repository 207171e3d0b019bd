package main

import (
	"fmt"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/pkg/config"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(db *gorm.DB) error {
			if err := models.Migrate(db); err != nil {
				return fmt.Errorf("failed to auto migrate models: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		})
	},
}

var createUserCmd = &cobra.Command{
	Use:   "createuser",
	Short: "Create a user account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		superuser, _ := cmd.Flags().GetBool("superuser")

		return withDB(func(db *gorm.DB) error {
			user := &models.User{Username: username, Email: email, IsSuperuser: superuser}
			if err := user.SetPassword(password); err != nil {
				return err
			}
			if err := repositories.NewPostgresUserRepository(db).CreateUser(cmd.Context(), user); err != nil {
				return fmt.Errorf("failed to create user %q: %w", username, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %q created.\n", username)
			return nil
		})
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant <username> <codename>",
	Short: "Grant a permission, e.g. " + models.PermAddGroups,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			users := repositories.NewPostgresUserRepository(db)
			user, err := users.GetUserByUsername(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("user %q: %w", args[0], err)
			}
			if err := users.GrantPermission(cmd.Context(), user.ID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Granted %s to %s.\n", args[1], user.Username)
			return nil
		})
	},
}

func init() {
	createUserCmd.Flags().String("username", "", "username of the new account")
	createUserCmd.Flags().String("email", "", "email address")
	createUserCmd.Flags().String("password", "", "raw password")
	createUserCmd.Flags().Bool("superuser", false, "grant every permission")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(migrateCmd, createUserCmd, grantCmd)
}

// withDB opens the configured relational database for a one-off command.
func withDB(fn func(db *gorm.DB) error) error {
	cfg := config.Load()
	config.NewLogger(cfg)

	db, err := config.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}
	defer db.CloseDB()
	return fn(db.SQL)
}
