package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nfrund/commhub/internal/auth"
	"github.com/nfrund/commhub/internal/config"
	"github.com/nfrund/commhub/internal/database"
)

var (
	addUserName     string
	addUserEmail    string
	addUserPassword string
)

var addUserCmd = &cobra.Command{
	Use:   "add-user",
	Short: "Create a user account directly in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg := config.New()

		db, err := database.NewDB(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close(ctx)

		hash, err := auth.HashPassword(addUserPassword)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		users := database.NewUserStore(db)
		user, err := users.Create(ctx, addUserName, addUserEmail, hash)
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}

		fmt.Fprintf(os.Stdout, "Created user %d (%s <%s>)\n", user.ID, user.Name, user.Email)
		return nil
	},
}

func init() {
	addUserCmd.Flags().StringVar(&addUserName, "name", "", "display name of the user")
	addUserCmd.Flags().StringVar(&addUserEmail, "email", "", "email address of the user")
	addUserCmd.Flags().StringVar(&addUserPassword, "password", "", "password for the user")
	addUserCmd.MarkFlagRequired("name")
	addUserCmd.MarkFlagRequired("email")
	addUserCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(addUserCmd)
}
