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

var tokenEmail string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg := config.New()

		db, err := database.NewDB(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close(ctx)

		users := database.NewUserStore(db)
		user, err := users.FindByEmail(ctx, tokenEmail)
		if err != nil {
			return fmt.Errorf("looking up user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("no user with email %q", tokenEmail)
		}

		tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
		token, err := tokens.Generate(user.ID, user.Email)
		if err != nil {
			return fmt.Errorf("generating token: %w", err)
		}

		fmt.Fprintln(os.Stdout, token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email address of the user")
	tokenCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(tokenCmd)
}
