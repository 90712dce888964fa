package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iho/tripledger/internal/domain"
	"github.com/iho/tripledger/internal/infrastructure/auth"
	"github.com/iho/tripledger/internal/infrastructure/config"
)

func tokenCmd() *cobra.Command {
	var (
		user     domain.User
		secret   string
		validFor time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an API token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if secret == "" {
				secret = cfg.JWTSecret
			}
			if secret == "" {
				return errors.New("no signing secret: pass --secret or set JWT_SECRET")
			}
			if validFor == 0 {
				validFor = cfg.JWTExpiration
			}
			if user.ID == "" {
				user.ID = uuid.NewString()
			}

			token, err := auth.NewJWTManager(secret, validFor).Generate(&user)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&user.ID, "user", "", "User ID (random UUID when empty)")
	cmd.Flags().StringVar(&user.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&user.Email, "email", "", "Email")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (defaults to JWT_SECRET)")
	cmd.Flags().DurationVar(&validFor, "expires", 0, "Token lifetime (defaults to JWT_EXPIRATION)")

	return cmd
}
