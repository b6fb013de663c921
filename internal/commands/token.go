package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/auth"
)

func newTokenCommand(configPath *string) *cobra.Command {
	var email string
	var userType string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a session token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if userType != entity.UserTypeEmployee && userType != entity.UserTypeAdmin {
				return fmt.Errorf("--type must be %s or %s", entity.UserTypeEmployee, entity.UserTypeAdmin)
			}
			if ttl <= 0 {
				ttl = cfg.Session.TokenTTL
			}

			tokens, err := auth.NewTokenService(cfg.Session.JWTSecret)
			if err != nil {
				return err
			}
			token, err := tokens.Issue(entity.User{Email: email, Type: userType}, ttl)
			if err != nil {
				return fmt.Errorf("issuing token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "user email (required)")
	_ = cmd.MarkFlagRequired("email")
	cmd.Flags().StringVar(&userType, "type", entity.UserTypeEmployee, "user type, Employee or Admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, session.token_ttl when zero")

	return cmd
}
