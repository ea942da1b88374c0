package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unionhub/unionhub-api/internal/auth"
	"github.com/unionhub/unionhub-api/internal/domain/notification"
)

func tokenCmd() *cobra.Command {
	var (
		identity notification.Identity
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token for the API and the websocket authenticate frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.AuthEnabled() {
				return errors.New("JWT_SECRET is not set")
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}

			token, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, ttl).Issue(identity)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&identity.UserID, "user", "", "user id (token subject)")
	cmd.Flags().StringVar(&identity.Email, "email", "", "email claim")
	cmd.Flags().StringVar(&identity.Role, "role", "member", "role claim, admin unlocks admin routes")
	cmd.Flags().StringVar(&identity.Name, "name", "", "display name claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default from JWT_TOKEN_TTL)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
