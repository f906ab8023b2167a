package cli

import (
	"fmt"
	"time"

	"english-quiz-service/internal/domain"
	transport "english-quiz-service/internal/transport/http"
	"github.com/spf13/cobra"
)

// NewTokenCmd mints a bearer token for local testing against auth.jwt_secret.
func NewTokenCmd(configPath *string) *cobra.Command {
	var (
		id   string
		name string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed player token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret not configured")
			}
			token, err := transport.NewJWTResolver(cfg.Auth.JWTSecret).Issue(domain.Player{ID: id, Name: name}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "player identity (sub claim)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime, 0 for none")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
