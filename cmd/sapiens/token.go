package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/config"
	"github.com/sapiens-platform/sapiens/middleware"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite um token de acesso para a API de auditoria",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if cfg.Server.SecretKey == "" {
				return fmt.Errorf("SECRET_KEY não configurada")
			}

			auth := middleware.NewAuthMiddleware(cfg.Server.SecretKey, zap.NewNop())
			token, err := auth.IssueToken(subject, role, ttl)
			if err != nil {
				return err
			}

			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "admin", "identidade do portador")
	cmd.Flags().StringVar(&role, "role", middleware.RoleAuditor, "perfil do token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "validade do token")
	return cmd
}
