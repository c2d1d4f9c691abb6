package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/config"
	"github.com/sapiens-platform/sapiens/services/validation"
)

func newValidateCmd() *cobra.Command {
	var policyFile string

	cmd := &cobra.Command{
		Use:   "validate <arquivo> [arquivo...]",
		Short: "Valida arquivos contra a política de segurança",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &config.Config{Security: config.DefaultSecurityPolicy()}
			if policyFile != "" {
				if err := cfg.LoadPolicyFile(policyFile); err != nil {
					return err
				}
			}

			validator := validation.NewValidator(cfg.Security, zap.NewNop())
			batch := validator.ValidateAll(args)

			for _, result := range batch.Results {
				status := "VÁLIDO"
				if !result.Valid {
					status = "INVÁLIDO"
				}
				fmt.Printf("%s: %s\n", result.File, status)
				for _, e := range result.Errors {
					fmt.Printf("  erro: %s\n", e)
				}
				for _, w := range result.Warnings {
					fmt.Printf("  aviso: %s\n", w)
				}
			}

			fmt.Printf("\n%d arquivo(s), %d válido(s), %d inválido(s) (%.0f%%)\n",
				batch.TotalFiles, batch.ValidFiles, batch.InvalidFiles, batch.SuccessRate)

			if batch.InvalidFiles > 0 {
				return fmt.Errorf("%d arquivo(s) rejeitado(s)", batch.InvalidFiles)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&policyFile, "policy", "", "arquivo YAML de política de segurança")
	return cmd
}
