package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sapiens-platform/sapiens/config"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Verifica a configuração do ambiente",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			fmt.Println("SAPIENS - Verificação de Ambiente")
			fmt.Println("==================================")
			fmt.Printf("Ambiente:            %s\n", cfg.Environment)
			fmt.Printf("Endereço:            %s\n", cfg.Server.Address())
			fmt.Printf("Diretório de upload: %s (%s)\n", cfg.Server.UploadDir, dirState(cfg.Server.UploadDir))
			fmt.Printf("Trilha de auditoria: %s\n", filepath.Join(cfg.Audit.LogDir, cfg.Audit.TrailFile))
			fmt.Printf("Modelo do pipeline:  %s\n", cfg.Pipeline.Model)
			fmt.Printf("GEMINI_API_KEY:      %s\n", presence(cfg.Pipeline.APIKey))
			fmt.Printf("SECRET_KEY:          %s\n", presence(cfg.Server.SecretKey))

			if cfg.AuditDatabase != nil {
				fmt.Println("Banco de auditoria:  configurado")
			} else {
				fmt.Println("Banco de auditoria:  não configurado (apenas JSONL)")
			}

			if cfg.Pipeline.APIKey == "" {
				return fmt.Errorf("GEMINI_API_KEY ausente: análises não poderão ser executadas")
			}
			return nil
		},
	}
}

func dirState(dir string) string {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return "existe"
	}
	return "será criado"
}

func presence(v string) string {
	if v == "" {
		return "ausente"
	}
	return "configurada"
}
