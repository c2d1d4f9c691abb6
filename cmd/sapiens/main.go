// Command sapiens runs the academic research analysis platform: the web
// interface, plus standalone file validation and CSV query tooling.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "sapiens",
		Short: "Plataforma de análise de pesquisa acadêmica",
		Long: "SAPIENS executa análises de pesquisa acadêmica em múltiplas etapas\n" +
			"sobre arquivos de dados enviados, com validação de segurança e\n" +
			"trilha de auditoria completa.",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newTokenCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
