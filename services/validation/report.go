package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sapiens-platform/sapiens/models"
)

// Report renders a validation result as a human-readable security report,
// suitable for the CLI and for attaching to analysis results.
func Report(result *models.ValidationResult) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	b.WriteString(rule + "\n")
	b.WriteString("RELATÓRIO DE VALIDAÇÃO DE SEGURANÇA - SAPIENS\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Arquivo: %s\n", result.File)
	fmt.Fprintf(&b, "Data: %s\n", result.Timestamp.Format("2006-01-02 15:04:05"))
	status := "VÁLIDO"
	if !result.Valid {
		status = "INVÁLIDO"
	}
	fmt.Fprintf(&b, "Status: %s\n\n", status)

	if len(result.Errors) > 0 {
		b.WriteString("ERROS ENCONTRADOS:\n")
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "  • %s\n", e)
		}
		b.WriteString("\n")
	}

	if len(result.Warnings) > 0 {
		b.WriteString("AVISOS:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "  • %s\n", w)
		}
		b.WriteString("\n")
	}

	if len(result.Info) > 0 {
		b.WriteString("INFORMAÇÕES:\n")
		keys := make([]string, 0, len(result.Info))
		for k := range result.Info {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  • %s: %v\n", k, result.Info[k])
		}
		b.WriteString("\n")
	}

	b.WriteString(rule + "\n")
	return b.String()
}
