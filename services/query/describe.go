package query

import (
	"fmt"
	"strings"

	"github.com/sapiens-platform/sapiens/internal/tabular"
	"github.com/sapiens-platform/sapiens/models"
)

// previewRows bounds how many rows Describe includes as a sample.
const previewRows = 5

// Describe profiles a delimited file: dimensions, per-column type guess,
// missing values and a short preview. Used by the agent pipeline to give
// stages a cheap structural summary without shipping the whole file.
func (e *Engine) Describe(path string) (*models.TableProfile, error) {
	table, err := tabular.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	profile := &models.TableProfile{
		File:           path,
		Separator:      string(table.Separator),
		Rows:           len(table.Rows),
		MissingPercent: table.MissingPercent(),
	}

	for j, col := range table.Columns {
		cp := models.ColumnProfile{Name: col, Kind: "texto"}
		if table.IsNumericColumn(col) {
			cp.Kind = "numerico"
		}

		unique := make(map[string]struct{})
		for _, row := range table.Rows {
			cell := strings.TrimSpace(row[j])
			if cell == "" {
				cp.MissingCells++
				continue
			}
			if _, seen := unique[cell]; !seen {
				unique[cell] = struct{}{}
				if len(cp.Samples) < 3 {
					cp.Samples = append(cp.Samples, cell)
				}
			}
		}
		cp.UniqueValues = len(unique)
		profile.Columns = append(profile.Columns, cp)
	}

	profile.Correlations = correlations(table)

	n := previewRows
	if n > len(table.Rows) {
		n = len(table.Rows)
	}
	for i := 0; i < n; i++ {
		profile.Preview = append(profile.Preview, table.RowMap(i))
	}

	return profile, nil
}

// Summary renders a profile as a compact text report for prompts and the CLI.
func Summary(p *models.TableProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Arquivo: %s\n", p.File)
	fmt.Fprintf(&b, "Dimensões: %d linhas × %d colunas (separador %q)\n", p.Rows, len(p.Columns), p.Separator)
	fmt.Fprintf(&b, "Dados faltantes: %.1f%%\n", p.MissingPercent)
	b.WriteString("Colunas:\n")
	for _, c := range p.Columns {
		fmt.Fprintf(&b, "  • %s (%s, únicos: %d, vazios: %d) ex: %v\n",
			c.Name, c.Kind, c.UniqueValues, c.MissingCells, c.Samples)
	}
	if len(p.Correlations) > 0 {
		b.WriteString("Correlações entre colunas numéricas:\n")
		for _, c := range p.Correlations {
			fmt.Fprintf(&b, "  • %s × %s: r=%.2f (%s, n=%d)\n",
				c.ColumnA, c.ColumnB, c.Coefficient, c.Strength, c.Pairs)
		}
	}
	return b.String()
}
