package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/models"
	"github.com/sapiens-platform/sapiens/services/query"
)

func newQueryCmd() *cobra.Command {
	var (
		search        string
		filters       []string
		numeric       []string
		limit         int
		caseSensitive bool
	)

	cmd := &cobra.Command{
		Use:   "query <arquivo.csv>",
		Short: "Consulta um arquivo CSV com filtros",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := models.QueryFilterSpec{
				Search:        search,
				CaseSensitive: caseSensitive,
			}

			var err error
			if spec.ColumnFilters, err = parsePairs(filters); err != nil {
				return err
			}
			if spec.NumericFilters, err = parsePairs(numeric); err != nil {
				return err
			}

			engine := query.NewEngine(zap.NewNop())
			result, err := engine.Query(args[0], spec, limit)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "busca de texto livre")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "filtro de coluna no formato coluna=valor")
	cmd.Flags().StringArrayVar(&numeric, "numeric", nil, "filtro numérico no formato coluna='>10'")
	cmd.Flags().IntVar(&limit, "limit", query.DefaultLimit, "número máximo de linhas")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "diferencia maiúsculas de minúsculas")
	return cmd
}

// parsePairs converts coluna=valor arguments into a filter map.
func parsePairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, found := strings.Cut(p, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("filtro inválido %q, use coluna=valor", p)
		}
		m[key] = value
	}
	return m, nil
}
