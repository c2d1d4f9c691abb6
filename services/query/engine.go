// Package query implements the CSV search tool: column filters, numeric
// comparison filters and free-text search over delimited files, returning a
// bounded result set with summary statistics.
package query

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/internal/tabular"
	"github.com/sapiens-platform/sapiens/models"
)

// DefaultLimit bounds result sets when the caller does not pass a limit.
const DefaultLimit = 50

// Engine loads delimited files and applies query filters. Stateless and safe
// for concurrent use.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a query engine.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// Query applies spec to the file at path. Filters are applied in a fixed
// order: column exact-match, numeric comparisons, free-text search. Numeric
// filters that cannot be applied are skipped with a recorded reason instead
// of failing the query. Rows beyond limit are truncated and counted in
// OmittedRows. An empty post-filter result is not an error: the result
// carries a descriptive message plus the attempted filters so the caller can
// tell "no data" from "bad filter".
func (e *Engine) Query(path string, spec models.QueryFilterSpec, limit int) (*models.QueryResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	table, err := tabular.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("arquivo CSV está vazio: %s", path)
	}

	result := &models.QueryResult{
		File:         path,
		Columns:      table.Columns,
		OriginalRows: len(table.Rows),
	}

	rows := make([]int, len(table.Rows))
	for i := range table.Rows {
		rows[i] = i
	}

	rows = e.applyColumnFilters(table, spec, rows, result)
	rows = e.applyNumericFilters(table, spec, rows, result)
	rows = e.applyTextSearch(table, spec, rows, result)

	result.FilteredRows = len(rows)
	if len(rows) == 0 {
		result.Rows = []map[string]string{}
		result.Message = fmt.Sprintf(
			"Nenhum resultado encontrado. Filtros aplicados: %s. Total de linhas no arquivo: %d",
			describeFilters(result.Filters), result.OriginalRows)
		return result, nil
	}

	if len(rows) > limit {
		result.OmittedRows = len(rows) - limit
		rows = rows[:limit]
	}

	result.Rows = make([]map[string]string, 0, len(rows))
	for _, i := range rows {
		result.Rows = append(result.Rows, table.RowMap(i))
	}
	result.Stats = e.summarize(table, rows)

	e.logger.Debug("csv query executed",
		zap.String("file", path),
		zap.Int("original_rows", result.OriginalRows),
		zap.Int("filtered_rows", result.FilteredRows),
		zap.Int("omitted_rows", result.OmittedRows))

	return result, nil
}

// applyColumnFilters keeps rows whose cell equals the filter value. String
// comparison is case-insensitive unless the spec asks otherwise. Filters on
// unknown columns are recorded as skipped.
func (e *Engine) applyColumnFilters(table *tabular.Table, spec models.QueryFilterSpec, rows []int, result *models.QueryResult) []int {
	for _, col := range sortedKeys(spec.ColumnFilters) {
		want := spec.ColumnFilters[col]
		idx := table.ColumnIndex(col)
		if idx < 0 {
			result.Filters = append(result.Filters, models.AppliedFilter{
				Kind: "coluna", Column: col, Expression: want,
				Applied: false, SkipReason: "coluna não encontrada",
			})
			continue
		}
		var kept []int
		for _, i := range rows {
			cell := table.Rows[i][idx]
			if spec.CaseSensitive {
				if cell == want {
					kept = append(kept, i)
				}
			} else if strings.EqualFold(cell, want) {
				kept = append(kept, i)
			}
		}
		rows = kept
		result.Filters = append(result.Filters, models.AppliedFilter{
			Kind: "coluna", Column: col, Expression: want, Applied: true,
		})
	}
	return rows
}

// applyNumericFilters evaluates comparison expressions. Unknown columns,
// unparsable expressions and columns without numeric values are skipped with
// a reason — best-effort filtering by policy.
func (e *Engine) applyNumericFilters(table *tabular.Table, spec models.QueryFilterSpec, rows []int, result *models.QueryResult) []int {
	for _, col := range sortedKeys(spec.NumericFilters) {
		expr := spec.NumericFilters[col]
		filter := models.AppliedFilter{Kind: "numerico", Column: col, Expression: expr}

		idx := table.ColumnIndex(col)
		if idx < 0 {
			filter.SkipReason = "coluna não encontrada"
			result.Filters = append(result.Filters, filter)
			continue
		}
		cmp, err := parseComparison(expr)
		if err != nil {
			filter.SkipReason = err.Error()
			result.Filters = append(result.Filters, filter)
			continue
		}
		if _, ok := table.NumericColumn(col); !ok {
			filter.SkipReason = "coluna sem valores numéricos"
			result.Filters = append(result.Filters, filter)
			continue
		}

		var kept []int
		for _, i := range rows {
			if cmp.matches(table.Rows[i][idx]) {
				kept = append(kept, i)
			}
		}
		rows = kept
		filter.Applied = true
		result.Filters = append(result.Filters, filter)
	}
	return rows
}

// applyTextSearch keeps rows where the term appears as a substring in any
// column's stringified value. Case-insensitive by default.
func (e *Engine) applyTextSearch(table *tabular.Table, spec models.QueryFilterSpec, rows []int, result *models.QueryResult) []int {
	if spec.Search == "" {
		return rows
	}

	term := spec.Search
	if !spec.CaseSensitive {
		term = strings.ToLower(term)
	}

	var kept []int
	for _, i := range rows {
		for _, cell := range table.Rows[i] {
			haystack := cell
			if !spec.CaseSensitive {
				haystack = strings.ToLower(cell)
			}
			if strings.Contains(haystack, term) {
				kept = append(kept, i)
				break
			}
		}
	}
	result.Filters = append(result.Filters, models.AppliedFilter{
		Kind: "texto", Expression: spec.Search, Applied: true,
	})
	return kept
}

// summarize computes per-column statistics over the returned rows for every
// column that is predominantly numeric.
func (e *Engine) summarize(table *tabular.Table, rows []int) []models.ColumnStats {
	var stats []models.ColumnStats
	for j, col := range table.Columns {
		if !table.IsNumericColumn(col) {
			continue
		}
		var values []float64
		for _, i := range rows {
			if v, err := parseFloat(table.Rows[i][j]); err == nil {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		stats = append(stats, columnStats(col, values))
	}
	return stats
}

func columnStats(col string, values []float64) models.ColumnStats {
	min, max, sum := values[0], values[0], 0.0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean := sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	return models.ColumnStats{
		Column: col,
		Count:  len(values),
		Mean:   mean,
		Min:    min,
		Max:    max,
		StdDev: math.Sqrt(variance),
	}
}

func describeFilters(filters []models.AppliedFilter) string {
	if len(filters) == 0 {
		return "nenhum filtro específico (busca geral)"
	}
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		switch f.Kind {
		case "texto":
			parts = append(parts, fmt.Sprintf("busca de texto %q", f.Expression))
		default:
			parts = append(parts, fmt.Sprintf("filtro %s %q: %s", f.Kind, f.Column, f.Expression))
		}
	}
	return strings.Join(parts, "; ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
