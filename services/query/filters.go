package query

import (
	"fmt"
	"strconv"
	"strings"
)

// comparison is a parsed numeric filter expression.
type comparison struct {
	op        string
	threshold float64
}

// operators are tried longest-first so ">=" is not parsed as ">" + "=5".
var operators = []string{">=", "<=", "==", "!=", ">", "<"}

// parseComparison parses expressions like ">30", "<=5.5" or "!=0". A bare
// numeric literal means equality. Errors describe why the expression cannot
// be applied; callers turn them into skip reasons rather than failures.
func parseComparison(expr string) (comparison, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return comparison{}, fmt.Errorf("expressão vazia")
	}

	for _, op := range operators {
		if strings.HasPrefix(trimmed, op) {
			raw := strings.TrimSpace(trimmed[len(op):])
			threshold, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return comparison{}, fmt.Errorf("valor numérico inválido: %q", raw)
			}
			return comparison{op: op, threshold: threshold}, nil
		}
	}

	threshold, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return comparison{}, fmt.Errorf("operador não reconhecido em %q", trimmed)
	}
	return comparison{op: "==", threshold: threshold}, nil
}

// matches evaluates the comparison against a cell value. Cells that do not
// parse as numbers never match.
func (c comparison) matches(cell string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return false
	}
	switch c.op {
	case ">":
		return v > c.threshold
	case "<":
		return v < c.threshold
	case ">=":
		return v >= c.threshold
	case "<=":
		return v <= c.threshold
	case "==":
		return v == c.threshold
	case "!=":
		return v != c.threshold
	}
	return false
}
