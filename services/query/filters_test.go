package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComparison(t *testing.T) {
	tests := []struct {
		expr      string
		op        string
		threshold float64
	}{
		{">30", ">", 30},
		{"< 5.5", "<", 5.5},
		{">=10", ">=", 10},
		{"<= -2", "<=", -2},
		{"==7", "==", 7},
		{"!=0", "!=", 0},
		{"42", "==", 42},
		{" 3.14 ", "==", 3.14},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			cmp, err := parseComparison(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.op, cmp.op)
			assert.Equal(t, tt.threshold, cmp.threshold)
		})
	}
}

func TestParseComparison_Invalid(t *testing.T) {
	for _, expr := range []string{"", "  ", ">abc", "maior que 10", "=="} {
		t.Run(expr, func(t *testing.T) {
			_, err := parseComparison(expr)
			require.Error(t, err)
		})
	}
}

func TestComparison_Matches(t *testing.T) {
	cmp, err := parseComparison(">=10")
	require.NoError(t, err)

	assert.True(t, cmp.matches("10"))
	assert.True(t, cmp.matches(" 15.5 "))
	assert.False(t, cmp.matches("9.99"))
	assert.False(t, cmp.matches("texto"), "non-numeric cells never match")
	assert.False(t, cmp.matches(""))
}
