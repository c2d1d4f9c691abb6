package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPearson(t *testing.T) {
	r, ok := pearson([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-9)

	r, ok = pearson([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
	require.True(t, ok)
	assert.InDelta(t, -1.0, r, 1e-9)

	_, ok = pearson([]float64{1, 2}, []float64{3, 4})
	assert.False(t, ok, "sample too small")

	_, ok = pearson([]float64{5, 5, 5}, []float64{1, 2, 3})
	assert.False(t, ok, "constant column has no variance")
}

func TestStrengthLabel(t *testing.T) {
	assert.Equal(t, "forte", strengthLabel(-0.92))
	assert.Equal(t, "moderada", strengthLabel(0.55))
	assert.Equal(t, "fraca", strengthLabel(0.1))
}

func TestDescribeComputesCorrelations(t *testing.T) {
	e := NewEngine(zap.NewNop())
	path := writeCSV(t,
		"aluno,horas_estudo,nota\n"+
			"A1,2,5.0\n"+
			"A2,4,6.5\n"+
			"A3,6,8.0\n"+
			"A4,8,9.5\n")

	profile, err := e.Describe(path)
	require.NoError(t, err)

	require.Len(t, profile.Correlations, 1, "only the numeric pair is correlated")
	c := profile.Correlations[0]
	assert.Equal(t, "horas_estudo", c.ColumnA)
	assert.Equal(t, "nota", c.ColumnB)
	assert.InDelta(t, 1.0, c.Coefficient, 1e-9)
	assert.Equal(t, "forte", c.Strength)
	assert.Equal(t, 4, c.Pairs)

	assert.Contains(t, Summary(profile), "Correlações entre colunas numéricas")
}

func TestDescribeSkipsUnusableCorrelationPairs(t *testing.T) {
	e := NewEngine(zap.NewNop())
	path := writeCSV(t,
		"x,y\n"+
			"1,2\n"+
			"3,4\n")

	profile, err := e.Describe(path)
	require.NoError(t, err)

	assert.Empty(t, profile.Correlations, "two rows are too few for a coefficient")
	assert.NotContains(t, Summary(profile), "Correlações")
}
