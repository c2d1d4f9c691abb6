package query

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/models"
)

const sampleCSV = `nome,curso,nota,faltas
Ana,Engenharia,8.5,2
Beto,Direito,6.0,10
Clara,Engenharia,9.2,0
Davi,Medicina,7.8,4
Elisa,engenharia,5.5,12
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alunos.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEngine_Query_ColumnFilter(t *testing.T) {
	engine := NewEngine(zap.NewNop())
	path := writeCSV(t, sampleCSV)

	result, err := engine.Query(path, models.QueryFilterSpec{
		ColumnFilters: map[string]string{"curso": "Engenharia"},
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, 5, result.OriginalRows)
	assert.Equal(t, 3, result.FilteredRows, "match is case-insensitive by default")
	require.Len(t, result.Filters, 1)
	assert.True(t, result.Filters[0].Applied)
}

func TestEngine_Query_CaseSensitiveColumnFilter(t *testing.T) {
	engine := NewEngine(zap.NewNop())
	path := writeCSV(t, sampleCSV)

	result, err := engine.Query(path, models.QueryFilterSpec{
		ColumnFilters: map[string]string{"curso": "Engenharia"},
		CaseSensitive: true,
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, result.FilteredRows)
}

func TestEngine_Query_NumericFilter(t *testing.T) {
	engine := NewEngine(zap.NewNop())
	path := writeCSV(t, sampleCSV)

	result, err := engine.Query(path, models.QueryFilterSpec{
		NumericFilters: map[string]string{"nota": ">=7.8"},
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, result.FilteredRows)
	for _, row := range result.Rows {
		assert.Contains(t, []string{"Ana", "Clara", "Davi"}, row["nome"])
	}
}

func TestEngine_Query_SkipsUnusableNumericFilters(t *testing.T) {
	engine := NewEngine(zap.NewNop())
	path := writeCSV(t, sampleCSV)

	result, err := engine.Query(path, models.QueryFilterSpec{
		NumericFilters: map[string]string{
			"inexistente": ">1",
			"nome":        ">5",
			"nota":        "maior que 7",
		},
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, 5, result.FilteredRows, "skipped filters must not drop rows")

	reasons := map[string]string{}
	for _, f := range result.Filters {
		assert.False(t, f.Applied)
		reasons[f.Column] = f.SkipReason
	}
	assert.Equal(t, "coluna não encontrada", reasons["inexistente"])
	assert.Equal(t, "coluna sem valores numéricos", reasons["nome"])
	assert.Contains(t, reasons["nota"], "operador não reconhecido")
}

func TestEngine_Query_TextSearch(t *testing.T) {
	engine := NewEngine(zap.NewNop())
	path := writeCSV(t, sampleCSV)

	result, err := engine.Query(path, models.QueryFilterSpec{Search: "medicina"}, 0)
	require.NoError(t, err)

	require.Equal(t, 1, result.FilteredRows)
	assert.Equal(t, "Davi", result.Rows[0]["nome"])
}

func TestEngine_Query_EmptyResultCarriesMessage(t *testing.T) {
	engine := NewEngine(zap.NewNop())
	path := writeCSV(t, sampleCSV)

	result, err := engine.Query(path, models.QueryFilterSpec{Search: "astronomia"}, 0)
	require.NoError(t, err)

	assert.Empty(t, result.Rows)
	assert.Contains(t, result.Message, "Nenhum resultado encontrado")
	assert.Contains(t, result.Message, "Total de linhas no arquivo: 5")
}

func TestEngine_Query_LimitAndOmittedRows(t *testing.T) {
	engine := NewEngine(zap.NewNop())
	path := writeCSV(t, sampleCSV)

	result, err := engine.Query(path, models.QueryFilterSpec{}, 2)
	require.NoError(t, err)

	assert.Len(t, result.Rows, 2)
	assert.Equal(t, 5, result.FilteredRows)
	assert.Equal(t, 3, result.OmittedRows)
}

func TestEngine_Query_Statistics(t *testing.T) {
	engine := NewEngine(zap.NewNop())
	path := writeCSV(t, sampleCSV)

	result, err := engine.Query(path, models.QueryFilterSpec{}, 0)
	require.NoError(t, err)

	byColumn := map[string]models.ColumnStats{}
	for _, s := range result.Stats {
		byColumn[s.Column] = s
	}
	require.Contains(t, byColumn, "nota")
	require.Contains(t, byColumn, "faltas")
	assert.NotContains(t, byColumn, "nome")

	nota := byColumn["nota"]
	assert.Equal(t, 5, nota.Count)
	assert.InDelta(t, 7.4, nota.Mean, 0.01)
	assert.Equal(t, 5.5, nota.Min)
	assert.Equal(t, 9.2, nota.Max)
}

func TestEngine_Query_MissingFile(t *testing.T) {
	engine := NewEngine(zap.NewNop())
	_, err := engine.Query(filepath.Join(t.TempDir(), "nada.csv"), models.QueryFilterSpec{}, 0)
	require.Error(t, err)
}

func TestEngine_Query_EmptyFile(t *testing.T) {
	engine := NewEngine(zap.NewNop())
	path := writeCSV(t, "a,b\n")

	_, err := engine.Query(path, models.QueryFilterSpec{}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arquivo CSV está vazio")
}
