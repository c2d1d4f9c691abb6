package models

// QueryFilterSpec describes the filters of one CSV query. Filters are applied
// in a fixed order: column exact-match, then numeric comparisons, then the
// free-text search. Numeric filter values are comparison expressions such as
// ">30", "<=5.5" or "!=0"; a bare numeric literal means equality.
type QueryFilterSpec struct {
	Search         string            `json:"busca,omitempty"`
	ColumnFilters  map[string]string `json:"filtros_coluna,omitempty"`
	NumericFilters map[string]string `json:"filtros_numericos,omitempty"`
	CaseSensitive  bool              `json:"case_sensitive,omitempty"`
}

// Empty reports whether the spec carries no filters at all.
func (s QueryFilterSpec) Empty() bool {
	return s.Search == "" && len(s.ColumnFilters) == 0 && len(s.NumericFilters) == 0
}

// AppliedFilter records the fate of one requested filter. Numeric filters
// that cannot be applied (unknown column, unparsable expression or a column
// with no numeric values) are skipped, not fatal; SkipReason says why.
type AppliedFilter struct {
	Kind       string `json:"tipo"` // "coluna" | "numerico" | "texto"
	Column     string `json:"coluna,omitempty"`
	Expression string `json:"expressao"`
	Applied    bool   `json:"aplicado"`
	SkipReason string `json:"motivo_descarte,omitempty"`
}

// ColumnStats holds summary statistics for one numeric column of a query
// result set.
type ColumnStats struct {
	Column string  `json:"coluna"`
	Count  int     `json:"contagem"`
	Mean   float64 `json:"media"`
	Min    float64 `json:"minimo"`
	Max    float64 `json:"maximo"`
	StdDev float64 `json:"desvio_padrao"`
}

// QueryResult is the bounded result set of a CSV query.
type QueryResult struct {
	File         string              `json:"arquivo"`
	Columns      []string            `json:"colunas"`
	Rows         []map[string]string `json:"linhas"`
	OriginalRows int                 `json:"linhas_originais"`
	FilteredRows int                 `json:"linhas_filtradas"`
	OmittedRows  int                 `json:"linhas_omitidas"`
	Filters      []AppliedFilter     `json:"filtros"`
	Stats        []ColumnStats       `json:"estatisticas,omitempty"`
	Message      string              `json:"mensagem,omitempty"`
}

// ColumnProfile describes one column of a tabular file.
type ColumnProfile struct {
	Name         string   `json:"nome"`
	Kind         string   `json:"tipo"` // "numerico" | "texto"
	UniqueValues int      `json:"valores_unicos"`
	MissingCells int      `json:"celulas_vazias"`
	Samples      []string `json:"exemplos"`
}

// CorrelationStat is the Pearson correlation between two numeric columns,
// computed over the rows where both cells hold numbers.
type CorrelationStat struct {
	ColumnA     string  `json:"coluna_a"`
	ColumnB     string  `json:"coluna_b"`
	Coefficient float64 `json:"coeficiente"`
	Strength    string  `json:"forca"` // "forte" | "moderada" | "fraca"
	Pairs       int     `json:"pares"`
}

// TableProfile is the structural summary of a tabular file.
type TableProfile struct {
	File           string              `json:"arquivo"`
	Separator      string              `json:"separador"`
	Rows           int                 `json:"linhas"`
	Columns        []ColumnProfile     `json:"colunas"`
	MissingPercent float64             `json:"percentual_dados_faltantes"`
	Correlations   []CorrelationStat   `json:"correlacoes,omitempty"`
	Preview        []map[string]string `json:"preview"`
}
