package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/internal/observability"
	"github.com/sapiens-platform/sapiens/models"
	"github.com/sapiens-platform/sapiens/services/audit"
	"github.com/sapiens-platform/sapiens/services/query"
	"github.com/sapiens-platform/sapiens/utils"
)

// QueryRequest is the body of POST /api/query. File names the target inside
// the upload directory; path components are not accepted.
type QueryRequest struct {
	File           string            `json:"arquivo" validate:"required"`
	Search         string            `json:"busca"`
	ColumnFilters  map[string]string `json:"filtros_coluna"`
	NumericFilters map[string]string `json:"filtros_numericos"`
	CaseSensitive  bool              `json:"case_sensitive"`
	Limit          int               `json:"limite"`
}

// QueryHandler runs filtered CSV queries over previously uploaded files.
type QueryHandler struct {
	uploadDir string
	engine    *query.Engine
	auditor   *audit.Auditor
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewQueryHandler creates a QueryHandler.
func NewQueryHandler(uploadDir string, engine *query.Engine, auditor *audit.Auditor, metrics *observability.Metrics, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		uploadDir: uploadDir,
		engine:    engine,
		auditor:   auditor,
		metrics:   metrics,
		logger:    logger,
	}
}

// HandleQuery handles POST /api/query.
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Corpo da requisição inválido", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		details := map[string]interface{}{}
		for field, msg := range utils.GetValidationFields(err) {
			details[field] = msg
		}
		_ = utils.WriteBadRequest(w, "Dados inválidos", details)
		return
	}
	if strings.Contains(req.File, "..") || filepath.Base(req.File) != req.File {
		_ = utils.WriteBadRequest(w, "Nome de arquivo inválido", nil)
		return
	}

	path := filepath.Join(h.uploadDir, req.File)
	spec := models.QueryFilterSpec{
		Search:         req.Search,
		ColumnFilters:  req.ColumnFilters,
		NumericFilters: req.NumericFilters,
		CaseSensitive:  req.CaseSensitive,
	}

	result, err := h.engine.Query(path, spec, req.Limit)
	if err != nil {
		h.logger.Warn("csv query failed",
			zap.String("arquivo", req.File), zap.Error(err))
		_ = utils.WriteBadRequest(w, "Erro na consulta: "+err.Error(), nil)
		return
	}

	h.metrics.RecordQuery()
	h.auditor.Record(r.Context(), "busca_csv",
		map[string]interface{}{
			"arquivo": req.File,
			"busca":   req.Search,
		},
		map[string]interface{}{
			"linhas_originais":  result.OriginalRows,
			"linhas_filtradas":  result.FilteredRows,
			"linhas_retornadas": len(result.Rows),
		},
		audit.WithRequest(r.RemoteAddr, r.UserAgent()),
		audit.WithComponent("handler_busca"))

	_ = utils.WriteOK(w, result)
}
