package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/services/audit"
	"github.com/sapiens-platform/sapiens/utils"
)

// AuditHandler exposes the audit trail admin API.
type AuditHandler struct {
	auditor *audit.Auditor
	logger  *zap.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(auditor *audit.Auditor, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{auditor: auditor, logger: logger}
}

// HandleStatistics handles GET /api/audit/statistics.
func (h *AuditHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.auditor.Statistics())
}

// HandleExport handles POST /api/audit/export. The full session trail is
// returned as a downloadable JSON document.
func (h *AuditHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	export := h.auditor.Export()

	h.logger.Info("audit trail exported",
		zap.String("sessao_id", h.auditor.SessionID().String()),
		zap.Int("eventos", len(export.Events)))

	w.Header().Set("Content-Disposition", "attachment; filename=auditoria_"+h.auditor.SessionID().String()+".json")
	_ = utils.WriteOK(w, export)
}
