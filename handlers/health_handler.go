package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/repositories/postgres"
	"github.com/sapiens-platform/sapiens/utils"
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	System    string `json:"sistema"`
	Version   string `json:"versao"`
	Database  string `json:"banco_dados,omitempty"`
}

// HealthHandler reports service liveness.
type HealthHandler struct {
	db     *postgres.DB
	logger *zap.Logger
}

// NewHealthHandler creates a HealthHandler. db may be nil when the audit
// trail runs without a database.
func NewHealthHandler(db *postgres.DB, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// HandleHealth handles GET /api/health.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		System:    "SAPIENS Web Interface",
		Version:   "2.0.0",
	}

	if h.db != nil {
		resp.Database = "connected"
		if err := h.db.HealthCheck(r.Context()); err != nil {
			h.logger.Warn("database health check failed", zap.Error(err))
			resp.Status = "degraded"
			resp.Database = "unavailable"
		}
	}

	_ = utils.WriteOK(w, resp)
}
