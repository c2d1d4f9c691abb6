// Package handlers implements the HTTP surface of the platform: uploads,
// analysis submission and tracking, the audit admin API and the HTML pages.
package handlers

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/internal/observability"
	"github.com/sapiens-platform/sapiens/models"
	"github.com/sapiens-platform/sapiens/services/audit"
	"github.com/sapiens-platform/sapiens/services/validation"
	"github.com/sapiens-platform/sapiens/utils"
)

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	Success      bool                     `json:"success"`
	Filename     string                   `json:"filename"`
	OriginalName string                   `json:"original_name"`
	Size         int64                    `json:"size"`
	Validation   *models.ValidationResult `json:"validacao"`
}

// UploadHandler handles standalone file uploads.
type UploadHandler struct {
	uploadDir string
	maxBytes  int64
	validator *validation.Validator
	auditor   *audit.Auditor
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(uploadDir string, maxBytes int64, validator *validation.Validator, auditor *audit.Auditor, metrics *observability.Metrics, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploadDir: uploadDir,
		maxBytes:  maxBytes,
		validator: validator,
		auditor:   auditor,
		metrics:   metrics,
		logger:    logger,
	}
}

// HandleUpload handles POST /upload. The file is stored under a unique
// name, validated, and removed again when validation rejects it.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("arquivo")
	if err != nil {
		_ = utils.WriteBadRequest(w, "Nenhum arquivo enviado", nil)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		_ = utils.WriteBadRequest(w, "Nome de arquivo vazio", nil)
		return
	}

	storedName, path, size, err := saveUpload(h.uploadDir, header.Filename, file)
	if err != nil {
		h.logger.Error("upload save failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w, fmt.Sprintf("Erro no upload: %v", err))
		return
	}

	result := h.validator.Validate(path)
	h.metrics.RecordValidation(result.Valid)
	h.auditor.RecordValidation(r.Context(), result,
		audit.WithRequest(r.RemoteAddr, r.UserAgent()),
		audit.WithComponent("handler_upload"))

	if !result.Valid {
		os.Remove(path)
		h.metrics.RecordUpload("rejected")
		reason := "arquivo inválido"
		if len(result.Errors) > 0 {
			reason = result.Errors[0]
		}
		_ = utils.WriteBadRequest(w, fmt.Sprintf("Arquivo rejeitado: %s", reason), nil)
		return
	}

	h.metrics.RecordUpload("accepted")
	h.logger.Info("file uploaded",
		zap.String("arquivo", storedName),
		zap.Int64("tamanho", size))

	_ = utils.WriteOK(w, UploadResponse{
		Success:      true,
		Filename:     storedName,
		OriginalName: header.Filename,
		Size:         size,
		Validation:   result,
	})
}
