package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/internal/observability"
	"github.com/sapiens-platform/sapiens/models"
	"github.com/sapiens-platform/sapiens/services/analysis"
	"github.com/sapiens-platform/sapiens/services/audit"
	"github.com/sapiens-platform/sapiens/services/validation"
	"github.com/sapiens-platform/sapiens/utils"
	"github.com/sapiens-platform/sapiens/web"
)

// analysisForm is the validated shape of a submission.
type analysisForm struct {
	Topic string `validate:"required,min=3"`
}

// AnalysisHandler handles analysis submission and tracking.
type AnalysisHandler struct {
	uploadDir  string
	maxBytes   int64
	validator  *validation.Validator
	store      *analysis.Store
	runner     *analysis.Runner
	auditor    *audit.Auditor
	metrics    *observability.Metrics
	renderer   *web.Renderer
	downloader *http.Client
	logger     *zap.Logger
}

// NewAnalysisHandler creates an AnalysisHandler.
func NewAnalysisHandler(uploadDir string, maxBytes int64, validator *validation.Validator, store *analysis.Store, runner *analysis.Runner, auditor *audit.Auditor, metrics *observability.Metrics, renderer *web.Renderer, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		uploadDir:  uploadDir,
		maxBytes:   maxBytes,
		validator:  validator,
		store:      store,
		runner:     runner,
		auditor:    auditor,
		metrics:    metrics,
		renderer:   renderer,
		downloader: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// HandleForm handles GET /analise.
func (h *AnalysisHandler) HandleForm(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, "analise", map[string]interface{}{})
}

// HandleCreate handles POST /analise: validates the topic, collects the
// uploaded files and downloaded links, registers the analysis and launches
// the pipeline. Rejected files do not abort the submission.
func (h *AnalysisHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		_ = utils.WriteBadRequest(w, fmt.Sprintf("Erro ao processar formulário: %v", err), nil)
		return
	}

	form := analysisForm{Topic: strings.TrimSpace(r.FormValue("topico_pesquisa"))}
	if err := utils.ValidateStruct(form); err != nil {
		h.renderPage(w, "analise", map[string]interface{}{
			"Error": "Por favor, descreva o tópico de pesquisa.",
		})
		return
	}

	var files []models.AnalysisFile
	var warnings []string

	files, warnings = h.collectLinks(r, files, warnings)
	files, warnings = h.collectUploads(r, files, warnings)

	created := h.store.Create(form.Topic)
	if _, err := h.store.Update(created.ID, func(a *models.Analysis) {
		a.Files = files
		a.Status = models.StatusFilesValidated
		a.Progress = 25
	}); err != nil {
		h.logger.Error("analysis initialization failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	h.auditor.StartAnalysis(r.Context(), created.ID.String(), form.Topic, paths,
		audit.WithRequest(r.RemoteAddr, r.UserAgent()),
		audit.WithComponent("handler_analise"))

	h.runner.Launch(created.ID)

	for _, warning := range warnings {
		h.logger.Warn("submission warning",
			zap.String("analise_id", created.ID.String()),
			zap.String("aviso", warning))
	}

	http.Redirect(w, r, "/resultados/"+created.ID.String(), http.StatusSeeOther)
}

// HandleStatus handles GET /status/{id}.
func (h *AnalysisHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ValidateUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteNotFound(w, "Análise não encontrada")
		return
	}

	a, err := h.store.Get(id)
	if err != nil {
		_ = utils.WriteNotFound(w, "Análise não encontrada")
		return
	}
	_ = utils.WriteOK(w, a)
}

// HandleResults handles GET /resultados/{id}: the results page for a
// completed analysis, the progress page otherwise.
func (h *AnalysisHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ValidateUUID(chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	a, err := h.store.Get(id)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	page := "progresso"
	if a.Status == models.StatusCompleted {
		page = "resultados"
	}
	h.renderPage(w, page, map[string]interface{}{"Analysis": a})
}

// collectLinks downloads each submitted URL into the upload directory and
// validates it like a local upload. Failures become warnings.
func (h *AnalysisHandler) collectLinks(r *http.Request, files []models.AnalysisFile, warnings []string) ([]models.AnalysisFile, []string) {
	raw := strings.TrimSpace(r.FormValue("links_sites"))
	if raw == "" {
		return files, warnings
	}

	for _, link := range strings.Split(raw, "\n") {
		link = strings.TrimSpace(link)
		if link == "" {
			continue
		}

		resp, err := h.downloader.Get(link)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Erro ao baixar %s: %v", link, err))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			warnings = append(warnings, fmt.Sprintf("Falha ao baixar %s: Status %d", link, resp.StatusCode))
			continue
		}

		name := filepath.Base(link)
		if filepath.Ext(name) == "" {
			name += ".txt"
		}
		file, warning := h.storeAndValidate(r, name, link, resp.Body)
		resp.Body.Close()

		if warning != "" {
			warnings = append(warnings, warning)
			continue
		}
		files = append(files, *file)
	}
	return files, warnings
}

// collectUploads saves and validates the multipart files of the submission.
func (h *AnalysisHandler) collectUploads(r *http.Request, files []models.AnalysisFile, warnings []string) ([]models.AnalysisFile, []string) {
	if r.MultipartForm == nil {
		return files, warnings
	}

	for _, header := range r.MultipartForm.File["arquivos"] {
		if header.Filename == "" {
			continue
		}
		src, err := header.Open()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Erro ao ler %s: %v", header.Filename, err))
			continue
		}
		file, warning := h.storeAndValidate(r, header.Filename, header.Filename, src)
		src.Close()

		if warning != "" {
			warnings = append(warnings, warning)
			continue
		}
		files = append(files, *file)
	}
	return files, warnings
}

// storeAndValidate persists one input and runs security validation.
// Invalid files are deleted; the returned warning names the first error.
func (h *AnalysisHandler) storeAndValidate(r *http.Request, name, origin string, src io.Reader) (*models.AnalysisFile, string) {
	storedName, path, size, err := saveUpload(h.uploadDir, name, src)
	if err != nil {
		return nil, fmt.Sprintf("Erro ao salvar %s: %v", origin, err)
	}

	result := h.validator.Validate(path)
	h.metrics.RecordValidation(result.Valid)
	h.auditor.RecordValidation(r.Context(), result,
		audit.WithRequest(r.RemoteAddr, r.UserAgent()),
		audit.WithComponent("handler_analise"))

	if !result.Valid {
		os.Remove(path)
		reason := "arquivo inválido"
		if len(result.Errors) > 0 {
			reason = result.Errors[0]
		}
		return nil, fmt.Sprintf("Arquivo %s rejeitado: %s", origin, reason)
	}

	return &models.AnalysisFile{
		OriginalName: origin,
		StoredName:   storedName,
		Path:         path,
		Size:         size,
		Validation:   result,
	}, ""
}

func (h *AnalysisHandler) renderPage(w http.ResponseWriter, page string, data map[string]interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, page, data); err != nil {
		h.logger.Error("template rendering failed",
			zap.String("page", page), zap.Error(err))
		http.Error(w, "Erro interno do servidor", http.StatusInternalServerError)
	}
}
