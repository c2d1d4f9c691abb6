package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/models"
)

func newAnalysisHandler(t *testing.T, deps *testDeps) *AnalysisHandler {
	t.Helper()
	return NewAnalysisHandler(deps.uploadDir, 10<<20, deps.validator, deps.store,
		deps.runner, deps.auditor, deps.metrics, deps.renderer, zap.NewNop())
}

func analysisRouter(h *AnalysisHandler) chi.Router {
	r := chi.NewRouter()
	r.Get("/analise", h.HandleForm)
	r.Post("/analise", h.HandleCreate)
	r.Get("/status/{id}", h.HandleStatus)
	r.Get("/resultados/{id}", h.HandleResults)
	return r
}

func TestAnalysisHandler_CreateRunsPipeline(t *testing.T) {
	deps := newTestDeps(t)
	h := newAnalysisHandler(t, deps)
	router := analysisRouter(h)

	body, contentType := multipartBody(t,
		map[string]string{"topico_pesquisa": "Evasão escolar no ensino médio"},
		map[string][]byte{"notas.csv": []byte("aluno,nota\nAna,8.5\nBeto,6.0\n")})

	req := httptest.NewRequest(http.MethodPost, "/analise", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/resultados/"), "unexpected redirect %q", location)

	id, err := uuid.Parse(strings.TrimPrefix(location, "/resultados/"))
	require.NoError(t, err)

	final := waitForTerminal(t, deps.store, id)
	assert.Equal(t, models.StatusCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)
	assert.Equal(t, "relatório final", final.Results)
	require.Len(t, final.Files, 1)
	assert.Equal(t, "notas.csv", final.Files[0].OriginalName)
}

func TestAnalysisHandler_CreateRequiresTopic(t *testing.T) {
	deps := newTestDeps(t)
	h := newAnalysisHandler(t, deps)
	router := analysisRouter(h)

	body, contentType := multipartBody(t, map[string]string{"topico_pesquisa": "  "}, nil)
	req := httptest.NewRequest(http.MethodPost, "/analise", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tópico de pesquisa")
	assert.Equal(t, 0, deps.store.Len())
}

func TestAnalysisHandler_RejectedFileIsWarningOnly(t *testing.T) {
	deps := newTestDeps(t)
	h := newAnalysisHandler(t, deps)
	router := analysisRouter(h)

	body, contentType := multipartBody(t,
		map[string]string{"topico_pesquisa": "Análise de indicadores"},
		map[string][]byte{"script.exe": []byte("MZ")})

	req := httptest.NewRequest(http.MethodPost, "/analise", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)

	id, err := uuid.Parse(strings.TrimPrefix(rec.Header().Get("Location"), "/resultados/"))
	require.NoError(t, err)

	final := waitForTerminal(t, deps.store, id)
	assert.Empty(t, final.Files, "rejected file must not reach the pipeline")
	assert.Equal(t, models.StatusCompleted, final.Status)
}

func TestAnalysisHandler_StatusSnapshot(t *testing.T) {
	deps := newTestDeps(t)
	h := newAnalysisHandler(t, deps)
	router := analysisRouter(h)

	created := deps.store.Create("Qualidade do ar urbano")

	req := httptest.NewRequest(http.MethodGet, "/status/"+created.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot models.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, created.ID, snapshot.ID)
	assert.Equal(t, "Qualidade do ar urbano", snapshot.Topic)
	assert.Equal(t, models.StatusProcessing, snapshot.Status)
}

func TestAnalysisHandler_StatusUnknownID(t *testing.T) {
	deps := newTestDeps(t)
	h := newAnalysisHandler(t, deps)
	router := analysisRouter(h)

	for _, id := range []string{uuid.NewString(), "nao-e-uuid"} {
		req := httptest.NewRequest(http.MethodGet, "/status/"+id, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Análise não encontrada")
	}
}

func TestAnalysisHandler_ResultsPageByStatus(t *testing.T) {
	deps := newTestDeps(t)
	h := newAnalysisHandler(t, deps)
	router := analysisRouter(h)

	created := deps.store.Create("Mobilidade urbana")

	req := httptest.NewRequest(http.MethodGet, "/resultados/"+created.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Análise em Andamento")

	_, err := deps.store.Update(created.ID, func(a *models.Analysis) {
		a.Status = models.StatusCompleted
		a.Progress = 100
		a.Results = "relatório consolidado"
	})
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Resultados da Análise")
	assert.Contains(t, rec.Body.String(), "relatório consolidado")
}
