package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/config"
	"github.com/sapiens-platform/sapiens/internal/observability"
	"github.com/sapiens-platform/sapiens/models"
	"github.com/sapiens-platform/sapiens/services/analysis"
	"github.com/sapiens-platform/sapiens/services/audit"
	"github.com/sapiens-platform/sapiens/services/pipeline"
	"github.com/sapiens-platform/sapiens/services/query"
	"github.com/sapiens-platform/sapiens/services/validation"
	"github.com/sapiens-platform/sapiens/web"
)

// stubLLM answers every stage with a fixed string.
type stubLLM struct {
	answer string
}

func (s *stubLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	return s.answer, nil
}

// testDeps wires a full handler stack against a temp upload directory and an
// in-memory audit trail.
type testDeps struct {
	uploadDir string
	validator *validation.Validator
	auditor   *audit.Auditor
	metrics   *observability.Metrics
	renderer  *web.Renderer
	store     *analysis.Store
	runner    *analysis.Runner
	engine    *query.Engine
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()

	logger := zap.NewNop()
	engine := query.NewEngine(logger)
	store := analysis.NewStore()
	auditor := audit.NewAuditor(config.AuditConfig{ActorID: "teste"}, nil, logger)
	pipe := pipeline.New(&stubLLM{answer: "relatório final"}, engine, logger)

	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	return &testDeps{
		uploadDir: t.TempDir(),
		validator: validation.NewValidator(config.DefaultSecurityPolicy(), logger),
		auditor:   auditor,
		metrics:   metrics,
		renderer:  renderer,
		store:     store,
		runner:    analysis.NewRunner(store, pipe, auditor, metrics, logger, time.Minute),
		engine:    engine,
	}
}

// multipartBody builds a multipart form with the given fields and files.
func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for name, content := range files {
		part, err := writer.CreateFormFile("arquivos", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

// waitForTerminal polls the store until the analysis reaches a final status.
func waitForTerminal(t *testing.T, store *analysis.Store, id uuid.UUID) *models.Analysis {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		a, err := store.Get(id)
		require.NoError(t, err)
		if a.Status.Terminal() {
			return a
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("analysis did not finish in time")
	return nil
}
