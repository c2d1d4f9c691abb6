package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadHandler_AcceptsValidCSV(t *testing.T) {
	deps := newTestDeps(t)
	h := NewUploadHandler(deps.uploadDir, 10<<20, deps.validator, deps.auditor, deps.metrics, zap.NewNop())

	req := newUploadRequest(t, "arquivo", "dados.csv", []byte("nome,idade\nAna,30\nBeto,25\n"))
	rec := httptest.NewRecorder()
	h.HandleUpload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "dados.csv", resp.OriginalName)
	assert.Contains(t, resp.Filename, "dados.csv")
	assert.True(t, resp.Validation.Valid)

	stored, err := os.ReadFile(filepath.Join(deps.uploadDir, resp.Filename))
	require.NoError(t, err)
	assert.Contains(t, string(stored), "Ana,30")
}

func TestUploadHandler_RejectsBlockedExtension(t *testing.T) {
	deps := newTestDeps(t)
	h := NewUploadHandler(deps.uploadDir, 10<<20, deps.validator, deps.auditor, deps.metrics, zap.NewNop())

	req := newUploadRequest(t, "arquivo", "virus.exe", []byte("MZ arbitrary"))
	rec := httptest.NewRecorder()
	h.HandleUpload(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Arquivo rejeitado")

	entries, err := os.ReadDir(deps.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected file must be removed")
}

func TestUploadHandler_MissingFile(t *testing.T) {
	deps := newTestDeps(t)
	h := NewUploadHandler(deps.uploadDir, 10<<20, deps.validator, deps.auditor, deps.metrics, zap.NewNop())

	req := newUploadRequest(t, "outro_campo", "dados.csv", []byte("a,b\n1,2\n"))
	rec := httptest.NewRecorder()
	h.HandleUpload(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nenhum arquivo enviado")
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "dados.csv", "dados.csv"},
		{"spaces", "meus dados.csv", "meus_dados.csv"},
		{"path traversal", "../../etc/passwd", "passwd"},
		{"special chars", "relação$final!.txt", "relaofinal.txt"},
		{"empty", "", "arquivo"},
		{"dot", ".", "arquivo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, secureFilename(tt.in))
		})
	}
}
