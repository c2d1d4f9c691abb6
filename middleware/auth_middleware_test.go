package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func protectedHandler(t *testing.T, hit *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	m := NewAuthMiddleware("segredo-de-teste", zap.NewNop())
	token, err := m.IssueToken("auditor@ufpb.br", RoleAuditor, time.Hour)
	require.NoError(t, err)

	var hit bool
	handler := m.RequireAuth(protectedHandler(t, &hit))

	req := httptest.NewRequest(http.MethodGet, "/api/audit/statistics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, hit)
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	m := NewAuthMiddleware("segredo-de-teste", zap.NewNop())

	var hit bool
	handler := m.RequireAuth(protectedHandler(t, &hit))

	req := httptest.NewRequest(http.MethodGet, "/api/audit/statistics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, hit)
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	m := NewAuthMiddleware("segredo-de-teste", zap.NewNop())
	token, err := m.IssueToken("auditor@ufpb.br", RoleAuditor, -time.Minute)
	require.NoError(t, err)

	var hit bool
	handler := m.RequireAuth(protectedHandler(t, &hit))

	req := httptest.NewRequest(http.MethodGet, "/api/audit/statistics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, hit)
}

func TestRequireAuthRejectsTokenSignedWithOtherSecret(t *testing.T) {
	other := NewAuthMiddleware("outro-segredo", zap.NewNop())
	token, err := other.IssueToken("auditor@ufpb.br", RoleAuditor, time.Hour)
	require.NoError(t, err)

	m := NewAuthMiddleware("segredo-de-teste", zap.NewNop())
	var hit bool
	handler := m.RequireAuth(protectedHandler(t, &hit))

	req := httptest.NewRequest(http.MethodGet, "/api/audit/statistics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, hit)
}

func TestRequireAuthWithoutSecretRejectsEverything(t *testing.T) {
	m := NewAuthMiddleware("", zap.NewNop())

	var hit bool
	handler := m.RequireAuth(protectedHandler(t, &hit))

	req := httptest.NewRequest(http.MethodGet, "/api/audit/statistics", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, hit)
}

func TestRequireRole(t *testing.T) {
	m := NewAuthMiddleware("segredo-de-teste", zap.NewNop())

	t.Run("matching role passes", func(t *testing.T) {
		token, err := m.IssueToken("auditor@ufpb.br", RoleAuditor, time.Hour)
		require.NoError(t, err)

		var hit bool
		handler := m.RequireAuth(m.RequireRole(RoleAuditor)(protectedHandler(t, &hit)))

		req := httptest.NewRequest(http.MethodPost, "/api/audit/export", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, hit)
	})

	t.Run("other role is forbidden", func(t *testing.T) {
		token, err := m.IssueToken("aluno@ufpb.br", "aluno", time.Hour)
		require.NoError(t, err)

		var hit bool
		handler := m.RequireAuth(m.RequireRole(RoleAuditor)(protectedHandler(t, &hit)))

		req := httptest.NewRequest(http.MethodPost, "/api/audit/export", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, hit)
	})
}

func TestExtractBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, extractBearerToken(req))

	req.Header.Set("Authorization", "Basic abc123")
	assert.Empty(t, extractBearerToken(req))

	req.Header.Set("Authorization", "Bearer token123")
	assert.Equal(t, "token123", extractBearerToken(req))

	req.Header.Set("Authorization", "bearer token456")
	assert.Equal(t, "token456", extractBearerToken(req))
}
