// Package middleware holds the HTTP middleware of the web shell. The audit
// admin surface is protected by HMAC-signed JWTs issued out of band.
package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/utils"
)

// RoleAuditor is the role required by the audit admin endpoints.
const RoleAuditor = "auditor"

// Claims are the JWT claims of an admin token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates admin JWTs signed with the configured secret.
type AuthMiddleware struct {
	secret []byte
	logger *zap.Logger
}

// NewAuthMiddleware creates an AuthMiddleware. An empty secret disables
// authentication entirely: every protected request is rejected.
func NewAuthMiddleware(secret string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		secret: []byte(secret),
		logger: logger,
	}
}

// RequireAuth rejects requests without a valid Bearer token.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		if len(m.secret) == 0 {
			m.logger.Warn("audit admin surface disabled: no secret configured",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Superfície administrativa desabilitada")
			return
		}

		token := extractBearerToken(r)
		if token == "" {
			m.logger.Warn("missing token", zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Token de autenticação ausente")
			return
		}

		claims, err := m.validateToken(token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Token inválido ou expirado")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
	})
}

// RequireRole rejects authenticated requests whose token lacks the role.
// Must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				_ = utils.WriteUnauthorized(w, "Autenticação necessária")
				return
			}
			if claims.Role != role {
				m.logger.Warn("insufficient role",
					zap.String("request_id", GetRequestIDFromContext(r.Context())),
					zap.String("required_role", role),
					zap.String("token_role", claims.Role))
				_ = utils.WriteForbidden(w, "Perfil sem permissão para esta operação")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IssueToken signs a token for subject with the given role and lifetime.
func (m *AuthMiddleware) IssueToken(subject, role string, ttl time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("SECRET_KEY não configurada")
	}

	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "sapiens",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// validateToken parses and verifies an HMAC-signed token.
func (m *AuthMiddleware) validateToken(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
