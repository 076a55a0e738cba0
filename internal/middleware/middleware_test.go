package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	claims *services.Claims
	err    error
	got    string
}

func (s *stubVerifier) Verify(ctx context.Context, token string) (*services.Claims, error) {
	s.got = token
	return s.claims, s.err
}

func claimsEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Header().Set("X-User", string(claims.Role))
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier *stubVerifier
		want     int
	}{
		{"missing header", "", &stubVerifier{}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", &stubVerifier{}, http.StatusUnauthorized},
		{"empty token", "Bearer ", &stubVerifier{}, http.StatusUnauthorized},
		{"invalid token", "Bearer abc", &stubVerifier{err: services.ErrInvalidToken}, http.StatusUnauthorized},
		{"revoked token", "Bearer abc", &stubVerifier{err: services.ErrTokenRevoked}, http.StatusUnauthorized},
		{"inactive account", "Bearer abc", &stubVerifier{err: fmt.Errorf("user 1: %w", models.ErrUserNotActive)}, http.StatusForbidden},
		{"valid token", "Bearer abc", &stubVerifier{claims: &services.Claims{UserID: 1, Role: models.RoleUser}}, http.StatusOK},
		{"lowercase scheme", "bearer abc", &stubVerifier{claims: &services.Claims{UserID: 1, Role: models.RoleUser}}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			AuthMiddleware(tt.verifier)(claimsEcho()).ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "abc", tt.verifier.got)
				assert.Equal(t, "user", w.Header().Get("X-User"))
			}
		})
	}

	t.Run("revoked message", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc")
		w := httptest.NewRecorder()
		AuthMiddleware(&stubVerifier{err: fmt.Errorf("jti abc: %w", services.ErrTokenRevoked)})(claimsEcho()).ServeHTTP(w, req)
		assert.Contains(t, w.Body.String(), "revoked")
	})
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(models.RoleAdmin)(claimsEcho())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = req.WithContext(WithClaims(req.Context(), &services.Claims{UserID: 1, Role: models.RoleUser}))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = req.WithContext(WithClaims(req.Context(), &services.Claims{UserID: 3, Role: models.RoleAdmin}))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestDocumentServer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "receipt.png"), []byte("png-bytes"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o750))

	server := DocumentServer(dir)
	tests := []struct {
		path string
		want int
	}{
		{"/receipt.png", http.StatusOK},
		{"/missing.png", http.StatusNotFound},
		{"/nested", http.StatusNotFound},
		{"/", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "png-bytes", w.Body.String())
			}
		})
	}
}
