package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/models"
	"github.com/cashora/backend/internal/services"
	"go.uber.org/zap"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenVerifier is satisfied by *services.AuthService.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*services.Claims, error)
}

// AuthMiddleware requires a valid, unrevoked bearer token and stores its
// claims on the request context.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	log := logging.L().Named("auth_middleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				services.SendErrorResponse(w, "Authorization header required", http.StatusUnauthorized, nil)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				services.SendErrorResponse(w, "Invalid authorization header format", http.StatusUnauthorized, nil)
				return
			}

			claims, err := verifier.Verify(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				log.Debug("token refused", zap.String("path", r.URL.Path), zap.Error(err))
				if errors.Is(err, services.ErrTokenRevoked) {
					services.SendErrorResponse(w, "Token has been revoked", http.StatusUnauthorized, nil)
					return
				}
				if errors.Is(err, models.ErrUserNotActive) {
					services.SendErrorResponse(w, "Account is not active", http.StatusForbidden, nil)
					return
				}
				services.SendErrorResponse(w, "Invalid token", http.StatusUnauthorized, nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole lets through only tokens carrying role. It must run after
// AuthMiddleware.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
				return
			}
			if claims.Role != role {
				services.SendErrorResponse(w, "Forbidden", http.StatusForbidden, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithClaims(ctx context.Context, claims *services.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*services.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*services.Claims)
	return claims, ok && claims != nil
}

// SecurityHeaders sets the response headers every API answer carries.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
