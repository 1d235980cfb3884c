package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/strefethen/home-hub-go/internal/api"
	"github.com/strefethen/home-hub-go/internal/apperrors"
	"github.com/strefethen/home-hub-go/internal/config"
)

const apiKeyHeader = "X-API-Key"

var publicRoutes = map[string]struct{}{
	"/v1/auth/token":   {},
	"/v1/health":       {},
	"/v1/health/live":  {},
	"/v1/health/ready": {},
}

var publicPrefixes = []string{
	"/v1/health",
}

// Middleware validates the X-API-Key header or a Bearer JWT for protected routes.
func Middleware(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicRoute(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if key := r.Header.Get(apiKeyHeader); key != "" {
				if matchesAPIKey(cfg, key) {
					next.ServeHTTP(w, r)
					return
				}
				api.WriteError(w, r, apperrors.NewUnauthorizedError("invalid x-api-key header"))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.WriteError(w, r, apperrors.NewUnauthorizedError("Missing X-API-Key or Authorization header"))
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader || token == "" {
				api.WriteError(w, r, apperrors.NewUnauthorizedError("Invalid Authorization header format"))
				return
			}

			if _, err := VerifyToken(cfg, token); err != nil {
				if err == ErrTokenExpired {
					api.WriteError(w, r, apperrors.NewUnauthorizedError("Token has expired", apperrors.ErrorCodeAuthTokenExpired))
					return
				}
				api.WriteError(w, r, apperrors.NewUnauthorizedError("Invalid token", apperrors.ErrorCodeAuthTokenInvalid))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func matchesAPIKey(cfg config.Config, key string) bool {
	trimmed := strings.TrimSpace(key)
	for _, configured := range cfg.APIKeys {
		if subtle.ConstantTimeCompare([]byte(configured), []byte(trimmed)) == 1 {
			return true
		}
	}
	return false
}

func isPublicRoute(path string) bool {
	if _, ok := publicRoutes[path]; ok {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
