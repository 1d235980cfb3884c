package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strefethen/home-hub-go/internal/api"
	"github.com/strefethen/home-hub-go/internal/apperrors"
	"github.com/strefethen/home-hub-go/internal/config"
)

type tokenRequest struct {
	APIKey     string `json:"api_key"`
	ClientName string `json:"client_name"`
}

// RegisterRoutes wires auth routes to the router.
func RegisterRoutes(router chi.Router, cfg config.Config) {
	// Exchanges a configured API key for a short-lived bearer token, for
	// clients that would rather not hold the long-lived key in memory.
	router.Method(http.MethodPost, "/v1/auth/token", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		var body tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.APIKey == "" {
			return apperrors.NewValidationError("api_key is required", nil)
		}

		if !matchesAPIKey(cfg, body.APIKey) {
			return apperrors.NewUnauthorizedError("invalid api key")
		}

		clientName := body.ClientName
		if clientName == "" {
			clientName = "api-client"
		}

		token, err := GenerateToken(cfg, TokenPayload{Sub: clientName, ClientName: clientName})
		if err != nil {
			return apperrors.NewInternalError("Failed to issue token")
		}

		return api.WriteJSON(w, http.StatusOK, map[string]any{
			"object":       "token",
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   cfg.JWTAccessTokenExpirySec,
		})
	}))
}
