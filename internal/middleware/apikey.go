package middleware

import (
	"app/internal/logger"
	"app/internal/service"
	"context"
	"net/http"
)

// APIKeyMiddleware authenticates requests carrying an x-api-key header.
// The resolved key owner is stored in the request context the same way
// AuthMiddleware stores a JWT subject.
func APIKeyMiddleware(apiKeys service.APIKeyService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logger.New()
			token := r.Header.Get("x-api-key")
			if token == "" {
				logger.Error().Msg("x-api-key header missing")
				http.Error(w, "x-api-key header missing", http.StatusUnauthorized)
				return
			}
			user, err := apiKeys.Resolve(r.Context(), token)
			if err != nil {
				logger.Error().Msgf("Invalid API key: %+v", err)
				http.Error(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), UserContextKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
