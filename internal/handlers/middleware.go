package handlers

import (
	"net/http"
	"strings"

	"parsegate/internal/httputil"
	"parsegate/internal/services"
)

// BearerToken extracts the token from an Authorization header, or "".
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// RequireOperator guards admin routes with an operator access token.
func RequireOperator(auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				httputil.WriteUnauthorized(w, "Missing access token")
				return
			}

			if _, err := auth.VerifyAccessToken(r.Context(), token); err != nil {
				httputil.WriteUnauthorized(w, "Invalid access token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
