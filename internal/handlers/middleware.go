package handlers

import (
	"context"
	"net/http"
	"strings"

	"medialog/internal/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

// AuthMiddleware validates the bearer token and stashes the claims in
// the request context for handlers to read.
func (h *APIHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		claims, err := h.jwt.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userID returns the authenticated user's ID, or 0 when the request
// somehow bypassed the middleware.
func (h *APIHandler) userID(r *http.Request) int64 {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims.UserID
	}
	return 0
}
