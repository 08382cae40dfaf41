package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/schoolkit/edupay/internal/account/domain"
	"github.com/schoolkit/edupay/pkg/auth"
)

type contextKey string

const (
	// UserIDKey carries the authenticated caller's id
	UserIDKey contextKey = "user_id"
	// EmailKey carries the authenticated caller's email
	EmailKey contextKey = "email"
	// RolesKey carries the authenticated caller's role set
	RolesKey contextKey = "roles"
)

// AuthMiddleware validates the bearer JWT and stores the caller identity in
// the request context
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, EmailKey, claims.Email)
		ctx = context.WithValue(ctx, RolesKey, claims.Roles)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// AdminMiddleware requires the caller's role set to include an admin role
func AdminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		roles, ok := r.Context().Value(RolesKey).([]string)
		if !ok || !domain.RoleSet(roles).HasAnyAdmin() {
			respondError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
