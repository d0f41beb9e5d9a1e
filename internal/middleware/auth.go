package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/flodiary/flodiary-backend/internal/models"
)

// Authenticator resolves a bearer token to a user. Implemented by
// services.AuthService.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type contextKey string

const userContextKey contextKey = "authenticated_user"

// UserFromContext returns the authenticated user stored by RequireAuth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userContextKey).(*models.User)
	return u, ok
}

// TokenFromContext returns the raw bearer token stored by RequireAuth, for
// handlers that need it (logout).
func TokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(tokenContextKey).(string)
	return t
}

const tokenContextKey contextKey = "bearer_token"

// RequireAuth validates the Authorization bearer token and loads the bound
// user into the request context. The response never says which check failed;
// the specific failure is only logged.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, http.StatusUnauthorized, "Access token required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeAuthError(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			token := parts[1]
			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				log.Printf("auth error: %v", err)
				writeAuthError(w, http.StatusForbidden, "Authentication failed")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			ctx = context.WithValue(ctx, tokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success":false,"error":"` + message + `"}`))
}
