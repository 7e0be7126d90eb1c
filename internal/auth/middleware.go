package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fluentlink/fluentlink-be/internal/apperror"
	"github.com/fluentlink/fluentlink-be/internal/models"
)

// UserResolver resolves the user ID carried in a verified token to a full
// user record, with the password hash excluded.
type UserResolver interface {
	GetUserByID(id string) (models.User, error)
}

type contextKey string

const userContextKey = contextKey("sessionUser")

// UserFromContext returns the user attached by RequireUser.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}

// RequireUser protects routes. It reads the session cookie, verifies the
// token, resolves the user it names and attaches that user to the request
// context for downstream handlers.
func (m *TokenManager) RequireUser(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized - No token provided")
				return
			}

			claims, err := m.Verify(cookie.Value)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized - Invalid token")
				return
			}

			// The token can outlive the account it names.
			user, err := resolver.GetUserByID(claims.UserID)
			if err != nil {
				var appErr *apperror.Error
				if errors.As(err, &appErr) {
					writeAuthError(w, appErr.Status, appErr.Message)
					return
				}
				log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to resolve session user")
				writeAuthError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
