package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"meetscribe/internal/domain/entities"
	Irepository "meetscribe/internal/domain/interfaces/repository"
	Iservices "meetscribe/internal/domain/interfaces/services"
	"meetscribe/internal/infra/logger"
)

type contextKey string

const userContextKey contextKey = "authenticated-user"

// AuthMiddleware verifies the bearer token and loads the user row for the
// token's subject, rejecting the request with 401 otherwise.
func AuthMiddleware(log *logger.Logger, auth Iservices.IAuthService, users Irepository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				http.Error(w, "Missing bearer token", http.StatusUnauthorized)
				return
			}

			principal, err := auth.VerifyToken(token)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			user, err := users.FindByID(r.Context(), principal.ID)
			if err != nil {
				log.Warn(fmt.Sprintf("Token for unknown user %s rejected", principal.ID))
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// ContextWithUser attaches the authenticated user to the context.
func ContextWithUser(ctx context.Context, user entities.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user placed by AuthMiddleware.
func UserFromContext(ctx context.Context) (entities.User, bool) {
	user, ok := ctx.Value(userContextKey).(entities.User)
	return user, ok
}
