package middlewares

import (
	"context"
	"net/http"
	"strings"

	"researchhub/researchhub/services/token"
	"researchhub/researchhub/sources"
	"researchhub/researchhub/types"
	"researchhub/researchhub/utils/apperrors"
	"researchhub/researchhub/utils/logging"

	"go.uber.org/zap"
)

type contextKey string

const userKey contextKey = "user"

const msgInvalidCredentials = "Could not validate credentials"

// AuthMiddleware resolves the bearer token to an active user and stores it
// on the request context.
func AuthMiddleware(tokens *token.Service, users sources.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			scheme, raw, ok := strings.Cut(auth, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				apperrors.Write(w, r, apperrors.Unauthorized(msgInvalidCredentials))
				return
			}
			userID, err := tokens.Verify(strings.TrimSpace(raw))
			if err != nil {
				apperrors.Write(w, r, apperrors.Unauthorized(msgInvalidCredentials).WithCause(err))
				return
			}
			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				logging.ErrorLogger.Error("auth user lookup failed", zap.String("user_id", userID), zap.Error(err))
				apperrors.Write(w, r, err)
				return
			}
			if user == nil {
				apperrors.Write(w, r, apperrors.Unauthorized(msgInvalidCredentials))
				return
			}
			if !user.IsActive {
				apperrors.Write(w, r, apperrors.Unauthorized("Inactive user"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func WithUser(ctx context.Context, user *types.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user set by AuthMiddleware, or nil.
func UserFromContext(ctx context.Context) *types.User {
	user, _ := ctx.Value(userKey).(*types.User)
	return user
}
