package middleware

import (
	"net/http"
	"strings"

	"store-rating/internal/data/repository"
	"store-rating/internal/policy"
	"store-rating/pkg/utils"

	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// Authenticate verifies the bearer JWT and attaches the principal to the
// request context. The role comes from the stored user, not from the token
// claims, so a role change takes effect on the next request.
func Authenticate(userRepo repository.UserRepository, cfg utils.JWTConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			if !strings.HasPrefix(authHeader, bearerPrefix) {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
			if token == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			userID, _, err := utils.ParseToken(token, cfg)
			if err != nil {
				logger.Debug("Rejected token", zap.Error(err))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				logger.Error("Failed to load token subject",
					zap.String("user_id", userID.String()),
					zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			// token dari user yang sudah dihapus
			if user == nil {
				logger.Warn("Token subject no longer exists", zap.String("user_id", userID.String()))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			principal, err := policy.NewPrincipal(user.ID, user.Role)
			if err != nil {
				logger.Error("User has unknown role",
					zap.String("user_id", user.ID.String()),
					zap.String("role", string(user.Role)))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := utils.SetPrincipalContext(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
