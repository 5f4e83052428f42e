package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"canopy/pkg/domain"
	dErrors "canopy/pkg/domain-errors"
	"canopy/pkg/requestcontext"
)

// JWTValidator validates bearer tokens presented to mutating endpoints.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims is the slice of token claims the middleware cares about.
type JWTClaims struct {
	UserID string
}

// RequireAuth extracts the bearer token, validates it, and stamps the caller
// principal onto the request context. Requests without a valid token are
// refused with 401 before reaching a handler; domain-level refusals (403)
// happen later, in the services.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "missing bearer token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeAuthError(w, "missing or malformed Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "invalid bearer token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				writeAuthError(w, "invalid or expired token")
				return
			}

			ctx = requestcontext.WithCallerID(ctx, domain.UserID(claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + string(dErrors.CodeUnauthorized) + `","error_description":"` + desc + `"}`))
}
