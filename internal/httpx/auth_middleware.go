package httpx

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"libraryapi/internal/platform/crypto"
)

const bearerPrefix = "Bearer "

// AuthMiddleware rejects requests without a valid library access token with 401.
func AuthMiddleware(secret string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				JSONError(w, http.StatusUnauthorized, "Missing or invalid token")
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))

			claims, err := crypto.VerifyLibraryToken(secret, token)
			if err != nil {
				log.Debug("token rejected",
					zap.Error(err),
					zap.String("request_id", RequestIDFrom(r)),
				)
				JSONError(w, http.StatusUnauthorized, "Missing or invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}
