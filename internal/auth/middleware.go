package auth

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey type for context keys
type ContextKey string

// ClaimsContextKey is the context key for verified claims
const ClaimsContextKey ContextKey = "auth_claims"

// Middleware returns HTTP middleware that requires a valid bearer token.
// On success the verified claims are placed in the request context; on
// failure the request is rejected before reaching any handler.
func Middleware(manager *TokenManager, onReject func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				onReject(w, r, ErrInvalidToken)
				return
			}

			claims, err := manager.Verify(strings.TrimSpace(token))
			if err != nil {
				onReject(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts verified claims placed by Middleware.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(Claims)
	return claims, ok
}
