package adminapi

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const claimsContextKey contextKey = "admin_claims"

// GetClaimsFromContext returns the Claims stashed by RequireAuth, or nil if
// none are present.
func GetClaimsFromContext(ctx context.Context) *Claims {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// extractBearerToken pulls the token out of an Authorization header of the
// form "Bearer <token>", matching the scheme case-insensitively.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	const prefixLen = len("Bearer ")
	if len(header) <= prefixLen {
		return "", false
	}
	if !strings.EqualFold(header[:prefixLen-1], "Bearer") || header[prefixLen-1] != ' ' {
		return "", false
	}
	return header[prefixLen:], true
}

// RequireAuth validates the request's bearer access token and, on success,
// stores its Claims in the request context for downstream handlers.
func RequireAuth(jwtService *JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				Unauthorized(w, "missing bearer token")
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				Unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
