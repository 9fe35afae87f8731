package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

type contextKey struct{}

var claimsKey contextKey = contextKey{}

// RequireRoles returns chi-compatible middleware that admits only callers
// presenting a valid Bearer token whose role is one of allowedRoles. On
// success the claims are attached to the request context for attribution.
func (tm *TokenManager) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		set[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := tm.Validate(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, ErrInvalidToken.Error())
				return
			}

			if _, ok := set[claims.Role]; !ok {
				writeAuthError(w, http.StatusForbidden, "insufficient role")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the caller's claims, or nil when the request
// did not pass through RequireRoles.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// CallerID returns the authenticated user's id as a string for
// created_by/last_changed_by fields, or nil for unauthenticated requests.
func CallerID(ctx context.Context) *string {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return nil
	}
	id := strconv.FormatInt(claims.UserID, 10)
	return &id
}

func writeAuthError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
