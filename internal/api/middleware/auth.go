package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hugh/buildtrack/internal/auth"
	"github.com/hugh/buildtrack/internal/tenant"
)

type contextKey string

const claimsKey contextKey = "claims"

// Auth validates the bearer token and attaches the tenant scope to the
// request context. This runs before any handler, so every data access in the
// request already sees the scope; an expired token answers 401 with a
// Token-Expired header so clients can distinguish it from a bad token.
func Auth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string

			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}

			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ParseToken(token)
			if err != nil {
				if err == auth.ErrExpiredToken {
					w.Header().Set("Token-Expired", "true")
				}
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, claimsKey, claims)
			ctx = tenant.NewContext(ctx, tenant.Scope{
				TenantID: claims.TenantID,
				UserID:   claims.UserID,
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims returns the token claims attached by Auth, or nil outside an
// authenticated request.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// RequireRole allows the request through when the token role is one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims != nil {
				for _, role := range roles {
					if claims.Role == role {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}
