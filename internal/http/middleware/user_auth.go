package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wellnessbuddy/wellness-platform/internal/tenancy"
)

type claimsKey struct{}

// UserJWT scopes each request to the subject of an HS256 bearer token.
// Websocket upgrades may carry the token as ?token= since browsers cannot
// set headers on them. An empty secret turns auth off and every caller
// becomes the demo user.
func UserJWT(secret string) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r.WithContext(asUser(r.Context(), tenancy.DemoUserID)))
				return
			}
			raw := bearerToken(r)
			if raw == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			var claims jwt.RegisteredClaims
			if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return key, nil }); err != nil || claims.Subject == "" {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(asUser(ctx, claims.Subject)))
		})
	}
}

func asUser(ctx context.Context, userID string) context.Context {
	recordUser(ctx, userID)
	return tenancy.WithUserID(ctx, userID)
}

// UserClaimsFromContext returns the verified token claims, if any.
func UserClaimsFromContext(ctx context.Context) (jwt.RegisteredClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(jwt.RegisteredClaims)
	return claims, ok
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}
