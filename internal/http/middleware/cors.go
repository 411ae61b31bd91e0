package middleware

import (
	"net/http"
	"strings"
)

const (
	corsHeaders = "Authorization, Content-Type, X-Request-ID"
	corsMethods = "GET, POST, OPTIONS"
)

// originPolicy is an allowlist of browser origins; "*" admits every origin.
type originPolicy struct {
	any     bool
	origins map[string]bool
}

func newOriginPolicy(allowed []string) originPolicy {
	p := originPolicy{origins: make(map[string]bool, len(allowed))}
	for _, o := range allowed {
		switch o = strings.TrimSpace(o); o {
		case "":
		case "*":
			p.any = true
		default:
			p.origins[o] = true
		}
	}
	return p
}

func (p originPolicy) permits(origin string) bool {
	return p.any || p.origins[origin]
}

// CORS echoes allowlisted origins and answers preflight requests directly.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := newOriginPolicy(allowedOrigins)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			if policy.permits(origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Max-Age", "600")
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OriginChecker is the websocket upgrader's CheckOrigin for the same
// allowlist. Non-browser clients send no Origin and are let through.
func OriginChecker(allowedOrigins []string) func(*http.Request) bool {
	policy := newOriginPolicy(allowedOrigins)
	return func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		return origin == "" || policy.permits(origin)
	}
}
