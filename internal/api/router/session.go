package router

import (
	"net/http"
	"time"

	httpmiddleware "github.com/wellnessbuddy/wellness-platform/internal/http/middleware"
	"github.com/wellnessbuddy/wellness-platform/internal/tenancy"
)

type sessionResponse struct {
	UserID        string     `json:"user_id"`
	Authenticated bool       `json:"authenticated"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// sessionInfo tells a client who it is acting as and when its token lapses.
// In demo mode there is no token and authenticated is false.
func sessionInfo(w http.ResponseWriter, r *http.Request) {
	resp := sessionResponse{UserID: tenancy.UserIDOrDemo(r.Context())}
	if claims, ok := httpmiddleware.UserClaimsFromContext(r.Context()); ok {
		resp.Authenticated = true
		if claims.ExpiresAt != nil {
			exp := claims.ExpiresAt.UTC()
			resp.ExpiresAt = &exp
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
