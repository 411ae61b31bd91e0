package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if called != nil {
			*called = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS_OriginMatching(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{name: "listed origin", allowed: []string{"https://buddy.example"}, origin: "https://buddy.example", want: "https://buddy.example"},
		{name: "unknown origin", allowed: []string{"https://buddy.example"}, origin: "https://other.example", want: ""},
		{name: "wildcard echoes origin", allowed: []string{"*"}, origin: "http://localhost:5173", want: "http://localhost:5173"},
		{name: "blank entries ignored", allowed: []string{" ", ""}, origin: "https://buddy.example", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			req := httptest.NewRequest(http.MethodGet, "/api/moods", nil)
			req.Header.Set("Origin", tc.origin)
			rec := httptest.NewRecorder()

			CORS(tc.allowed)(okHandler(&called)).ServeHTTP(rec, req)

			assert.True(t, called)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.want, rec.Header().Get("Access-Control-Allow-Origin"))
			if tc.want != "" {
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
			}
		})
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	called := false
	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://buddy.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	CORS([]string{"https://buddy.example"})(okHandler(&called)).ServeHTTP(rec, req)

	require.False(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestOriginChecker(t *testing.T) {
	check := OriginChecker([]string{"https://buddy.example"})

	req := httptest.NewRequest(http.MethodGet, "/api/chat/ws", nil)
	assert.True(t, check(req), "missing origin is accepted")

	req.Header.Set("Origin", "https://buddy.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))

	assert.True(t, OriginChecker([]string{"*"})(req))
}
