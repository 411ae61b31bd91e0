package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wellnessbuddy/wellness-platform/internal/tenancy"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

func TestRequestLogger_EchoesRequestIDAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter("info", &buf)

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/moods", nil)
	req.Header.Set("X-Request-ID", "req-123")
	req = req.WithContext(tenancy.WithUserID(req.Context(), "user-7"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	out := buf.String()
	assert.Contains(t, out, `"status":201`)
	assert.Contains(t, out, `"path":"/api/moods"`)
	assert.Contains(t, out, `"user_id":"user-7"`)
}

func TestRequestLogger_GeneratesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	RequestLogger(nil)(okHandler(nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestLogger_SeesUserFromAuth(t *testing.T) {
	var buf bytes.Buffer
	handler := RequestLogger(logging.NewWithWriter("info", &buf))(UserJWT("")(okHandler(nil)))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/moods", nil))

	assert.Contains(t, buf.String(), `"user_id":"demo"`)
}

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	cases := map[int]string{
		http.StatusOK:                  `"level":"INFO"`,
		http.StatusUnauthorized:        `"level":"WARN"`,
		http.StatusInternalServerError: `"level":"ERROR"`,
	}
	for status, want := range cases {
		var buf bytes.Buffer
		handler := RequestLogger(logging.NewWithWriter("info", &buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Contains(t, buf.String(), want)
	}
}
