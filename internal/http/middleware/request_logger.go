package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/wellnessbuddy/wellness-platform/internal/tenancy"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

type requestMetaKey struct{}

// requestMeta is filled in by inner middleware so the access log, which
// wraps them, can report who made the call.
type requestMeta struct {
	userID string
}

func recordUser(ctx context.Context, userID string) {
	if meta, ok := ctx.Value(requestMetaKey{}).(*requestMeta); ok {
		meta.userID = userID
	}
}

// RequestLogger writes one access log line per request and echoes the
// request id in X-Request-ID. Server errors log at error level, client
// errors at warn.
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := requestID(r)
			w.Header().Set("X-Request-ID", id)

			meta := &requestMeta{}
			if uid, ok := tenancy.UserIDFromContext(r.Context()); ok {
				meta.userID = uid
			}
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), requestMetaKey{}, meta)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"request_id", id,
				"user_id", meta.userID,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	if id := chimw.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}
