// Package quote serves the daily motivation quote.
package quote

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

// Fallback is shown when no quote can be fetched.
const Fallback = "The best way to predict the future is to create it. – Peter Drucker"

var quotes = []string{
	Fallback,
	"You are enough just as you are. – Meghan Markle",
	"Happiness is not something ready-made. It comes from your own actions. – Dalai Lama",
	"Believe you can and you're halfway there. – Theodore Roosevelt",
	"The only way to do great work is to love what you do. – Steve Jobs",
}

// All returns the rotation in order.
func All() []string {
	out := make([]string, len(quotes))
	copy(out, quotes)
	return out
}

// ForDay picks the quote for t's day of the year.
func ForDay(t time.Time) string {
	return quotes[t.YearDay()%len(quotes)]
}

// Response is the body of GET /motivation.
type Response struct {
	Quote string `json:"quote"`
}

// Handler serves GET /motivation.
type Handler struct {
	now    func() time.Time
	logger *logging.Logger
}

func NewHandler(now func() time.Time, logger *logging.Logger) *Handler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{now: now, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := json.NewEncoder(w).Encode(Response{Quote: ForDay(h.now())}); err != nil {
		h.logger.Error("failed to encode quote", "error", err)
	}
}
