package quote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

func TestForDay(t *testing.T) {
	jan1 := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, quotes[1], ForDay(jan1))

	jan5 := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, Fallback, ForDay(jan5))

	assert.Equal(t, ForDay(jan1), ForDay(jan1.Add(10*time.Hour)))
}

func TestForDay_CyclesThroughAll(t *testing.T) {
	seen := map[string]bool{}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < len(quotes); i++ {
		seen[ForDay(start.AddDate(0, 0, i))] = true
	}
	assert.Len(t, seen, len(quotes))
}

func TestHandler(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) }
	rec := httptest.NewRecorder()
	NewHandler(now, logging.Discard()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/motivation", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, quotes[2], body.Quote)
	assert.Len(t, All(), 5)
}
