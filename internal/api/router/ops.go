package router

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wellnessbuddy/wellness-platform/internal/observability/metrics"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

func healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// opsStats reports the current wellness counters as flat JSON.
func opsStats(g prometheus.Gatherer, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := metrics.Snapshot(g)
		if err != nil {
			logger.Error("failed to gather metrics", "error", err)
			http.Error(w, "failed to gather metrics", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"counters": snap})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
