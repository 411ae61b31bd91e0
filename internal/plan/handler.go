package plan

import (
	"encoding/json"
	"net/http"

	"github.com/wellnessbuddy/wellness-platform/internal/tenancy"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

// Handler serves POST /plan.
type Handler struct {
	planner *Planner
	logger  *logging.Logger
}

func NewHandler(planner *Planner, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{planner: planner, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := tenancy.UserIDOrDemo(r.Context())
	plan, err := h.planner.Generate(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to generate plan", "error", err, "user_id", userID)
		http.Error(w, "failed to generate plan", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(plan)
}
