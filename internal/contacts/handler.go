package contacts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wellnessbuddy/wellness-platform/internal/tenancy"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

// Handler exposes the emergency contact endpoints.
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates a contacts handler.
func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

type emailPayload struct {
	Email          string `json:"email,omitempty"`
	EmergencyEmail string `json:"emergencyEmail,omitempty"`
}

func (p emailPayload) address() string {
	if p.EmergencyEmail != "" {
		return p.EmergencyEmail
	}
	return p.Email
}

// Get handles GET /emergency-email.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := tenancy.UserIDOrDemo(r.Context())
	email, err := h.store.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrContactNotFound) {
			http.Error(w, "emergency contact not set", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load emergency contact", "error", err, "user_id", userID)
		http.Error(w, "failed to load emergency contact", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, emailPayload{EmergencyEmail: email})
}

// Set handles POST /emergency-email.
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	var req emailPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID := tenancy.UserIDOrDemo(r.Context())
	if err := h.store.Set(r.Context(), userID, req.address()); err != nil {
		if errors.Is(err, ErrInvalidEmail) {
			http.Error(w, "invalid email address", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to save emergency contact", "error", err, "user_id", userID)
		http.Error(w, "failed to save emergency contact", http.StatusInternalServerError)
		return
	}

	h.logger.Info("emergency contact updated", "user_id", userID)
	email, _ := NormalizeEmail(req.address())
	writeJSON(w, http.StatusOK, map[string]string{
		"message":        "Emergency email updated successfully",
		"emergencyEmail": email,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
