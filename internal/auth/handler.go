package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

// Handler exposes registration and login.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	return r
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool       `json:"success"`
	User    *User      `json:"user,omitempty"`
	Token   string     `json:"token,omitempty"`
	Expires *time.Time `json:"expires_at,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, ErrUserExists):
		writeJSON(w, http.StatusConflict, authResponse{Error: "username already taken"})
		return
	case errors.Is(err, ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, authResponse{Error: err.Error()})
		return
	case err != nil:
		h.logger.Error("failed to register user", "error", err)
		http.Error(w, "failed to register", http.StatusInternalServerError)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{Success: true, User: user})
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, authResponse{Error: "Invalid credentials"})
			return
		}
		h.logger.Error("login failed", "error", err)
		http.Error(w, "failed to log in", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Success: true, User: token.User, Token: token.AccessToken, Expires: &token.ExpiresAt})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
