package mood

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wellnessbuddy/wellness-platform/internal/tenancy"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

// Archiver exports a user's history to long-term storage.
type Archiver interface {
	ArchiveMoods(ctx context.Context, userID string, entries []Entry) (string, error)
}

// Recorder observes mood writes.
type Recorder interface {
	ObserveMoodEntry(source string)
}

// HandlerConfig wires the mood HTTP handler.
type HandlerConfig struct {
	Repo     Repository
	Archiver Archiver
	Samples  *SampleGenerator
	Metrics  Recorder
	Logger   *logging.Logger
	Now      func() time.Time
}

// Handler handles HTTP requests for mood tracking and charts.
type Handler struct {
	repo     Repository
	archiver Archiver
	samples  *SampleGenerator
	metrics  Recorder
	logger   *logging.Logger
	now      func() time.Time
}

// NewHandler creates a new mood handler
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Repo == nil {
		panic("mood: repository required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Samples == nil {
		cfg.Samples = NewRandomSampleGenerator()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Handler{
		repo:     cfg.Repo,
		archiver: cfg.Archiver,
		samples:  cfg.Samples,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
}

// Routes mounts the mood endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateMood)
	r.Get("/", h.ListMoods)
	r.Get("/insights", h.Insights)
	r.Get("/sample", h.Sample)
	r.Post("/export", h.Export)
	return r
}

// CreateMood handles POST /moods
func (h *Handler) CreateMood(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode mood request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID := tenancy.UserIDOrDemo(r.Context())
	entry, err := h.repo.Create(r.Context(), userID, &req)
	if err != nil {
		if isValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to save mood", "error", err, "user_id", userID)
		http.Error(w, "failed to save mood", http.StatusInternalServerError)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveMoodEntry("api")
	}

	h.logger.Info("mood saved", "user_id", userID, "date", entry.Date, "score", entry.Score)
	writeJSON(w, http.StatusCreated, entry)
}

// ListMoods handles GET /moods
func (h *Handler) ListMoods(w http.ResponseWriter, r *http.Request) {
	userID := tenancy.UserIDOrDemo(r.Context())
	entries, err := h.repo.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list moods", "error", err, "user_id", userID)
		http.Error(w, "failed to list moods", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// InsightsResponse wraps a report with where its data came from.
type InsightsResponse struct {
	Report
	Sample bool `json:"sample"`
}

// Insights handles GET /moods/insights?range=week|month|all&sample=true
func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	userID := tenancy.UserIDOrDemo(r.Context())
	entries, err := h.repo.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load moods for insights", "error", err, "user_id", userID)
		http.Error(w, "failed to load moods", http.StatusInternalServerError)
		return
	}

	now := h.now()
	useSample := false
	if len(entries) == 0 && r.URL.Query().Get("sample") == "true" {
		entries = h.samples.Generate(DefaultSampleDays, now)
		useSample = true
	}

	rng := ParseRange(r.URL.Query().Get("range"))
	writeJSON(w, http.StatusOK, InsightsResponse{
		Report: Aggregate(entries, rng, now),
		Sample: useSample,
	})
}

// Sample handles GET /moods/sample?days=30&seed=42
func (h *Handler) Sample(w http.ResponseWriter, r *http.Request) {
	days := DefaultSampleDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 366 {
			http.Error(w, "days must be between 1 and 366", http.StatusBadRequest)
			return
		}
		days = n
	}

	gen := h.samples
	if v := r.URL.Query().Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "seed must be an integer", http.StatusBadRequest)
			return
		}
		gen = NewSampleGenerator(seed)
	}
	writeJSON(w, http.StatusOK, gen.Generate(days, h.now()))
}

// Export handles POST /moods/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		http.Error(w, "archive not configured", http.StatusServiceUnavailable)
		return
	}
	userID := tenancy.UserIDOrDemo(r.Context())
	entries, err := h.repo.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load moods for export", "error", err, "user_id", userID)
		http.Error(w, "failed to load moods", http.StatusInternalServerError)
		return
	}
	key, err := h.archiver.ArchiveMoods(r.Context(), userID, entries)
	if err != nil {
		h.logger.Error("failed to archive moods", "error", err, "user_id", userID)
		http.Error(w, "failed to archive moods", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"key": key, "count": len(entries)})
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrInvalidScore) || errors.Is(err, ErrInvalidCategory) || errors.Is(err, ErrInvalidDate)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
