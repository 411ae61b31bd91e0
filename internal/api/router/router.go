package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/wellnessbuddy/wellness-platform/internal/auth"
	"github.com/wellnessbuddy/wellness-platform/internal/chat"
	"github.com/wellnessbuddy/wellness-platform/internal/contacts"
	httpmiddleware "github.com/wellnessbuddy/wellness-platform/internal/http/middleware"
	"github.com/wellnessbuddy/wellness-platform/internal/mood"
	"github.com/wellnessbuddy/wellness-platform/internal/plan"
	"github.com/wellnessbuddy/wellness-platform/internal/quote"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	MoodHandler        *mood.Handler
	ChatHandler        *chat.Handler
	ContactsHandler    *contacts.Handler
	PlanHandler        *plan.Handler
	QuoteHandler       *quote.Handler
	AuthHandler        *auth.Handler
	ChatLimiter        *httpmiddleware.RateLimiter
	MetricsHandler     http.Handler
	MetricsGatherer    prometheus.Gatherer
	CORSAllowedOrigins []string

	// JWTSecret enables bearer auth on /api routes; empty runs everything as the demo user.
	JWTSecret string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.MetricsGatherer != nil {
			public.Get("/ops/stats", opsStats(cfg.MetricsGatherer, cfg.Logger))
		}
		if cfg.AuthHandler != nil {
			public.Mount("/api/auth", cfg.AuthHandler.Routes())
		}
		if cfg.QuoteHandler != nil {
			public.Method(http.MethodGet, "/api/motivation", cfg.QuoteHandler)
		}
	})

	// User-scoped endpoints
	r.Group(func(user chi.Router) {
		user.Use(httpmiddleware.UserJWT(cfg.JWTSecret))
		user.Get("/api/session", sessionInfo)

		if cfg.MoodHandler != nil {
			user.Mount("/api/moods", cfg.MoodHandler.Routes())
			user.Post("/api/mood", cfg.MoodHandler.CreateMood)
		}
		if cfg.ChatHandler != nil {
			chatRoutes := cfg.ChatHandler.Routes()
			if cfg.ChatLimiter != nil {
				user.With(httpmiddleware.RateLimit(cfg.ChatLimiter)).Mount("/api/chat", chatRoutes)
			} else {
				user.Mount("/api/chat", chatRoutes)
			}
		}
		if cfg.ContactsHandler != nil {
			user.Get("/api/emergency-email", cfg.ContactsHandler.Get)
			user.Post("/api/emergency-email", cfg.ContactsHandler.Set)
		}
		if cfg.PlanHandler != nil {
			user.Method(http.MethodPost, "/api/plan", cfg.PlanHandler)
		}
	})

	return r
}
