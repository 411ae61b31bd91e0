package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/wellnessbuddy/wellness-platform/cmd/mainconfig"
	"github.com/wellnessbuddy/wellness-platform/internal/api/router"
	"github.com/wellnessbuddy/wellness-platform/internal/archive"
	"github.com/wellnessbuddy/wellness-platform/internal/auth"
	"github.com/wellnessbuddy/wellness-platform/internal/chat"
	appconfig "github.com/wellnessbuddy/wellness-platform/internal/config"
	"github.com/wellnessbuddy/wellness-platform/internal/contacts"
	"github.com/wellnessbuddy/wellness-platform/internal/crisis"
	httpmiddleware "github.com/wellnessbuddy/wellness-platform/internal/http/middleware"
	"github.com/wellnessbuddy/wellness-platform/internal/mood"
	"github.com/wellnessbuddy/wellness-platform/internal/notify"
	"github.com/wellnessbuddy/wellness-platform/internal/plan"
	"github.com/wellnessbuddy/wellness-platform/internal/quote"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting wellness buddy API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	var clients mainconfig.AWSClients
	if cfg.UsesAWS() {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		clients = mainconfig.NewAWSClients(awsCfg, cfg)
	}

	metricsHandler, metrics, registry := setupMetrics()

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		defer pool.Close()
	}
	redisClient := connectRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	moodRepo := newMoodRepository(pool)
	contactStore := newContactStore(redisClient)
	historyStore := newHistoryStore(redisClient)

	var archiver *archive.Store
	if cfg.ArchiveBucket != "" && clients.S3 != nil {
		archiver = archive.NewStore(clients.S3, cfg.ArchiveBucket, logger)
	}

	llm := buildLLM(ctx, cfg, clients, metrics, logger)

	var ses notify.SESAPI
	if clients.SES != nil {
		ses = clients.SES
	}
	sender := notify.NewSender(notify.SenderConfig{
		Provider:       cfg.EmailProvider,
		SendGridAPIKey: cfg.SendGridAPIKey,
		FromEmail:      cfg.EmailFrom,
		FromName:       cfg.EmailFromName,
	}, ses, logger)

	scanner := crisis.NewScanner(cfg.CrisisKeywords, logger)
	logger.Info("crisis scanner ready", "keywords", scanner.Keywords())
	alerter := crisis.NewAlerter(crisis.AlerterConfig{
		Scanner:          scanner,
		Notifier:         crisis.NewEmailNotifier(sender, cfg.HotlineNumber, logger),
		Contacts:         contactStore,
		DefaultRecipient: cfg.EmailRecipient,
		Metrics:          metrics,
		Logger:           logger,
	})

	chatService := chat.NewService(chat.ServiceConfig{
		LLM:      llm.client,
		Provider: llm.provider,
		Model:    llm.model,
		History:  historyStore,
		Crisis:   alerter,
		Metrics:  metrics,
		Logger:   logger,
	})
	chatHandler := chat.NewHandler(chatService, cfg.RevealDelay, httpmiddleware.OriginChecker(cfg.CORSAllowedOrigins), logger)

	moodCfg := mood.HandlerConfig{
		Repo:    moodRepo,
		Metrics: metrics,
		Logger:  logger,
	}
	if archiver != nil {
		moodCfg.Archiver = archiver
		chatHandler = chatHandler.WithArchiver(archiver)
	}

	planner := plan.NewPlanner(moodRepo, historyStore, newPlanGenerator(llm), logger)

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set; all requests run as the demo user")
	}

	r := router.New(&router.Config{
		Logger:             logger,
		MoodHandler:        mood.NewHandler(moodCfg),
		ChatHandler:        chatHandler,
		ContactsHandler:    contacts.NewHandler(contactStore, logger),
		PlanHandler:        plan.NewHandler(planner, logger),
		QuoteHandler:       quote.NewHandler(time.Now, logger),
		AuthHandler:        auth.NewHandler(auth.NewService(auth.NewInMemoryUserRepository(), cfg.JWTSecret, cfg.JWTTTL), logger),
		ChatLimiter:        limiter,
		MetricsHandler:     metricsHandler,
		MetricsGatherer:    registry,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		JWTSecret:          cfg.JWTSecret,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	llm.close()

	logger.Info("server stopped")
}
