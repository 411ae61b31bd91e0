package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/wellnessbuddy/wellness-platform/cmd/mainconfig"
	"github.com/wellnessbuddy/wellness-platform/internal/chat"
	appconfig "github.com/wellnessbuddy/wellness-platform/internal/config"
	"github.com/wellnessbuddy/wellness-platform/internal/contacts"
	"github.com/wellnessbuddy/wellness-platform/internal/mood"
	"github.com/wellnessbuddy/wellness-platform/internal/observability/metrics"
	"github.com/wellnessbuddy/wellness-platform/internal/plan"
	"github.com/wellnessbuddy/wellness-platform/pkg/logging"
	"go.opentelemetry.io/otel"
)

func setupMetrics() (http.Handler, *metrics.WellnessMetrics, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewWellnessMetrics(registry)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), m, registry
}

// connectPostgresPool returns nil when no URL is configured or the database is
// unreachable; callers fall back to in-memory storage.
func connectPostgresPool(ctx context.Context, dbURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(dbURL) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Error("failed to create postgres pool, using in-memory moods", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping postgres, using in-memory moods", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("connected to postgres")
	return pool
}

// connectRedis returns nil when Redis is not configured or not reachable.
func connectRedis(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, using in-memory stores", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	logger.Info("connected to redis", "addr", cfg.RedisAddr)
	return client
}

func newMoodRepository(pool *pgxpool.Pool) mood.Repository {
	if pool == nil {
		return mood.NewInMemoryRepository()
	}
	return mood.NewPostgresRepository(pool)
}

func newContactStore(client *redis.Client) contacts.Store {
	if client == nil {
		return contacts.NewInMemoryStore()
	}
	return contacts.NewRedisStore(client)
}

func newHistoryStore(client *redis.Client) chat.HistoryStore {
	if client == nil {
		return chat.NewInMemoryHistoryStore()
	}
	return chat.NewRedisHistoryStore(client, otel.Tracer("wellness/chat-history"))
}

// llmStack is the configured provider chain plus what the plan generator and
// shutdown need from it.
type llmStack struct {
	client   chat.LLMClient
	provider string
	model    string
	openai   *chat.OpenAIClient
	closers  []func() error
}

func (s llmStack) close() {
	for _, c := range s.closers {
		_ = c()
	}
}

type namedClient struct {
	name   string
	model  string
	client chat.LLMClient
}

// buildLLM assembles the providers selected by LLM_PROVIDER. "auto" chains
// every configured provider in the order gemini, bedrock, openai.
func buildLLM(ctx context.Context, cfg *appconfig.Config, aws mainconfig.AWSClients, m *metrics.WellnessMetrics, logger *logging.Logger) llmStack {
	var stack llmStack
	var chain []namedClient

	want := func(name string) bool {
		return cfg.LLMProvider == "auto" || cfg.LLMProvider == "" || cfg.LLMProvider == name
	}

	if want("gemini") && cfg.GeminiAPIKey != "" {
		gemini, err := chat.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
		} else {
			chain = append(chain, namedClient{name: "gemini", model: cfg.GeminiModel, client: gemini})
			stack.closers = append(stack.closers, gemini.Close)
		}
	}
	if want("bedrock") && cfg.BedrockModelID != "" && aws.Bedrock != nil {
		chain = append(chain, namedClient{name: "bedrock", model: cfg.BedrockModelID, client: chat.NewBedrockClient(aws.Bedrock, cfg.BedrockModelID)})
	}
	if want("openai") && cfg.OpenAIAPIKey != "" {
		oa, err := chat.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			logger.Error("failed to create openai client", "error", err)
		} else {
			chain = append(chain, namedClient{name: "openai", model: oa.Model(), client: oa})
			stack.openai = oa
		}
	}

	if len(chain) == 0 {
		logger.Warn("no LLM provider configured; chat will use canned replies", "provider", cfg.LLMProvider)
		return stack
	}

	stack.provider = chain[0].name
	if len(chain) == 1 {
		stack.model = chain[0].model
	}
	var client chat.LLMClient
	for i := len(chain) - 1; i >= 0; i-- {
		instrumented := chat.NewInstrumentedClient(chain[i].name, chain[i].client, m)
		if client == nil {
			client = instrumented
			continue
		}
		client = chat.NewFallbackClient(instrumented, client, logger)
	}
	stack.client = client
	logger.Info("llm providers configured", "primary", stack.provider, "count", len(chain))
	return stack
}

// newPlanGenerator prefers schema-constrained output when OpenAI is available.
func newPlanGenerator(llm llmStack) plan.Generator {
	if llm.openai != nil {
		return plan.NewStructuredGenerator(llm.openai.Client(), llm.openai.Model())
	}
	if llm.client != nil {
		return plan.NewLLMGenerator(llm.client, llm.model)
	}
	return nil
}
