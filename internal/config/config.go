package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	APIBaseURL         string
	DatabaseURL        string
	RedisAddr          string
	RedisPassword      string
	RedisTLS           bool
	CORSAllowedOrigins []string
	JWTSecret          string
	JWTTTL             time.Duration
	RateLimitRPS       float64
	RateLimitBurst     int
	RevealDelay        time.Duration
	OfflineDBPath      string

	// LLM providers
	LLMProvider    string
	GeminiAPIKey   string
	GeminiModel    string
	BedrockModelID string
	OpenAIAPIKey   string
	OpenAIModel    string

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	ArchiveBucket       string

	// Crisis alert email
	EmailProvider  string
	SendGridAPIKey string
	EmailFrom      string
	EmailFromName  string
	EmailRecipient string
	HotlineNumber  string
	CrisisKeywords []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:8080/api"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisTLS:           getEnvAsBool("REDIS_TLS", false),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTTTL:             getEnvAsDuration("JWT_TTL", 24*time.Hour),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
		RevealDelay:        getEnvAsDuration("REVEAL_DELAY", 30*time.Millisecond),
		OfflineDBPath:      getEnv("OFFLINE_DB_PATH", "offline_moods.db"),

		LLMProvider:    strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "auto"))),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		ArchiveBucket:       getEnv("ARCHIVE_BUCKET", ""),

		EmailProvider:  strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:      getEnv("EMAIL_FROM", getEnv("EMAIL_USER", "")),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "Wellness Buddy"),
		EmailRecipient: getEnv("EMAIL_RECIPIENT", ""),
		HotlineNumber:  getEnv("HOTLINE_NUMBER", ""),
		CrisisKeywords: getEnvAsList("CRISIS_KEYWORDS", nil),
	}
}

// UsesAWS reports whether any configured component needs an AWS client.
func (c *Config) UsesAWS() bool {
	return c.EmailProvider == "ses" || c.BedrockModelID != "" || c.ArchiveBucket != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
