package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port               string
	Env                string
	CORSAllowOrigin    []string
	ObjectStoreType    string
	LocalStoreDir      string
	AWSRegion          string
	S3Bucket           string
	S3Prefix           string
	SSEKMSKeyID        string
	DatabaseURL        string
	DBPool             DBPool
	RedisURL           string
	ExtractCacheTTL    time.Duration
	LLMProvider        string
	LLMModel           string
	LLMAPIKey          string
	LLMTimeout         time.Duration
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// DBPool overrides connection pool settings. Zero values keep the defaults.
type DBPool struct {
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	ConnMaxIdleTime  time.Duration
	StatementTimeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	provider := strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "anthropic")))

	return Config{
		Port:               getEnv("PORT", "8080"),
		Env:                env,
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType:    normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:      getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:          getEnv("AWS_REGION", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Prefix:           getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:        getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:        dbURL,
		DBPool: DBPool{
			MaxOpenConns:     getInt("DB_MAX_OPEN_CONNS", 0),
			MaxIdleConns:     getInt("DB_MAX_IDLE_CONNS", 0),
			ConnMaxLifetime:  getDuration("DB_CONN_MAX_LIFETIME", 0),
			ConnMaxIdleTime:  getDuration("DB_CONN_MAX_IDLE_TIME", 0),
			StatementTimeout: getDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		RedisURL:           getEnv("REDIS_URL", ""),
		ExtractCacheTTL:    getDuration("EXTRACT_CACHE_TTL", 24*time.Hour),
		LLMProvider:        provider,
		LLMModel:           getEnv("MODEL_NAME", ""),
		LLMAPIKey:          apiKeyFor(provider),
		LLMTimeout:         time.Duration(getInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		RateLimitPerSecond: getFloat("RATE_LIMIT_PER_SECOND", 1),
		RateLimitBurst:     getInt("RATE_LIMIT_BURST", 5),
	}
}

// apiKeyFor picks the credential variable for the selected provider.
func apiKeyFor(provider string) string {
	switch provider {
	case "openai":
		return getEnv("OPENAI_API_KEY", "")
	case "gemini":
		return getEnv("GEMINI_API_KEY", "")
	default:
		return getEnv("CLAUDE_API_KEY", getEnv("ANTHROPIC_API_KEY", ""))
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid number %q, using %g", key, raw, def)
		return def
	}
	return val
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
