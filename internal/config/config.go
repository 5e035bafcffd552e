package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type DispatchMode string

const (
	DispatchRedis  DispatchMode = "redis"
	DispatchPoll   DispatchMode = "poll"
	DispatchInline DispatchMode = "inline"
)

type Config struct {
	Env           string
	ListenAddr    string
	MaxConns      int
	DatabaseURL   string
	DBMaxConns    int32
	PublicBaseURL string
	ArtifactDir   string
	NodeID        int64

	Dispatch     DispatchMode
	Workers      int
	PollInterval time.Duration

	Redis  RedisConfig
	Sirene SireneConfig
	OTel   OTelConfig
}

type RedisConfig struct {
	URL         string
	Stream      string
	Group       string
	DLQStream   string
	Consumer    string
	MaxAttempts int
	IdentityTTL time.Duration
}

type SireneConfig struct {
	Enabled bool
	BaseURL string
	Token   string
	Timeout time.Duration
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// Load reads configuration from the environment. In development a .env file is
// loaded first when present. A missing DATABASE_URL is reported through the
// returned error while cfg stays usable; callers decide whether that is fatal.
func Load() (Config, error) {
	if getenv("APP_ENV", "development") == "development" {
		_ = godotenv.Load()
	}

	host, _ := os.Hostname()
	if host == "" {
		host = "worker"
	}

	cfg := Config{
		Env:           getenv("APP_ENV", "development"),
		ListenAddr:    getenv("LISTEN_ADDR", ":8080"),
		MaxConns:      getenvInt("MAX_CONNS", 256),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBMaxConns:    int32(getenvInt("DB_MAX_CONNS", 10)),
		PublicBaseURL: getenv("PUBLIC_BASE_URL", ""),
		ArtifactDir:   getenv("ARTIFACT_DIR", "./data"),
		NodeID:        int64(getenvInt("NODE_ID", 1)),
		Workers:       getenvInt("WORKERS", 0),
		PollInterval:  getenvDuration("POLL_INTERVAL", 500*time.Millisecond),
		Redis: RedisConfig{
			URL:         os.Getenv("REDIS_URL"),
			Stream:      getenv("REDIS_STREAM", "ownership"),
			Group:       getenv("REDIS_GROUP", "ownership-workers"),
			DLQStream:   getenv("REDIS_DLQ_STREAM", "ownership-dlq"),
			Consumer:    getenv("REDIS_CONSUMER", host),
			MaxAttempts: getenvInt("MAX_ATTEMPTS", 3),
			IdentityTTL: getenvDuration("IDENTITY_CACHE_TTL", 24*time.Hour),
		},
		Sirene: SireneConfig{
			Enabled: getenvBool("SIRENE_ENABLED", true),
			BaseURL: getenv("SIRENE_API_URL", "https://recherche-entreprises.api.gouv.fr"),
			Token:   os.Getenv("SIRENE_API_TOKEN"),
			Timeout: getenvDuration("SIRENE_TIMEOUT", 5*time.Second),
		},
		OTel: OTelConfig{
			Endpoint:       getenv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getenv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getenv("OTEL_SERVICE_NAME", "ownership"),
			ServiceVersion: getenv("OTEL_SERVICE_VERSION", "dev"),
		},
	}

	mode, err := resolveDispatch(os.Getenv("DISPATCH_MODE"), cfg.Redis.URL)
	if err != nil {
		return cfg, err
	}
	cfg.Dispatch = mode

	if cfg.DatabaseURL == "" {
		return cfg, ErrNoDatabase
	}
	return cfg, nil
}

// ErrNoDatabase is returned by Load when DATABASE_URL is unset.
var ErrNoDatabase = fmt.Errorf("DATABASE_URL not set")

func resolveDispatch(raw, redisURL string) (DispatchMode, error) {
	switch DispatchMode(raw) {
	case "":
		if redisURL != "" {
			return DispatchRedis, nil
		}
		return DispatchInline, nil
	case DispatchRedis:
		if redisURL == "" {
			return "", fmt.Errorf("DISPATCH_MODE=redis requires REDIS_URL")
		}
		return DispatchRedis, nil
	case DispatchPoll, DispatchInline:
		return DispatchMode(raw), nil
	}
	return "", fmt.Errorf("unknown DISPATCH_MODE %q", raw)
}

func (c Config) IsProduction() bool  { return c.Env == "production" }
func (c Config) IsDevelopment() bool { return c.Env == "development" }

func (c RedisConfig) Enabled() bool { return c.URL != "" }
func (c OTelConfig) Enabled() bool  { return c.Endpoint != "" }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if out, err := strconv.Atoi(v); err == nil {
			return out
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if out, err := strconv.ParseBool(v); err == nil {
			return out
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if out, err := time.ParseDuration(v); err == nil {
			return out
		}
	}
	return def
}
