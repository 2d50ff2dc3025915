package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Config represents agent configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	BackendBaseURL   string
	BackendAPIToken  string
	StateSecret      string
	StatePath        string
	CallbackBaseURL  string
	ContentLocale    string
	AllowedOrigins   []string
	PollInterval     time.Duration
	MaxPolls         int
	MaxPollErrors    int
	PendingAuthTTL   time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. DATABASE_URL is optional: without it the agent keeps
// its state in memory and on disk under StatePath.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8484"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		BackendBaseURL:   getEnv("BACKEND_BASE_URL", "http://localhost:8000/api"),
		BackendAPIToken:  os.Getenv("BACKEND_API_TOKEN"),
		StateSecret:      os.Getenv("STATE_SECRET"),
		StatePath:        getEnv("STATE_PATH", "./state"),
		ContentLocale:    getEnv("CONTENT_LOCALE", "en"),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		PollInterval:     time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 2)),
		MaxPolls:         getEnvInt("MAX_POLLS", 60),
		MaxPollErrors:    getEnvInt("MAX_CONSECUTIVE_POLL_ERRORS", 5),
		PendingAuthTTL:   time.Minute * time.Duration(getEnvInt("PENDING_AUTH_TTL_MINUTES", 15)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}
	cfg.CallbackBaseURL = getEnv("CALLBACK_BASE_URL", "http://localhost:"+cfg.Port)

	if cfg.StateSecret == "" {
		return nil, fmt.Errorf("STATE_SECRET is required")
	}
	if _, err := language.Parse(cfg.ContentLocale); err != nil {
		return nil, fmt.Errorf("CONTENT_LOCALE %q is not a valid language tag: %w", cfg.ContentLocale, err)
	}
	if cfg.PollInterval <= 0 || cfg.MaxPolls <= 0 || cfg.MaxPollErrors <= 0 {
		return nil, fmt.Errorf("poll tuning values must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
