package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Log     LogConfig
	GraphQL GraphQLConfig
	Table   TableConfig
	Session SessionConfig
}

type ServerConfig struct {
	Port               string
	Env                string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	AllowedOrigins     []string
	TrustedProxies     []string
	RateLimitPerMinute int
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type GraphQLConfig struct {
	URL     string
	Timeout time.Duration
}

type TableConfig struct {
	SearchDebounce time.Duration
	UsersPageSize  int
	PostsPageSize  int
	MaxTitleLength int
}

type SessionConfig struct {
	IdleTTL         time.Duration
	CleanupInterval time.Duration
	LoadTimeout     time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			Env:                env,
			ReadTimeout:        getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:       getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:        getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout:     getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 25*time.Second),
			ShutdownTimeout:    getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:     parseAllowedOrigins(env),
			TrustedProxies:     splitList(getEnv("TRUSTED_PROXIES", "")),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 28),
		},
		GraphQL: GraphQLConfig{
			URL:     getEnv("GRAPHQL_URL", "http://localhost:4000/graphql"),
			Timeout: getEnvAsDuration("GRAPHQL_TIMEOUT", 10*time.Second),
		},
		Table: TableConfig{
			SearchDebounce: getEnvAsDuration("SEARCH_DEBOUNCE", 400*time.Millisecond),
			UsersPageSize:  getEnvAsInt("USERS_PAGE_SIZE", 10),
			PostsPageSize:  getEnvAsInt("POSTS_PAGE_SIZE", 10),
			MaxTitleLength: getEnvAsInt("MAX_TITLE_LENGTH", 50),
		},
		Session: SessionConfig{
			IdleTTL:         getEnvAsDuration("SESSION_IDLE_TTL", 30*time.Minute),
			CleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 5*time.Minute),
			LoadTimeout:     getEnvAsDuration("SESSION_LOAD_TIMEOUT", 15*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.GraphQL.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("GRAPHQL_URL must be an absolute http(s) URL (got %q)", c.GraphQL.URL)
	}
	if c.Server.Env == "production" && u.Scheme != "https" {
		return fmt.Errorf("GRAPHQL_URL must use https in production")
	}

	positive := []struct {
		name  string
		value int
	}{
		{"USERS_PAGE_SIZE", c.Table.UsersPageSize},
		{"POSTS_PAGE_SIZE", c.Table.PostsPageSize},
		{"MAX_TITLE_LENGTH", c.Table.MaxTitleLength},
		{"RATE_LIMIT_PER_MINUTE", c.Server.RateLimitPerMinute},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive (got %d)", p.name, p.value)
		}
	}

	if c.Table.SearchDebounce < 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE must not be negative")
	}
	if c.Session.CleanupInterval <= 0 {
		return fmt.Errorf("SESSION_CLEANUP_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if origins := splitList(getEnv("ALLOWED_ORIGINS", "")); len(origins) > 0 || env == "production" {
		return origins
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite default
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
}
