package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"mixtape/internal/musicapi"
	"mixtape/internal/searchservice"
)

// Config holds all application configuration
type Config struct {
	Environment string

	Database  DatabaseConfig
	Server    ServerConfig
	CORS      CORSConfig
	Logging   LoggingConfig
	Providers ProvidersConfig
	Sentry    SentryConfig
}

// Backend names a playlist store implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL         string // memory://, sqlite://path, file:path or a PostgreSQL URL
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port int
	Host string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// ProvidersConfig holds outbound provider settings.
type ProvidersConfig struct {
	Search            musicapi.MusicProvider
	SearchLimit       int
	MinQueryLength    int
	DeezerBaseURL     string
	YouTubeAPIKey     string
	YouTubeBaseURL    string
	MusixmatchAPIKey  string
	MusixmatchBaseURL string
	Timeout           time.Duration
}

// SentryConfig holds error reporting settings. An empty DSN disables reporting.
type SentryConfig struct {
	DSN string
}

// Load reads configuration from the environment, after merging .env and
// config/local.env when present.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config/local.env")

	cfg := &Config{
		Environment: strings.ToLower(getEnvOrDefault("ENV", "development")),
	}

	if err := cfg.loadDatabase(); err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}
	if err := cfg.loadServer(); err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}
	cfg.loadCORS()
	cfg.loadLogging()
	if err := cfg.loadProviders(); err != nil {
		return nil, fmt.Errorf("load provider config: %w", err)
	}
	cfg.Sentry.DSN = strings.TrimSpace(os.Getenv("SENTRY_DSN"))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadDatabase() error {
	c.Database.URL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	autoMigrate, err := strconv.ParseBool(getEnvOrDefault("AUTO_MIGRATE", "true"))
	if err != nil {
		return fmt.Errorf("invalid AUTO_MIGRATE: %w", err)
	}
	c.Database.AutoMigrate = autoMigrate

	// Without DATABASE_URL, build a PostgreSQL URL from the individual
	// parameters when they are present; otherwise fall back to memory.
	if c.Database.URL == "" {
		c.Database.Host = os.Getenv("DB_HOST")
		c.Database.User = os.Getenv("DB_USER")
		c.Database.Password = os.Getenv("DB_PASSWORD")
		c.Database.Name = os.Getenv("DB_NAME")
		c.Database.SSLMode = getEnvOrDefault("DB_SSLMODE", "disable")

		port, err := strconv.Atoi(getEnvOrDefault("DB_PORT", "5432"))
		if err != nil {
			return fmt.Errorf("invalid DB_PORT: %w", err)
		}
		c.Database.Port = port

		if c.Database.Host != "" && c.Database.User != "" && c.Database.Name != "" {
			c.Database.URL = fmt.Sprintf(
				"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
				c.Database.User,
				c.Database.Password,
				c.Database.Host,
				c.Database.Port,
				c.Database.Name,
				c.Database.SSLMode,
			)
		}
	}

	return nil
}

func (c *Config) loadServer() error {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}
	c.Server.Port = port
	c.Server.Host = getEnvOrDefault("HOST", "0.0.0.0")
	return nil
}

func (c *Config) loadCORS() {
	c.CORS.AllowedOrigins = parseList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*"))
}

func (c *Config) loadLogging() {
	c.Logging.Level = strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info"))
	defaultFormat := "json"
	if c.IsDevelopment() {
		defaultFormat = "text"
	}
	c.Logging.Format = strings.ToLower(getEnvOrDefault("LOG_FORMAT", defaultFormat))
}

func (c *Config) loadProviders() error {
	provider, err := musicapi.ParseProvider(os.Getenv("SEARCH_PROVIDER"))
	if err != nil {
		return err
	}
	c.Providers.Search = provider

	limit, err := strconv.Atoi(getEnvOrDefault("SEARCH_LIMIT", strconv.Itoa(searchservice.DefaultLimit)))
	if err != nil {
		return fmt.Errorf("invalid SEARCH_LIMIT: %w", err)
	}
	c.Providers.SearchLimit = clamp(limit, 1, searchservice.MaxLimit)

	minLen, err := strconv.Atoi(getEnvOrDefault("SEARCH_MIN_QUERY_LENGTH", strconv.Itoa(searchservice.DefaultMinQueryLength)))
	if err != nil {
		return fmt.Errorf("invalid SEARCH_MIN_QUERY_LENGTH: %w", err)
	}
	c.Providers.MinQueryLength = minLen

	timeout, err := time.ParseDuration(getEnvOrDefault("PROVIDER_TIMEOUT", musicapi.DefaultRequestTimeout.String()))
	if err != nil {
		return fmt.Errorf("invalid PROVIDER_TIMEOUT: %w", err)
	}
	c.Providers.Timeout = timeout

	c.Providers.DeezerBaseURL = os.Getenv("DEEZER_BASE_URL")
	c.Providers.YouTubeAPIKey = strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY"))
	c.Providers.YouTubeBaseURL = os.Getenv("YOUTUBE_BASE_URL")
	c.Providers.MusixmatchAPIKey = strings.TrimSpace(os.Getenv("MUSIXMATCH_API_KEY"))
	c.Providers.MusixmatchBaseURL = os.Getenv("MUSIXMATCH_BASE_URL")
	return nil
}

// Validate checks that all required configuration is present and valid
func (c *Config) Validate() error {
	var errors []string

	if _, err := c.Database.Backend(); err != nil {
		errors = append(errors, err.Error())
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "PORT must be between 1 and 65535")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		errors = append(errors, "LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		errors = append(errors, "LOG_FORMAT must be one of: json, text")
	}

	if c.Providers.MinQueryLength < 1 {
		errors = append(errors, "SEARCH_MIN_QUERY_LENGTH must be at least 1")
	}
	if c.Providers.Timeout <= 0 {
		errors = append(errors, "PROVIDER_TIMEOUT must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Backend reports which store implementation the URL selects.
func (d DatabaseConfig) Backend() (Backend, error) {
	url := strings.ToLower(d.URL)
	switch {
	case url == "" || strings.HasPrefix(url, "memory://"):
		return BackendMemory, nil
	case strings.HasPrefix(url, "sqlite://") || strings.HasPrefix(url, "file:"):
		return BackendSQLite, nil
	case strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://"):
		return BackendPostgres, nil
	default:
		return "", fmt.Errorf("DATABASE_URL scheme not supported: use memory://, sqlite://, file: or postgres://")
	}
}

// SQLiteDSN returns the data source name handed to the sqlite driver.
func (d DatabaseConfig) SQLiteDSN() string {
	if strings.HasPrefix(strings.ToLower(d.URL), "sqlite://") {
		return d.URL[len("sqlite://"):]
	}
	return d.URL
}

// MusicAPI converts provider settings into client configuration.
func (p ProvidersConfig) MusicAPI() musicapi.Config {
	return musicapi.Config{
		SearchProvider:    p.Search,
		DeezerBaseURL:     p.DeezerBaseURL,
		YouTubeAPIKey:     p.YouTubeAPIKey,
		YouTubeBaseURL:    p.YouTubeBaseURL,
		MusixmatchAPIKey:  p.MusixmatchAPIKey,
		MusixmatchBaseURL: p.MusixmatchBaseURL,
		RequestTimeout:    p.Timeout,
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "" || c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
