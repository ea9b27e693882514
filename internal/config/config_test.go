package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mixtape/internal/musicapi"
)

var configEnv = []string{
	"ENV", "DATABASE_URL", "AUTO_MIGRATE", "DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_PORT", "DB_SSLMODE",
	"PORT", "HOST", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
	"SEARCH_PROVIDER", "SEARCH_LIMIT", "SEARCH_MIN_QUERY_LENGTH", "PROVIDER_TIMEOUT",
	"DEEZER_BASE_URL", "YOUTUBE_API_KEY", "YOUTUBE_BASE_URL", "MUSIXMATCH_API_KEY", "MUSIXMATCH_BASE_URL",
	"SENTRY_DSN",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	backend, err := cfg.Database.Backend()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, backend)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, musicapi.ProviderDeezer, cfg.Providers.Search)
	assert.Equal(t, 10, cfg.Providers.SearchLimit)
	assert.Equal(t, 1, cfg.Providers.MinQueryLength)
	assert.Equal(t, 10*time.Second, cfg.Providers.Timeout)
	assert.Empty(t, cfg.Sentry.DSN)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://mixtape:secret@db:5432/mixtape?sslmode=disable")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SEARCH_PROVIDER", "youtube")
	t.Setenv("SEARCH_LIMIT", "500")
	t.Setenv("PROVIDER_TIMEOUT", "3s")
	t.Setenv("YOUTUBE_API_KEY", " yt-key ")

	cfg, err := Load()
	require.NoError(t, err)

	backend, err := cfg.Database.Backend()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, backend)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, musicapi.ProviderYouTube, cfg.Providers.Search)
	assert.Equal(t, 50, cfg.Providers.SearchLimit)
	assert.Equal(t, 3*time.Second, cfg.Providers.Timeout)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "json", cfg.Logging.Format)

	api := cfg.Providers.MusicAPI()
	assert.Equal(t, "yt-key", api.YouTubeAPIKey)
	assert.Equal(t, 3*time.Second, api.RequestTimeout)
}

func TestLoadBuildsPostgresURLFromParts(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "mixtape")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "mixtape")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgresql://mixtape:pw@db:5432/mixtape?sslmode=disable", cfg.Database.URL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port", key: "PORT", value: "not-a-port"},
		{name: "port range", key: "PORT", value: "70000"},
		{name: "log level", key: "LOG_LEVEL", value: "chatty"},
		{name: "provider", key: "SEARCH_PROVIDER", value: "napster"},
		{name: "limit", key: "SEARCH_LIMIT", value: "ten"},
		{name: "timeout", key: "PROVIDER_TIMEOUT", value: "soon"},
		{name: "database scheme", key: "DATABASE_URL", value: "mysql://x"},
		{name: "auto migrate", key: "AUTO_MIGRATE", value: "perhaps"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseBackend(t *testing.T) {
	tests := []struct {
		url     string
		backend Backend
		dsn     string
	}{
		{url: "", backend: BackendMemory},
		{url: "memory://", backend: BackendMemory},
		{url: "sqlite://data/mixtape.db", backend: BackendSQLite, dsn: "data/mixtape.db"},
		{url: "file:mixtape.db?cache=shared", backend: BackendSQLite, dsn: "file:mixtape.db?cache=shared"},
		{url: "postgresql://u@h/db", backend: BackendPostgres},
	}

	for _, tc := range tests {
		db := DatabaseConfig{URL: tc.url}
		backend, err := db.Backend()
		require.NoError(t, err, tc.url)
		assert.Equal(t, tc.backend, backend, tc.url)
		if tc.backend == BackendSQLite {
			assert.Equal(t, tc.dsn, db.SQLiteDSN())
		}
	}
}
