package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"mixtape/internal/config"
	"mixtape/internal/migrations"
	"mixtape/internal/store"
)

// openStore builds the playlist store selected by DATABASE_URL.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (store.PlaylistStore, error) {
	backend, err := cfg.Database.Backend()
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.BackendSQLite:
		db, err := sql.Open("sqlite", cfg.Database.SQLiteDSN())
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		s, err := store.NewSQLite(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info().Str("backend", string(backend)).Msg("playlist store ready")
		return s, nil

	case config.BackendPostgres:
		db, err := openDatabase(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := migrations.Up(cfg.Database.URL, logger); err != nil {
				_ = db.Close()
				return nil, err
			}
			logger.Info().Msg("database migrations applied")
		}
		logger.Info().Str("backend", string(backend)).Msg("playlist store ready")
		return store.NewPostgres(db), nil

	default:
		logger.Warn().Msg("DATABASE_URL not set, playlists are kept in memory and lost on restart")
		return store.NewMemory(), nil
	}
}

// openDatabase establishes a database connection and retries until the instance responds.
func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	const (
		pingTimeout    = 5 * time.Second
		maxWait        = 30 * time.Second
		initialBackoff = 500 * time.Millisecond
		maxBackoff     = 5 * time.Second
	)

	deadline := time.Now().Add(maxWait)
	backoff := initialBackoff
	var lastErr error

	for {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()

		if lastErr == nil {
			return db, nil
		}

		// Respect caller cancellation.
		if ctx.Err() != nil {
			break
		}

		if time.Now().After(deadline) {
			break
		}

		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("ping database: %w", lastErr)
}
