package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mixtape/internal/models"
)

// SQLite persists playlists in a single SQLite database file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite prepares db for use as a playlist store. The pool is pinned to a
// single connection since foreign_keys is a per-connection pragma.
func NewSQLite(ctx context.Context, db *sql.DB) (*SQLite, error) {
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS playlists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			playlist_id INTEGER NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			external_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			artist_or_channel TEXT NOT NULL,
			preview_url TEXT,
			cover_or_thumbnail_url TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tracks_playlist_id ON tracks(playlist_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// CreatePlaylist persists a new, empty playlist.
func (s *SQLite) CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO playlists (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert playlist: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("playlist id: %w", err)
	}
	return &models.Playlist{ID: id, Name: name, Tracks: make([]models.Track, 0)}, nil
}

// ListPlaylists returns every playlist with its tracks, oldest first.
func (s *SQLite) ListPlaylists(ctx context.Context) ([]*models.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, t.id, t.external_id, t.title, t.artist_or_channel, t.preview_url, t.cover_or_thumbnail_url
		FROM playlists p
		LEFT JOIN tracks t ON t.playlist_id = p.id
		ORDER BY p.id ASC, t.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	return scanPlaylists(rows)
}

// GetPlaylist returns a single playlist by ID.
func (s *SQLite) GetPlaylist(ctx context.Context, id int64) (*models.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, t.id, t.external_id, t.title, t.artist_or_channel, t.preview_url, t.cover_or_thumbnail_url
		FROM playlists p
		LEFT JOIN tracks t ON t.playlist_id = p.id
		WHERE p.id = ?
		ORDER BY t.id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	defer rows.Close()

	playlists, err := scanPlaylists(rows)
	if err != nil {
		return nil, err
	}
	if len(playlists) == 0 {
		return nil, ErrPlaylistNotFound
	}
	return playlists[0], nil
}

// AddTrack attaches a new track to an existing playlist inside one transaction.
func (s *SQLite) AddTrack(ctx context.Context, playlistID int64, fields models.TrackFields) (*models.Track, error) {
	fields, err := normalizeTrack(fields)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM playlists WHERE id = ?`, playlistID).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup playlist: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO tracks (playlist_id, external_id, title, artist_or_channel, preview_url, cover_or_thumbnail_url)
		VALUES (?, ?, ?, ?, ?, ?)`,
		playlistID,
		fields.ExternalID,
		fields.Title,
		fields.ArtistOrChannel,
		nullIfEmpty(fields.PreviewURL),
		nullIfEmpty(fields.CoverOrThumbnailURL),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrPlaylistNotFound
		}
		return nil, fmt.Errorf("insert track: %w", err)
	}
	trackID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("track id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit track insert: %w", err)
	}
	tx = nil

	return newTrack(trackID, playlistID, fields), nil
}

// DeletePlaylist removes a playlist; its tracks go with it through ON DELETE CASCADE.
func (s *SQLite) DeletePlaylist(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
