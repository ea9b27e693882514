package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mixtape/internal/models"
)

// Postgres persists playlists in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres sets up a store using the provided database handle. The schema
// is owned by internal/migrations.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// CreatePlaylist persists a new, empty playlist.
func (s *Postgres) CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	playlist := &models.Playlist{Name: name, Tracks: make([]models.Track, 0)}
	if err := s.db.QueryRowContext(ctx, `
		INSERT INTO playlists (name, created_at)
		VALUES ($1, $2)
		RETURNING id`,
		name, time.Now().UTC(),
	).Scan(&playlist.ID); err != nil {
		return nil, fmt.Errorf("insert playlist: %w", err)
	}
	return playlist, nil
}

// ListPlaylists returns every playlist with its tracks, oldest first.
func (s *Postgres) ListPlaylists(ctx context.Context) ([]*models.Playlist, error) {
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
func (s *Postgres) GetPlaylist(ctx context.Context, id int64) (*models.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, t.id, t.external_id, t.title, t.artist_or_channel, t.preview_url, t.cover_or_thumbnail_url
		FROM playlists p
		LEFT JOIN tracks t ON t.playlist_id = p.id
		WHERE p.id = $1
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

// AddTrack attaches a new track to an existing playlist. The playlist row is
// share-locked for the duration of the transaction so a concurrent delete
// waits until the track is committed and then cascades over it.
func (s *Postgres) AddTrack(ctx context.Context, playlistID int64, fields models.TrackFields) (*models.Track, error) {
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

	var lockedID int64
	err = tx.QueryRowContext(ctx, `
		SELECT id
		FROM playlists
		WHERE id = $1
		FOR SHARE`, playlistID).Scan(&lockedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock playlist: %w", err)
	}

	var trackID int64
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO tracks (playlist_id, external_id, title, artist_or_channel, preview_url, cover_or_thumbnail_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		playlistID,
		fields.ExternalID,
		fields.Title,
		fields.ArtistOrChannel,
		nullIfEmpty(fields.PreviewURL),
		nullIfEmpty(fields.CoverOrThumbnailURL),
		time.Now().UTC(),
	).Scan(&trackID); err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrPlaylistNotFound
		}
		return nil, fmt.Errorf("insert track: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit track insert: %w", err)
	}
	tx = nil

	return newTrack(trackID, playlistID, fields), nil
}

// DeletePlaylist removes a playlist; its tracks go with it through ON DELETE CASCADE.
func (s *Postgres) DeletePlaylist(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id)
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

// Close releases the underlying connection pool.
func (s *Postgres) Close() error {
	return s.db.Close()
}
