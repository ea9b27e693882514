package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"mixtape/internal/models"
)

var (
	// ErrPlaylistNotFound signals the referenced playlist does not exist.
	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrInvalidPlaylist indicates a playlist payload failed validation.
	ErrInvalidPlaylist = errors.New("invalid playlist")
	// ErrInvalidTrack indicates a track payload failed validation.
	ErrInvalidTrack = errors.New("invalid track")
)

const foreignKeyViolation = "23503"

// PlaylistStore persists playlists and the tracks they own.
//
// Every method is atomic with respect to concurrent callers. AddTrack never
// leaves a track behind whose playlist does not exist.
type PlaylistStore interface {
	CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error)
	ListPlaylists(ctx context.Context) ([]*models.Playlist, error)
	GetPlaylist(ctx context.Context, id int64) (*models.Playlist, error)
	AddTrack(ctx context.Context, playlistID int64, fields models.TrackFields) (*models.Track, error)
	DeletePlaylist(ctx context.Context, id int64) error
	Close() error
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidPlaylist)
	}
	return name, nil
}

func normalizeTrack(fields models.TrackFields) (models.TrackFields, error) {
	fields.ExternalID = strings.TrimSpace(fields.ExternalID)
	fields.Title = strings.TrimSpace(fields.Title)
	fields.ArtistOrChannel = strings.TrimSpace(fields.ArtistOrChannel)
	fields.PreviewURL = trimOptional(fields.PreviewURL)
	fields.CoverOrThumbnailURL = trimOptional(fields.CoverOrThumbnailURL)

	var problems []string
	if fields.Title == "" {
		problems = append(problems, "title is required")
	}
	if fields.ArtistOrChannel == "" {
		problems = append(problems, "artist_or_channel is required")
	}
	if len(problems) > 0 {
		return models.TrackFields{}, fmt.Errorf("%w: %s", ErrInvalidTrack, strings.Join(problems, ", "))
	}
	return fields, nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func newTrack(id, playlistID int64, fields models.TrackFields) *models.Track {
	track := models.Track{
		ID:                  id,
		PlaylistID:          playlistID,
		ExternalID:          fields.ExternalID,
		Title:               fields.Title,
		ArtistOrChannel:     fields.ArtistOrChannel,
		PreviewURL:          fields.PreviewURL,
		CoverOrThumbnailURL: fields.CoverOrThumbnailURL,
	}.Clone()
	return &track
}

// scanPlaylists folds the rows of a playlists LEFT JOIN tracks query, ordered
// by playlist id then track id, into playlists with their tracks attached.
func scanPlaylists(rows *sql.Rows) ([]*models.Playlist, error) {
	playlists := make([]*models.Playlist, 0)
	var current *models.Playlist

	for rows.Next() {
		var (
			playlistID int64
			name       string
			trackID    sql.NullInt64
			externalID sql.NullString
			title      sql.NullString
			artist     sql.NullString
			preview    sql.NullString
			cover      sql.NullString
		)
		if err := rows.Scan(&playlistID, &name, &trackID, &externalID, &title, &artist, &preview, &cover); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}

		if current == nil || current.ID != playlistID {
			current = &models.Playlist{ID: playlistID, Name: name, Tracks: make([]models.Track, 0)}
			playlists = append(playlists, current)
		}
		if !trackID.Valid {
			continue
		}
		current.Tracks = append(current.Tracks, models.Track{
			ID:                  trackID.Int64,
			PlaylistID:          playlistID,
			ExternalID:          externalID.String,
			Title:               title.String,
			ArtistOrChannel:     artist.String,
			PreviewURL:          fromNullString(preview),
			CoverOrThumbnailURL: fromNullString(cover),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

func fromNullString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

func nullIfEmpty(value *string) interface{} {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

// isForeignKeyViolation recognises a rejected tracks.playlist_id reference from
// any of the drivers the store can sit on.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == foreignKeyViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == foreignKeyViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		if liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return true
		}
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
			strings.Contains(liteErr.Error(), "FOREIGN KEY")
	}
	return false
}
