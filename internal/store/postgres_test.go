package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"mixtape/internal/models"
)

var playlistColumns = []string{
	"id", "name", "id", "external_id", "title", "artist_or_channel", "preview_url", "cover_or_thumbnail_url",
}

func TestPostgresCreatePlaylist(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := NewPostgres(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO playlists (name, created_at)
		VALUES ($1, $2)
		RETURNING id
	`)).
		WithArgs("Road Trip", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	got, err := s.CreatePlaylist(context.Background(), "  Road Trip ")
	if err != nil {
		t.Fatalf("CreatePlaylist error: %v", err)
	}
	if got.ID != 7 || got.Name != "Road Trip" {
		t.Fatalf("unexpected playlist %+v", got)
	}
	if got.Tracks == nil {
		t.Fatalf("expected non-nil tracks")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresCreatePlaylistInvalid(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	_, err = NewPostgres(db).CreatePlaylist(context.Background(), "")
	if !errors.Is(err, ErrInvalidPlaylist) {
		t.Fatalf("expected ErrInvalidPlaylist, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresListPlaylistsFoldsRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := NewPostgres(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM playlists p
		LEFT JOIN tracks t ON t.playlist_id = p.id
		ORDER BY p.id ASC, t.id ASC`)).
		WillReturnRows(sqlmock.NewRows(playlistColumns).
			AddRow(int64(1), "Road Trip", int64(1), "3135556", "Harder", "Daft Punk", "https://p/x.mp3", nil).
			AddRow(int64(1), "Road Trip", int64(3), "dQw4w9WgXcQ", "Never", "Rick Astley", nil, "https://i.ytimg.com/t.jpg").
			AddRow(int64(2), "Empty", nil, nil, nil, nil, nil, nil))

	playlists, err := s.ListPlaylists(context.Background())
	if err != nil {
		t.Fatalf("ListPlaylists error: %v", err)
	}

	if len(playlists) != 2 {
		t.Fatalf("expected 2 playlists, got %d", len(playlists))
	}
	first := playlists[0]
	if len(first.Tracks) != 2 || first.Tracks[0].ID != 1 || first.Tracks[1].ID != 3 {
		t.Fatalf("unexpected tracks %+v", first.Tracks)
	}
	if first.Tracks[0].PreviewURL == nil || first.Tracks[0].CoverOrThumbnailURL != nil {
		t.Fatalf("unexpected optional URLs on first track %+v", first.Tracks[0])
	}
	if first.Tracks[1].PlaylistID != 1 {
		t.Fatalf("expected playlist_id 1, got %d", first.Tracks[1].PlaylistID)
	}
	if playlists[1].Tracks == nil || len(playlists[1].Tracks) != 0 {
		t.Fatalf("expected empty non-nil tracks for playlist 2, got %#v", playlists[1].Tracks)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresGetPlaylistNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.id = $1`)).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows(playlistColumns))

	_, err = NewPostgres(db).GetPlaylist(context.Background(), 999)
	if !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresAddTrack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := NewPostgres(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id
		FROM playlists
		WHERE id = $1
		FOR SHARE
	`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO tracks (playlist_id, external_id, title, artist_or_channel, preview_url, cover_or_thumbnail_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`)).
		WithArgs(int64(1), "3135556", "Harder", "Daft Punk", "https://p/x.mp3", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectCommit()

	track, err := s.AddTrack(context.Background(), 1, models.TrackFields{
		ExternalID:      "3135556",
		Title:           "Harder",
		ArtistOrChannel: "Daft Punk",
		PreviewURL:      strPtr("https://p/x.mp3"),
	})
	if err != nil {
		t.Fatalf("AddTrack error: %v", err)
	}
	if track.ID != 11 || track.PlaylistID != 1 {
		t.Fatalf("unexpected track %+v", track)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresAddTrackPlaylistMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR SHARE`)).
		WithArgs(int64(999)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err = NewPostgres(db).AddTrack(context.Background(), 999, models.TrackFields{Title: "T", ArtistOrChannel: "A"})
	if !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresAddTrackForeignKeyViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR SHARE`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO tracks`)).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})
	mock.ExpectRollback()

	_, err = NewPostgres(db).AddTrack(context.Background(), 5, models.TrackFields{Title: "T", ArtistOrChannel: "A"})
	if !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresAddTrackInvalidSkipsDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	_, err = NewPostgres(db).AddTrack(context.Background(), 1, models.TrackFields{Title: "T"})
	if !errors.Is(err, ErrInvalidTrack) {
		t.Fatalf("expected ErrInvalidTrack, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresDeletePlaylist(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := NewPostgres(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM playlists WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM playlists WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.DeletePlaylist(context.Background(), 3); err != nil {
		t.Fatalf("DeletePlaylist error: %v", err)
	}
	if err := s.DeletePlaylist(context.Background(), 3); !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "pgx", err: &pgconn.PgError{Code: "23503"}, want: true},
		{name: "pgx unique", err: &pgconn.PgError{Code: "23505"}},
		{name: "pq", err: &pq.Error{Code: "23503"}, want: true},
		{name: "wrapped", err: errors.Join(errors.New("insert"), &pq.Error{Code: "23503"}), want: true},
		{name: "plain", err: errors.New("boom")},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := isForeignKeyViolation(tc.err); got != tc.want {
				t.Fatalf("isForeignKeyViolation(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
