package store

import (
	"context"
	"database/sql"
	"testing"

	"mixtape/internal/models"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	s, err := NewSQLite(context.Background(), db)
	if err != nil {
		db.Close()
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	testPlaylistStore(t, func(t *testing.T) PlaylistStore {
		return newTestSQLite(t)
	}, countSQLiteTracks)
}

func countSQLiteTracks(t *testing.T, s PlaylistStore, playlistID int64) int {
	t.Helper()
	var n int
	err := s.(*SQLite).db.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM tracks WHERE playlist_id = ?`, playlistID).Scan(&n)
	if err != nil {
		t.Fatalf("count tracks: %v", err)
	}
	return n
}

func TestSQLiteDeleteCascadesTracks(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	p, err := s.CreatePlaylist(ctx, "Cascade")
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	if _, err := s.AddTrack(ctx, p.ID, models.TrackFields{Title: "T", ArtistOrChannel: "A"}); err != nil {
		t.Fatalf("AddTrack: %v", err)
	}
	if err := s.DeletePlaylist(ctx, p.ID); err != nil {
		t.Fatalf("DeletePlaylist: %v", err)
	}

	var remaining int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&remaining); err != nil {
		t.Fatalf("count tracks: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected tracks to cascade, %d left", remaining)
	}
}

func TestSQLiteForeignKeyEnforced(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO tracks (playlist_id, title, artist_or_channel) VALUES (?, ?, ?)`, 42, "T", "A")
	if err == nil {
		t.Fatalf("expected foreign key violation")
	}
	if !isForeignKeyViolation(err) {
		t.Fatalf("expected error to be recognised as FK violation, got %v", err)
	}
}

func TestSQLiteSchemaIsIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	if err := s.migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
