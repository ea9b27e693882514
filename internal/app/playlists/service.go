package playlists

import (
	"context"

	"github.com/rs/zerolog"

	"mixtape/internal/models"
)

// Store captures the persistence needs for playlist workflows.
type Store interface {
	ListPlaylists(ctx context.Context) ([]*models.Playlist, error)
	GetPlaylist(ctx context.Context, id int64) (*models.Playlist, error)
	CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error)
	AddTrack(ctx context.Context, playlistID int64, fields models.TrackFields) (*models.Track, error)
	DeletePlaylist(ctx context.Context, id int64) error
}

// Service coordinates playlist-related operations.
type Service interface {
	List(ctx context.Context) ([]*models.Playlist, error)
	Get(ctx context.Context, id int64) (*models.Playlist, error)
	Create(ctx context.Context, name string) (*models.Playlist, error)
	AddTrack(ctx context.Context, playlistID int64, fields models.TrackFields) (*models.Track, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store  Store
	logger zerolog.Logger
}

// New constructs a Service backed by the provided Store.
func New(store Store, logger zerolog.Logger) Service {
	return &service{
		store:  store,
		logger: logger.With().Str("component", "playlists").Logger(),
	}
}

func (s *service) List(ctx context.Context) ([]*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylists(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.GetPlaylist(ctx, id)
}

func (s *service) Create(ctx context.Context, name string) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	playlist, err := s.store.CreatePlaylist(ctx, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("playlist_id", playlist.ID).Str("name", playlist.Name).Msg("playlist created")
	return playlist, nil
}

func (s *service) AddTrack(ctx context.Context, playlistID int64, fields models.TrackFields) (*models.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	track, err := s.store.AddTrack(ctx, playlistID, fields)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Int64("playlist_id", playlistID).
		Int64("track_id", track.ID).
		Str("external_id", track.ExternalID).
		Msg("track added")
	return track, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.store.DeletePlaylist(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("playlist_id", id).Msg("playlist deleted")
	return nil
}
