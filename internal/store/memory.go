package store

import (
	"context"
	"sort"
	"sync"

	"mixtape/internal/models"
)

type playlistRecord struct {
	id   int64
	name string
}

// Memory keeps playlists in process memory. It is the default backend and
// loses everything on restart.
//
// Playlists and tracks live in separate maps. trackIDs is the foreign-key
// index from a playlist to its tracks in insertion order.
type Memory struct {
	mu             sync.RWMutex
	playlists      map[int64]playlistRecord
	tracks         map[int64]models.Track
	trackIDs       map[int64][]int64
	nextPlaylistID int64
	nextTrackID    int64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		playlists:      make(map[int64]playlistRecord),
		tracks:         make(map[int64]models.Track),
		trackIDs:       make(map[int64][]int64),
		nextPlaylistID: 1,
		nextTrackID:    1,
	}
}

// CreatePlaylist persists a new, empty playlist.
func (m *Memory) CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	record := playlistRecord{id: m.nextPlaylistID, name: name}
	m.nextPlaylistID++
	m.playlists[record.id] = record
	m.trackIDs[record.id] = nil

	return m.assemble(record), nil
}

// ListPlaylists returns every playlist with its tracks, oldest first.
func (m *Memory) ListPlaylists(ctx context.Context) ([]*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*models.Playlist, 0, len(m.playlists))
	for _, record := range m.playlists {
		result = append(result, m.assemble(record))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetPlaylist returns a single playlist by ID.
func (m *Memory) GetPlaylist(ctx context.Context, id int64) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.playlists[id]
	if !ok {
		return nil, ErrPlaylistNotFound
	}
	return m.assemble(record), nil
}

// AddTrack attaches a new track to an existing playlist. The existence check
// and both inserts happen under one write lock.
func (m *Memory) AddTrack(ctx context.Context, playlistID int64, fields models.TrackFields) (*models.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fields, err := normalizeTrack(fields)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.playlists[playlistID]; !ok {
		return nil, ErrPlaylistNotFound
	}

	track := newTrack(m.nextTrackID, playlistID, fields)
	m.nextTrackID++
	m.tracks[track.ID] = track.Clone()
	m.trackIDs[playlistID] = append(m.trackIDs[playlistID], track.ID)

	return track, nil
}

// DeletePlaylist removes a playlist together with its tracks.
func (m *Memory) DeletePlaylist(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.playlists[id]; !ok {
		return ErrPlaylistNotFound
	}
	for _, trackID := range m.trackIDs[id] {
		delete(m.tracks, trackID)
	}
	delete(m.trackIDs, id)
	delete(m.playlists, id)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// assemble builds a detached playlist value. Callers hold m.mu.
func (m *Memory) assemble(record playlistRecord) *models.Playlist {
	ids := m.trackIDs[record.id]
	playlist := &models.Playlist{
		ID:     record.id,
		Name:   record.name,
		Tracks: make([]models.Track, 0, len(ids)),
	}
	for _, trackID := range ids {
		playlist.Tracks = append(playlist.Tracks, m.tracks[trackID].Clone())
	}
	return playlist
}
