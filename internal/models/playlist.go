package models

// Track is a provider result saved into exactly one playlist.
type Track struct {
	ID                  int64   `json:"id" db:"id"`
	PlaylistID          int64   `json:"playlist_id" db:"playlist_id"`
	ExternalID          string  `json:"external_id" db:"external_id"`
	Title               string  `json:"title" db:"title"`
	ArtistOrChannel     string  `json:"artist_or_channel" db:"artist_or_channel"`
	PreviewURL          *string `json:"preview_url" db:"preview_url"`
	CoverOrThumbnailURL *string `json:"cover_or_thumbnail_url" db:"cover_or_thumbnail_url"`
}

// TrackFields carries the caller-supplied part of a Track.
type TrackFields struct {
	ExternalID          string  `json:"external_id"`
	Title               string  `json:"title"`
	ArtistOrChannel     string  `json:"artist_or_channel"`
	PreviewURL          *string `json:"preview_url,omitempty"`
	CoverOrThumbnailURL *string `json:"cover_or_thumbnail_url,omitempty"`
}

// Playlist owns an insertion-ordered list of tracks.
type Playlist struct {
	ID     int64   `json:"id" db:"id"`
	Name   string  `json:"name" db:"name"`
	Tracks []Track `json:"tracks"`
}

// Clone returns a copy of the track with its own URL pointers.
func (t Track) Clone() Track {
	t.PreviewURL = cloneString(t.PreviewURL)
	t.CoverOrThumbnailURL = cloneString(t.CoverOrThumbnailURL)
	return t
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
